// Package gameid generates sortable room and hand identifiers: UUIDv7
// encoded as 26 characters of Crockford base32. The embedded timestamp
// keeps ids roughly ordered by creation time, which makes room listings
// and log correlation cheap.
package gameid

import (
	"crypto/rand"
	"fmt"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies the random tail bytes; injectable for deterministic
// tests.
type RandSource interface {
	IntN(n int) int
}

// Generator produces ids with a configurable randomness source.
type Generator struct {
	src RandSource
}

// NewGenerator creates a generator. A nil source uses crypto/rand.
func NewGenerator(src RandSource) *Generator {
	return &Generator{src: src}
}

// Generate creates an id with the default crypto/rand source.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new id.
func (g *Generator) Generate() string {
	return encodeBase32(g.newUUIDv7())
}

// newUUIDv7 lays out a 48-bit millisecond timestamp, the version and
// variant bits, and 74 random bits.
func (g *Generator) newUUIDv7() [16]byte {
	var uuid [16]byte

	now := time.Now().UnixMilli()
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if g.src != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.src.IntN(256))
		}
	} else {
		if _, err := rand.Read(uuid[6:]); err != nil {
			panic("gameid: crypto/rand failed: " + err.Error())
		}
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10

	return uuid
}

// encodeBase32 packs 128 bits into 26 base32 characters, 5 bits each.
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		result[i] = alphabet[value]
	}
	return string(result)
}

// Validate checks that an id is 26 valid base32 characters encoding at
// most 128 bits.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("gameid: must be 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("gameid: first character must be 0-7, got %c", id[0])
	}
	for i, ch := range id {
		valid := false
		for _, ok := range alphabet {
			if ch == ok {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("gameid: invalid character %c at position %d", ch, i)
		}
	}
	return nil
}
