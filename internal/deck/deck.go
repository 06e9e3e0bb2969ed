package deck

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	mathrand "math/rand/v2"
)

// CardsPerDeck is the size of a single standard deck.
const CardsPerDeck = 52

// shufflePasses is the number of independent Fisher-Yates passes per reset.
const shufflePasses = 7

// Deck is a cryptographically shuffled sequence of cards with dealt and burn
// piles. All card-affecting randomness is derived from a 32-byte seed drawn
// from crypto/rand and expanded with ChaCha8, so a client holding the revealed
// seed can reproduce the shuffle and audit the hand.
type Deck struct {
	cards  []Card
	dealt  []Card
	burned []Card
	decks  int
	seed   [32]byte
	rng    *mathrand.ChaCha8
	handID string
}

// New creates a deck of one standard 52-card pack, shuffled.
func New() *Deck {
	d := &Deck{}
	d.Reset(1)
	return d
}

// NewWithSeed creates a deck whose shuffle is derived from the given seed.
// Used by tests to get deterministic ordering.
func NewWithSeed(seed [32]byte) *Deck {
	d := &Deck{}
	d.resetWithSeed(1, seed)
	return d
}

// Reset rebuilds the deck from numDecks packs, draws a fresh seed and
// shuffles. The previous seed and piles are discarded.
func (d *Deck) Reset(numDecks int) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic("deck: failed to read entropy: " + err.Error())
	}
	d.resetWithSeed(numDecks, seed)
}

func (d *Deck) resetWithSeed(numDecks int, seed [32]byte) {
	if numDecks < 1 {
		numDecks = 1
	}
	d.decks = numDecks
	d.seed = seed
	d.rng = mathrand.NewChaCha8(seed)
	d.handID = newHandID()
	d.dealt = nil
	d.burned = nil

	d.cards = make([]Card, 0, numDecks*CardsPerDeck)
	for n := 0; n < numDecks; n++ {
		for suit := Clubs; suit <= Spades; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				d.cards = append(d.cards, NewCard(rank, suit))
			}
		}
	}

	for pass := 0; pass < shufflePasses; pass++ {
		d.shuffle()
	}
	d.cut()
}

// shuffle performs one Fisher-Yates pass from the top index downward. Each
// random index is produced by rejection sampling so no modulo bias leaks into
// the card order.
func (d *Deck) shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.randIndex(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// cut moves a block of cards from the top to the bottom, with the cut point
// sampled uniformly from the middle 80% of the deck.
func (d *Deck) cut() {
	n := len(d.cards)
	lo := n / 10
	span := n - 2*lo
	if span <= 0 {
		return
	}
	point := lo + d.randIndex(span)
	d.cards = append(d.cards[point:], d.cards[:point]...)
}

// randIndex returns a uniform value in [0, n) using rejection sampling over
// the minimum number of ChaCha8 bytes whose masked value can cover n.
func (d *Deck) randIndex(n int) int {
	if n <= 1 {
		return 0
	}

	bits := 0
	for 1<<bits < n {
		bits++
	}
	numBytes := (bits + 7) / 8
	mask := uint64(1)<<bits - 1

	buf := make([]byte, numBytes)
	for {
		if _, err := d.rng.Read(buf); err != nil {
			panic("deck: chacha8 read failed: " + err.Error())
		}
		var v uint64
		for _, b := range buf {
			v = v<<8 | uint64(b)
		}
		v &= mask
		if v < uint64(n) {
			return int(v)
		}
	}
}

// Deal removes and returns the top card. The second return is false when the
// deck is exhausted, which callers must treat as a fatal engine bug.
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	d.dealt = append(d.dealt, card)
	return card, true
}

// DealN deals n cards from the deck.
func (d *Deck) DealN(n int) []Card {
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.Deal()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

// Burn discards the top card onto the burn pile.
func (d *Deck) Burn() {
	if len(d.cards) == 0 {
		return
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	d.burned = append(d.burned, card)
}

// Reshuffle reshuffles the remaining cards in place. Dealt and burned piles
// are untouched.
func (d *Deck) Reshuffle() {
	d.shuffle()
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Dealt returns the number of cards dealt so far.
func (d *Deck) Dealt() int {
	return len(d.dealt)
}

// Burned returns the number of cards burned so far.
func (d *Deck) Burned() int {
	return len(d.burned)
}

// PeekNext returns the next k cards without removing them.
func (d *Deck) PeekNext(k int) []Card {
	if k > len(d.cards) {
		k = len(d.cards)
	}
	out := make([]Card, k)
	copy(out, d.cards[:k])
	return out
}

// DealRunOut deals cardsPerBoard cards for each of numBoards boards, burning
// one card before each board's run. Used for run-it-multiple-times and
// runout-on-fold completion.
func (d *Deck) DealRunOut(cardsPerBoard, numBoards int) ([][]Card, error) {
	needed := numBoards * (cardsPerBoard + 1)
	if needed > len(d.cards) {
		return nil, fmt.Errorf("deck: %d cards remaining, need %d for runout", len(d.cards), needed)
	}
	boards := make([][]Card, numBoards)
	for b := 0; b < numBoards; b++ {
		d.Burn()
		boards[b] = d.DealN(cardsPerBoard)
	}
	return boards, nil
}

// HandID returns the identifier assigned to the current shuffle.
func (d *Deck) HandID() string {
	return d.handID
}

// SeedCommitment returns the SHA-256 of the current seed as hex. Published
// before the hand so clients can verify the later reveal.
func (d *Deck) SeedCommitment() string {
	sum := sha256.Sum256(d.seed[:])
	return hex.EncodeToString(sum[:])
}

// RevealSeed returns the seed as hex. Only call once the hand is complete.
func (d *Deck) RevealSeed() string {
	return hex.EncodeToString(d.seed[:])
}

// Size returns the invariant total |remaining| + |dealt| + |burned|.
func (d *Deck) Size() int {
	return len(d.cards) + len(d.dealt) + len(d.burned)
}

// newHandID returns 16 hex characters from crypto/rand.
func newHandID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("deck: failed to read entropy: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
