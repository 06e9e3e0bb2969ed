// Package auth issues and verifies the signed tokens behind the anonymous
// auth endpoint. Anonymous players keep a stable client-generated id with
// an "anon_" prefix so a reconnect preserves their seat; the token binds
// that id for host-only operations, which must never trust the raw id.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lox/pokerrooms/internal/gameid"
)

const (
	// AnonPrefix marks client-generated anonymous ids.
	AnonPrefix = "anon_"

	defaultTTL   = 24 * time.Hour
	defaultChips = 1000
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Identity is the verified subject of a token.
type Identity struct {
	UserID    string
	Username  string
	Anonymous bool
}

// User is the account payload returned by the anonymous auth endpoint.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	IsAnonymous bool   `json:"isAnonymous"`
	Chips       int    `json:"chips"`
}

type claims struct {
	Username  string `json:"username"`
	Anonymous bool   `json:"anonymous"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. A zero ttl defaults to 24 hours.
func NewService(secret []byte, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &Service{secret: secret, ttl: ttl}
}

// IssueAnonymous mints a token for an anonymous player. A client-supplied
// id with the anon_ prefix is kept for continuity; anything else gets a
// fresh id. An empty username gets a generated one.
func (s *Service) IssueAnonymous(clientID, username string) (string, User, error) {
	id := clientID
	if !strings.HasPrefix(id, AnonPrefix) {
		id = AnonPrefix + gameid.Generate()
	}
	if username == "" {
		username = "Player-" + id[len(id)-4:]
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username:  username,
		Anonymous: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", User{}, fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, User{
		ID:          id,
		Username:    username,
		IsAnonymous: true,
		Chips:       defaultChips,
	}, nil
}

// Verify parses and validates a token, returning its identity.
func (s *Service) Verify(tokenString string) (*Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{
		UserID:    c.Subject,
		Username:  c.Username,
		Anonymous: c.Anonymous,
	}, nil
}
