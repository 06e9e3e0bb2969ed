// Package room provides the room registry: lifecycle and lookup of game
// rooms by id, invite code and member, plus the per-room serialization
// that the orchestrator relies on.
package room

import (
	"sync"
	"time"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/gameid"
)

// Options configures a new room.
type Options struct {
	Name       string
	HostID     string
	Variant    game.Variant
	Stakes     game.Stakes
	Rules      game.Rules
	MaxPlayers int
	Password   string
	Public     bool
}

// Room is one table: an engine instance plus registry metadata. All engine
// access goes through With so no two operations on the same room's engine
// run in parallel.
type Room struct {
	ID        string
	Code      string
	Name      string
	HostID    string
	Public    bool
	CreatedAt time.Time

	password string

	mu      sync.Mutex
	game    *game.Game
	members map[string]string // userID -> display name, seated or spectating
	closed  bool
}

func newRoom(opts Options, code string) *Room {
	variant := opts.Variant
	if !variant.Valid() {
		variant = game.VariantTexasHoldem
	}
	maxPlayers := opts.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = 9
	}
	return &Room{
		ID:        gameid.Generate(),
		Code:      code,
		Name:      opts.Name,
		HostID:    opts.HostID,
		Public:    opts.Public,
		CreatedAt: time.Now(),
		password:  opts.Password,
		game:      game.New(variant, opts.Stakes, opts.Rules, maxPlayers),
		members:   make(map[string]string),
	}
}

// Join subscribes a user to the room's events. Seating is separate; a
// joined user may spectate indefinitely.
func (r *Room) Join(userID, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.members[userID] = displayName
	}
}

// Leave unsubscribes a user.
func (r *Room) Leave(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, userID)
}

// IsMember reports whether the user has joined the room.
func (r *Room) IsMember(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[userID]
	return ok
}

// Members returns the ids of every subscriber.
func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	return out
}

// With runs fn with exclusive access to the room's engine. It is the only
// way to touch the engine; fn must not block on I/O or grab other room
// locks.
func (r *Room) With(fn func(g *game.Game)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	fn(r.game)
}

// CheckPassword reports whether the supplied password grants entry.
func (r *Room) CheckPassword(password string) bool {
	return r.password == "" || r.password == password
}

// Closed reports whether the room has been shut down.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Summary is the public listing entry for a room.
type Summary struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Variant    game.Variant `json:"variant"`
	Stakes     game.Stakes  `json:"stakes"`
	Players    int          `json:"players"`
	MaxPlayers int          `json:"maxPlayers"`
	HasPassword bool        `json:"hasPassword"`
}

// Summarize builds the listing entry for the room.
func (r *Room) Summarize() Summary {
	s := Summary{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		HasPassword: r.password != "",
	}
	r.With(func(g *game.Game) {
		s.Variant = g.Variant()
		s.Stakes = g.Stakes()
		s.Players = len(g.Players())
		s.MaxPlayers = g.MaxPlayers()
	})
	return s
}
