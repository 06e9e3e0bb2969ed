package server

import (
	"github.com/charmbracelet/log"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/room"
)

// Fanout delivers events to room members through the session directory.
// State broadcasts are personalized per viewer so hole cards only ever
// reach their owner. Snapshots are taken under the room lock and
// delivered after it is released.
type Fanout struct {
	logger   *log.Logger
	sessions *Sessions
}

// NewFanout creates a fan-out bound to a session directory.
func NewFanout(logger *log.Logger, sessions *Sessions) *Fanout {
	return &Fanout{
		logger:   logger.WithPrefix("fanout"),
		sessions: sessions,
	}
}

// Broadcast sends one message to every member of the room. Members
// without a live transport are skipped.
func (f *Fanout) Broadcast(r *room.Room, msg *Message) {
	for _, userID := range r.Members() {
		f.SendTo(userID, msg)
	}
}

// BroadcastState snapshots a per-viewer state for every member under the
// room lock, then delivers outside it.
func (f *Fanout) BroadcastState(r *room.Room) {
	members := r.Members()
	states := make(map[string]*game.State, len(members))
	r.With(func(g *game.Game) {
		for _, userID := range members {
			states[userID] = g.GetState(userID)
		}
	})

	for _, userID := range members {
		state, ok := states[userID]
		if !ok {
			continue
		}
		f.SendTo(userID, mustMessage(EvtGameState, state))
	}
}

// SendTo delivers one message to a single user if they are connected.
func (f *Fanout) SendTo(userID string, msg *Message) {
	t, ok := f.sessions.Lookup(userID)
	if !ok {
		f.logger.Debug("no transport for user, skipping", "user", userID, "type", msg.Type)
		return
	}
	if err := t.Send(msg); err != nil {
		f.logger.Debug("delivery failed", "user", userID, "type", msg.Type, "error", err)
	}
}
