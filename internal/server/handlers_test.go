package server

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerrooms/internal/auth"
	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/room"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.Auth.Secret = "test-secret"
	return NewServer(cfg, log.New(io.Discard), quartz.NewMock(t))
}

// testConn builds an authenticated connection without a live websocket.
// Outbound messages pile up in the send buffer; nothing drains it.
func testConn(t *testing.T, s *Server, userID string) *Connection {
	t.Helper()
	c := newConnection(nil, log.New(io.Discard), s)
	c.SetIdentity(&auth.Identity{UserID: userID, Username: userID, Anonymous: true})
	s.sessions.Register(userID, c)
	return c
}

func testRoom(t *testing.T, s *Server, hostID string) *room.Room {
	t.Helper()
	rm, err := s.registry.Create(room.Options{
		Name:    "test",
		HostID:  hostID,
		Variant: game.VariantTexasHoldem,
		Stakes:  game.DefaultStakes(),
		Rules:   game.DefaultRules(),
	})
	require.NoError(t, err)
	return rm
}

func TestLeaveLastMemberClosesRoom(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rm := testRoom(t, s, "u1")
	code := rm.Code

	c1 := testConn(t, s, "u1")
	c2 := testConn(t, s, "u2")
	s.handleRoomJoin(c1, JoinRoomData{Code: code})
	s.handleRoomJoin(c2, JoinRoomData{Code: code})
	require.Equal(t, rm.ID, c1.RoomID())
	require.Equal(t, rm.ID, c2.RoomID())

	// The room stays open while anyone remains.
	s.handleRoomLeave(c1)
	assert.Equal(t, "", c1.RoomID())
	assert.False(t, rm.Closed())

	// The last member out closes the room and releases its code.
	s.handleRoomLeave(c2)
	assert.True(t, rm.Closed())
	assert.Zero(t, s.registry.Count())
	_, err := s.registry.GetByCode(code)
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	s.orch.mu.Lock()
	assert.Empty(t, s.orch.runtimes)
	s.orch.mu.Unlock()
}

func TestLeaveMidHandResolvesTheHand(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rm := testRoom(t, s, "u1")

	c1 := testConn(t, s, "u1")
	c2 := testConn(t, s, "u2")
	s.handleRoomJoin(c1, JoinRoomData{Code: rm.Code})
	s.handleRoomJoin(c2, JoinRoomData{Code: rm.Code})
	s.handleSit(c1, SitData{Seat: 0, BuyIn: 500})
	s.handleSit(c2, SitData{Seat: 1, BuyIn: 500})

	require.NoError(t, s.orch.Runtime(rm).StartHand())

	// Heads-up the dealer acts first; leaving on the clock folds them and
	// awards the pot instead of wedging the hand.
	s.handleRoomLeave(c1)
	rm.With(func(g *game.Game) {
		assert.Equal(t, game.PhaseComplete, g.Phase())
		require.Len(t, g.Winners(), 1)
		assert.Equal(t, "u2", g.Winners()[0].PlayerID)
	})
	assert.False(t, rm.IsMember("u1"))
}

func TestUpdateRulesMergesPartialPayload(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rm := testRoom(t, s, "host")
	c := testConn(t, s, "host")
	s.handleRoomJoin(c, JoinRoomData{Code: rm.Code})

	s.HandleMessage(c, &Message{
		Type: EvtRoomUpdateRules,
		Data: json.RawMessage(`{"runItTwice":true}`),
	})

	var got game.Rules
	rm.With(func(g *game.Game) { got = g.Rules() })
	assert.True(t, got.RunItTwice)

	// Options absent from the payload keep their defaults.
	assert.True(t, got.TurnTimeEnabled)
	assert.Equal(t, 30, got.TurnTimeSeconds)
	assert.Equal(t, 15, got.WarningTimeSeconds)
	assert.Equal(t, 1, got.MaxStraddles)
	assert.Equal(t, 10, got.SevenDeuceBonus)
}

func TestUpdateSettingsMergesPartialRules(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rm := testRoom(t, s, "host")
	c := testConn(t, s, "host")
	s.handleRoomJoin(c, JoinRoomData{Code: rm.Code})

	s.handleUpdateSettings(c, UpdateSettingsData{
		CustomRules: json.RawMessage(`{"sevenDeuce":true}`),
	})

	var got game.Rules
	rm.With(func(g *game.Game) { got = g.Rules() })
	assert.True(t, got.SevenDeuce)
	assert.Equal(t, 30, got.TurnTimeSeconds)
	assert.Equal(t, 1, got.MaxStraddles)
}
