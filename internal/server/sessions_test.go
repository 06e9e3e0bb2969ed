package server

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsRegisterAndLookup(t *testing.T) {
	t.Parallel()

	s := NewSessions(log.New(io.Discard))
	tr := &fakeTransport{}
	s.Register("anon_abc", tr)

	got, ok := s.Lookup("anon_abc")
	require.True(t, ok)
	assert.Same(t, tr, got.(*fakeTransport))
	assert.Equal(t, 1, s.Count())

	_, ok = s.Lookup("anon_missing")
	assert.False(t, ok)
}

func TestSessionsReconnectReplacesTransport(t *testing.T) {
	t.Parallel()

	s := NewSessions(log.New(io.Discard))
	first := &fakeTransport{}
	second := &fakeTransport{}

	s.Register("anon_abc", first)
	s.Register("anon_abc", second)

	got, ok := s.Lookup("anon_abc")
	require.True(t, ok)
	assert.Same(t, second, got.(*fakeTransport))

	// Removing the stale handle leaves the replacement in place.
	s.Remove("anon_abc", first)
	_, ok = s.Lookup("anon_abc")
	assert.True(t, ok)

	s.Remove("anon_abc", second)
	_, ok = s.Lookup("anon_abc")
	assert.False(t, ok)
}

func TestSessionsLazyEviction(t *testing.T) {
	t.Parallel()

	s := NewSessions(log.New(io.Discard))
	tr := &fakeTransport{}
	s.Register("anon_abc", tr)

	tr.mu.Lock()
	tr.dead = true
	tr.mu.Unlock()

	_, ok := s.Lookup("anon_abc")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())
}
