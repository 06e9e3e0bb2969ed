package room

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/randutil"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func testOptions() Options {
	return Options{
		Name:    "Friday Game",
		HostID:  "host-1",
		Variant: game.VariantTexasHoldem,
		Stakes:  game.DefaultStakes(),
		Rules:   game.DefaultRules(),
		Public:  true,
	}
}

func TestCreateAssignsUniqueCodes(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger(), randutil.New(1))
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		rm, err := reg.Create(testOptions())
		require.NoError(t, err)
		require.Len(t, rm.Code, 6)
		assert.False(t, seen[rm.Code], "duplicate code %s", rm.Code)
		seen[rm.Code] = true

		for _, ch := range rm.Code {
			assert.Contains(t, codeAlphabet, string(ch))
			assert.NotContains(t, "IO01", string(ch))
		}
	}
}

func TestGetByCodeCaseInsensitive(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger(), nil)
	rm, err := reg.Create(testOptions())
	require.NoError(t, err)

	found, err := reg.GetByCode(strings.ToLower(rm.Code))
	require.NoError(t, err)
	assert.Same(t, rm, found)

	_, err = reg.GetByCode("XXXXXX")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCloseReleasesCode(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger(), nil)
	rm, err := reg.Create(testOptions())
	require.NoError(t, err)
	reg.BindUser("u1", rm.ID)

	require.NoError(t, reg.Close(rm.ID))
	assert.True(t, rm.Closed())

	_, err = reg.Get(rm.ID)
	require.ErrorIs(t, err, ErrRoomNotFound)
	_, err = reg.GetByCode(rm.Code)
	require.ErrorIs(t, err, ErrRoomNotFound)
	_, err = reg.RoomFor("u1")
	require.ErrorIs(t, err, ErrRoomNotFound)

	// Idempotence: closing twice reports not found, nothing worse.
	require.ErrorIs(t, reg.Close(rm.ID), ErrRoomNotFound)

	// A closed room's engine is unreachable.
	called := false
	rm.With(func(g *game.Game) { called = true })
	assert.False(t, called)
}

func TestUserBindings(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger(), nil)
	rm, err := reg.Create(testOptions())
	require.NoError(t, err)

	_, err = reg.RoomFor("u1")
	require.ErrorIs(t, err, ErrRoomNotFound)

	reg.BindUser("u1", rm.ID)
	found, err := reg.RoomFor("u1")
	require.NoError(t, err)
	assert.Same(t, rm, found)

	reg.UnbindUser("u1")
	_, err = reg.RoomFor("u1")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestListPublicSkipsPrivateRooms(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger(), nil)
	_, err := reg.Create(testOptions())
	require.NoError(t, err)

	private := testOptions()
	private.Public = false
	private.Password = "secret"
	hidden, err := reg.Create(private)
	require.NoError(t, err)

	listed := reg.ListPublic()
	require.Len(t, listed, 1)
	assert.NotEqual(t, hidden.ID, listed[0].ID)

	assert.False(t, hidden.CheckPassword("wrong"))
	assert.True(t, hidden.CheckPassword("secret"))
}

func TestRoomPassword(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(testLogger(), nil)
	open, err := reg.Create(testOptions())
	require.NoError(t, err)
	assert.True(t, open.CheckPassword(""), "no password set admits anyone")
}
