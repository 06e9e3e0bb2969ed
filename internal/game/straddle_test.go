package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straddleRules(max int) Rules {
	r := DefaultRules()
	r.StraddleEnabled = true
	r.MultipleStraddlesAllowed = max > 1
	r.MaxStraddles = max
	return r
}

// Four seats, UTG auto-straddles 20, UTG+1 declines 40. Preflop opens on
// the seat after the last straddler with currentBet 20.
func TestStraddleChainWithAutoAccept(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, straddleRules(2), 1000, 1000, 1000, 1000)
	g.Player("p3").StraddleNextHand = true // UTG for dealer 0
	require.NoError(t, g.StartHand(0, false))

	prompt := g.StartStraddlePrompt()
	require.NotNil(t, prompt)

	// UTG already auto-posted; the open prompt is the re-straddle.
	straddles := g.Straddles()
	require.Len(t, straddles, 1)
	assert.Equal(t, "p3", straddles[0].PlayerID)
	assert.Equal(t, 20, straddles[0].Amount)
	assert.Equal(t, "p0", prompt.PlayerID)
	assert.Equal(t, 40, prompt.Amount)

	next, err := g.ProcessStraddle("p0", false)
	require.NoError(t, err)
	assert.Nil(t, next)

	assert.Equal(t, 20, g.CurrentBet())
	assert.Equal(t, 0, g.CurrentSeat(), "action opens after the last straddler")
}

func TestStraddleChainAmountsDouble(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, straddleRules(3), 1000, 1000, 1000, 1000, 1000, 1000)
	require.NoError(t, g.StartHand(0, false))

	prompt := g.StartStraddlePrompt()
	require.NotNil(t, prompt)
	assert.Equal(t, "p3", prompt.PlayerID)
	assert.Equal(t, 20, prompt.Amount)

	prompt, err := g.ProcessStraddle("p3", true)
	require.NoError(t, err)
	require.NotNil(t, prompt)
	assert.Equal(t, "p4", prompt.PlayerID)
	assert.Equal(t, 40, prompt.Amount)

	prompt, err = g.ProcessStraddle("p4", true)
	require.NoError(t, err)
	require.NotNil(t, prompt)
	assert.Equal(t, "p5", prompt.PlayerID)
	assert.Equal(t, 80, prompt.Amount)

	// Third straddle caps the chain.
	prompt, err = g.ProcessStraddle("p5", true)
	require.NoError(t, err)
	assert.Nil(t, prompt)

	assert.Equal(t, 80, g.CurrentBet())
	require.Len(t, g.Straddles(), 3)
	assert.Equal(t, 0, g.CurrentSeat(), "back around to the button")
}

func TestStraddleDisabledOrShortHanded(t *testing.T) {
	t.Parallel()

	// Disabled.
	g := newTestGame(t, DefaultRules(), 1000, 1000, 1000, 1000)
	require.NoError(t, g.StartHand(0, false))
	assert.Nil(t, g.StartStraddlePrompt())

	// Heads-up never straddles.
	g = newTestGame(t, straddleRules(1), 1000, 1000)
	require.NoError(t, g.StartHand(0, false))
	assert.Nil(t, g.StartStraddlePrompt())
	assert.Equal(t, 10, g.CurrentBet())
}

func TestStraddlePromptExpiryDeclines(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, straddleRules(1), 1000, 1000, 1000, 1000)
	require.NoError(t, g.StartHand(0, false))

	prompt := g.StartStraddlePrompt()
	require.NotNil(t, prompt)
	require.Equal(t, "p3", prompt.PlayerID)

	g.ExpireStraddlePrompt()
	assert.Nil(t, g.StraddlePromptOpen())
	assert.Empty(t, g.Straddles())
	assert.Equal(t, 10, g.CurrentBet())
	assert.Equal(t, 3, g.CurrentSeat(), "UTG still first to act")
}

func TestStraddleWrongPlayer(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, straddleRules(1), 1000, 1000, 1000, 1000)
	require.NoError(t, g.StartHand(0, false))
	require.NotNil(t, g.StartStraddlePrompt())

	_, err := g.ProcessStraddle("p1", true)
	require.ErrorIs(t, err, ErrNotYourTurn)

	_, err = g.ProcessStraddle("p3", true)
	require.NoError(t, err)
}
