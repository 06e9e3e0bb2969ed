package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerrooms/internal/deck"
)

func runItRules(twice, thrice bool) Rules {
	r := DefaultRules()
	r.RunItTwice = twice
	r.RunItThrice = thrice
	return r
}

// allInPreflop drives three equal stacks all-in before the flop.
func allInPreflop(t *testing.T, g *Game) *ActionResult {
	t.Helper()
	act(t, g, "p0", ActionAllIn)
	act(t, g, "p1", ActionAllIn)
	return act(t, g, "p2", ActionAllIn)
}

func TestRunItTwiceSplitsPotAcrossBoards(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, runItRules(true, false), 100, 100, 100)
	require.NoError(t, g.StartHand(0, false))

	res := allInPreflop(t, g)
	require.True(t, res.RunItEligible)

	prompt := g.RunItPromptOpen()
	require.NotNil(t, prompt)
	assert.ElementsMatch(t, []string{"p0", "p1", "p2"}, prompt.Eligible)
	assert.Equal(t, 2, prompt.MaxTimes)

	for _, id := range []string{"p0", "p1", "p2"} {
		require.NoError(t, g.ProcessRunItChoice(id, 2))
		require.NoError(t, g.ConfirmRunItChoice(id))
	}
	require.True(t, g.AllRunItChoicesConfirmed())
	require.True(t, g.AllConfirmedChoicesSame())
	require.Equal(t, 2, g.FinalRunItChoice())

	g.ResolveRunIt()
	require.Equal(t, PhaseComplete, g.Phase())

	boards := g.Boards()
	require.Len(t, boards, 2)
	seen := make(map[deck.Card]bool)
	for _, b := range boards {
		require.Len(t, b, 5)
		for _, c := range b {
			assert.False(t, seen[c], "boards share no cards from a preflop all-in")
			seen[c] = true
		}
	}

	// 300 pot, 150 per board.
	perBoard := map[int]int{}
	for _, w := range g.Winners() {
		perBoard[w.Board] += w.Amount
	}
	assert.Equal(t, 150, perBoard[0])
	assert.Equal(t, 150, perBoard[1])

	total := 0
	for _, p := range g.Players() {
		total += p.Chips
	}
	assert.Equal(t, 300, total)
}

func TestRunItChoiceDowngrades(t *testing.T) {
	t.Parallel()

	// Thrice off: a choice of 3 becomes 2.
	g := newTestGame(t, runItRules(true, false), 100, 100, 100)
	require.NoError(t, g.StartHand(0, false))
	allInPreflop(t, g)
	require.NotNil(t, g.RunItPromptOpen())

	require.NoError(t, g.ProcessRunItChoice("p0", 3))
	assert.Equal(t, 2, g.RunItPromptOpen().Choices["p0"].Choice)
}

func TestRunItDisabledMeansNoPrompt(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, DefaultRules(), 100, 100, 100)
	require.NoError(t, g.StartHand(0, false))

	res := allInPreflop(t, g)
	assert.False(t, res.RunItEligible)
	assert.Nil(t, g.RunItPromptOpen())

	// Board ran out silently on a single board.
	require.Equal(t, PhaseComplete, g.Phase())
	require.Len(t, g.Boards(), 1)
	assert.Len(t, g.Boards()[0], 5)
	assert.Equal(t, PhasePreflop, g.RunoutFrom())
}

func TestRunItFinalChoiceIsMinimum(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, runItRules(true, true), 100, 100, 100)
	require.NoError(t, g.StartHand(0, false))
	allInPreflop(t, g)
	require.NotNil(t, g.RunItPromptOpen())

	require.NoError(t, g.ProcessRunItChoice("p0", 3))
	require.NoError(t, g.ConfirmRunItChoice("p0"))
	require.NoError(t, g.ProcessRunItChoice("p1", 2))
	require.NoError(t, g.ConfirmRunItChoice("p1"))
	// p2 never confirms and counts as 1.
	require.False(t, g.AllRunItChoicesConfirmed())
	assert.Equal(t, 1, g.FinalRunItChoice())

	g.ResolveRunIt()
	require.Equal(t, PhaseComplete, g.Phase())
	assert.Len(t, g.Boards(), 1)
}

func TestRunItConfirmWithoutSelecting(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, runItRules(true, false), 100, 100, 100)
	require.NoError(t, g.StartHand(0, false))
	allInPreflop(t, g)

	require.NoError(t, g.ConfirmRunItChoice("p0"))
	assert.Equal(t, 1, g.RunItPromptOpen().Choices["p0"].Choice)

	require.NoError(t, g.ProcessRunItChoice("p1", 2))
	require.NoError(t, g.ConfirmRunItChoice("p1"))
	require.NoError(t, g.ProcessRunItChoice("p2", 2))
	require.NoError(t, g.ConfirmRunItChoice("p2"))

	assert.Equal(t, 1, g.FinalRunItChoice(), "one confirmed single board holds it to one")
}

func TestRunItPromptValidation(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, runItRules(true, false), 100, 100, 100)
	require.NoError(t, g.StartHand(0, false))

	require.ErrorIs(t, g.ProcessRunItChoice("p0", 2), ErrNoRunItPrompt)
	require.ErrorIs(t, g.ConfirmRunItChoice("p0"), ErrNoRunItPrompt)

	allInPreflop(t, g)
	require.ErrorIs(t, g.ProcessRunItChoice("ghost", 2), ErrInvalidChoice)
	require.ErrorIs(t, g.ProcessRunItChoice("p0", 4), ErrInvalidChoice)

	require.NoError(t, g.ProcessRunItChoice("p0", 2))
	require.NoError(t, g.ConfirmRunItChoice("p0"))
	require.ErrorIs(t, g.ProcessRunItChoice("p0", 1), ErrCannotConfirm)
}
