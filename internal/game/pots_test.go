package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Three-way all-in with unequal stacks (100/200/300) layers into main 300,
// side 200, side 100, with nested eligibility.
func TestThreeWayAllInSidePots(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, DefaultRules(), 100, 200, 300)
	g.dealerSeat = 0 // button moves to seat 1 at StartHand
	require.NoError(t, g.StartHand(0, false))

	require.Equal(t, 1, g.DealerSeat())
	// Three-handed from button 1: SB seat 2, BB seat 0, UTG the button.
	assert.Equal(t, 5, g.Player("p2").Bet)
	assert.Equal(t, 10, g.Player("p0").Bet)
	require.Equal(t, 1, g.CurrentSeat())

	act(t, g, "p1", ActionAllIn) // 200
	act(t, g, "p2", ActionAllIn) // 300, short over minRaise 190
	act(t, g, "p0", ActionAllIn) // 100, call for less

	require.Equal(t, PhaseComplete, g.Phase())
	require.Len(t, g.Boards()[0], 5)

	pots := g.SidePots()
	require.Len(t, pots, 3)
	assert.Equal(t, 300, pots[0].Amount)
	assert.ElementsMatch(t, []string{"p0", "p1", "p2"}, pots[0].Eligible)
	assert.Equal(t, 200, pots[1].Amount)
	assert.ElementsMatch(t, []string{"p1", "p2"}, pots[1].Eligible)
	assert.Equal(t, 100, pots[2].Amount)
	assert.ElementsMatch(t, []string{"p2"}, pots[2].Eligible)

	// Eligibility sets are nested.
	for i := 1; i < len(pots); i++ {
		assert.Subset(t, pots[i-1].Eligible, pots[i].Eligible)
	}

	total := 0
	for _, p := range g.Players() {
		total += p.Chips
	}
	assert.Equal(t, 600, total, "chips conserved across resolution")
}

// A bettor whose raise goes uncalled above everyone else's stack gets the
// excess back through a sole-eligibility layer.
func TestUncalledExcessReturned(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, DefaultRules(), 100, 500)
	require.NoError(t, g.StartHand(0, false))

	act(t, g, "p0", ActionAllIn)      // 100
	act(t, g, "p1", ActionRaise, 300) // covers; 200 can never be called

	require.Equal(t, PhaseComplete, g.Phase())

	pots := g.SidePots()
	require.Len(t, pots, 2)
	assert.Equal(t, 200, pots[0].Amount)
	assert.ElementsMatch(t, []string{"p0", "p1"}, pots[0].Eligible)
	assert.Equal(t, 200, pots[1].Amount)
	assert.ElementsMatch(t, []string{"p1"}, pots[1].Eligible)

	// p1 can lose at most 100 net.
	assert.GreaterOrEqual(t, g.Player("p1").Chips, 400)
}

func TestFoldedChipsStayInPot(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, DefaultRules(), 1000, 1000, 80)
	require.NoError(t, g.StartHand(0, false))

	act(t, g, "p0", ActionRaise, 60)
	act(t, g, "p1", ActionFold)
	act(t, g, "p2", ActionAllIn) // 80 total, short

	act(t, g, "p0", ActionCall)
	require.Equal(t, PhaseComplete, g.Phase())

	pots := g.SidePots()
	require.Len(t, pots, 1)
	// 80 from each contender plus the folded small blind.
	assert.Equal(t, 165, pots[0].Amount)
	assert.ElementsMatch(t, []string{"p0", "p2"}, pots[0].Eligible)
}
