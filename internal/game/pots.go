package game

import "sort"

// SidePot is one contested layer of the pot, built at resolution time from
// each player's total hand contribution. Eligible lists the non-folded
// players who can win the layer; folded contributions are included in the
// amount but confer no eligibility.
type SidePot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// buildSidePots slices the pot into layers. Contribution levels come from
// the distinct all-in totals of players still in the hand; each layer takes
// min(level, contribution) - previous level from every dealt-in player.
// The sum of layer amounts always equals the sum of hand totals.
func (g *Game) buildSidePots() []SidePot {
	levels := g.contributionLevels()
	if len(levels) == 0 {
		return nil
	}

	var pots []SidePot
	prev := 0
	for _, level := range levels {
		layer := SidePot{}
		for _, p := range g.players {
			if !p.DealtIn {
				continue
			}
			contrib := p.HandTotal
			if contrib > level {
				contrib = level
			}
			if contrib > prev {
				layer.Amount += contrib - prev
			}
			if p.InHand() && p.HandTotal >= level {
				layer.Eligible = append(layer.Eligible, p.ID)
			}
		}
		if layer.Amount > 0 {
			pots = append(pots, layer)
		}
		prev = level
	}

	// Folded contributions above the top contested level would otherwise be
	// orphaned; fold them into the top layer so no chip leaks.
	contributed := 0
	for _, p := range g.players {
		if p.DealtIn {
			contributed += p.HandTotal
		}
	}
	layered := 0
	for _, pot := range pots {
		layered += pot.Amount
	}
	if leftover := contributed - layered; leftover > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += leftover
	}
	return pots
}

// contributionLevels returns the ascending distinct hand totals of players
// contesting the pot. Only in-hand totals create layers; a folded player's
// chips fall into whichever layers their contribution spans.
func (g *Game) contributionLevels() []int {
	seen := make(map[int]bool)
	var levels []int
	for _, p := range g.players {
		if !p.InHand() || p.HandTotal == 0 {
			continue
		}
		if !seen[p.HandTotal] {
			seen[p.HandTotal] = true
			levels = append(levels, p.HandTotal)
		}
	}
	sort.Ints(levels)

	// Folded chips above the highest contested level still belong in the
	// top layer, which min() handles; nothing more to add.
	return levels
}

// SidePots exposes the layers computed at the last resolution.
func (g *Game) SidePots() []SidePot { return g.sidePots }
