package game

import (
	"sort"

	"github.com/lox/pokerrooms/internal/deck"
	"github.com/lox/pokerrooms/internal/evaluator"
)

// PotType labels which pot tier a winner entry came from.
type PotType string

const (
	PotTypeMain PotType = "main"
	PotTypeSide PotType = "side"
)

// Winner is one award line from a completed hand. Board indexes into the
// hand's boards; HandResult is nil for fold-out wins.
type Winner struct {
	PlayerID   string                 `json:"playerId"`
	Seat       int                    `json:"seat"`
	Amount     int                    `json:"amount"`
	HandResult *evaluator.HandResult  `json:"handResult,omitempty"`
	PotType    PotType                `json:"potType"`
	WonByFold  bool                   `json:"wonByFold,omitempty"`
	Board      int                    `json:"boardIndex"`
}

// SevenDeuceBonus records the side bonus paid to a 7-2 showdown winner.
type SevenDeuceBonus struct {
	WinnerID      string         `json:"winnerId"`
	Total         int            `json:"total"`
	Contributions map[string]int `json:"contributions"`
}

// resolveShowdown awards every pot tier across every board, applies the
// 7-2 bonus, reveals the deck seed and completes the hand.
func (g *Game) resolveShowdown() {
	g.collectBets()
	g.phase = PhaseShowdown
	g.sidePots = g.buildSidePots()

	contenders := g.playersInHand()
	if len(contenders) == 0 {
		g.abortHand(ErrInvariantViolated)
		return
	}

	// Rank each contender once per board.
	results := make([]map[string]evaluator.HandResult, len(g.boards))
	for b, board := range g.boards {
		results[b] = make(map[string]evaluator.HandResult)
		for _, p := range contenders {
			r, err := g.variant.EvaluateHand(g.hole[p.ID], board)
			if err != nil {
				g.abortHand(err)
				return
			}
			results[b][p.ID] = r
		}
	}

	numBoards := len(g.boards)
	for tier, pot := range g.sidePots {
		potType := PotTypeSide
		if tier == 0 {
			potType = PotTypeMain
		}
		// Equal share per board, remainder onto board 1.
		share := pot.Amount / numBoards
		remainder := pot.Amount - share*numBoards
		for b := 0; b < numBoards; b++ {
			amount := share
			if b == 0 {
				amount += remainder
			}
			if amount > 0 {
				g.awardBoardPot(b, amount, pot.Eligible, results[b], potType)
			}
		}
	}

	g.applySevenDeuceBonus()
	g.pot = 0
	g.wonByFold = false
	g.phase = PhaseComplete
	g.currentSeat = -1
	g.revealedSeed = g.deck.RevealSeed()
}

// awardBoardPot pays one pot tier's share on one board to the best eligible
// hand(s). Ties split evenly; odd chips go to the earliest seats clockwise
// from the dealer.
func (g *Game) awardBoardPot(board, amount int, eligible []string, ranks map[string]evaluator.HandResult, potType PotType) {
	best := -1
	var winners []*Player
	for _, id := range eligible {
		r, ok := ranks[id]
		if !ok {
			continue
		}
		switch {
		case r.Value > best:
			best = r.Value
			winners = []*Player{g.Player(id)}
		case r.Value == best:
			winners = append(winners, g.Player(id))
		}
	}
	if len(winners) == 0 {
		return
	}

	// Odd-chip order: clockwise from the seat after the dealer.
	sort.Slice(winners, func(i, j int) bool {
		return g.clockwiseDistance(winners[i].Seat) < g.clockwiseDistance(winners[j].Seat)
	})

	share := amount / len(winners)
	remainder := amount - share*len(winners)
	for i, w := range winners {
		won := share
		if i < remainder {
			won++
		}
		if won == 0 {
			continue
		}
		w.Chips += won
		r := ranks[w.ID]
		g.winners = append(g.winners, Winner{
			PlayerID:   w.ID,
			Seat:       w.Seat,
			Amount:     won,
			HandResult: &r,
			PotType:    potType,
			Board:      board,
		})
	}
}

// clockwiseDistance orders seats starting from the seat after the dealer.
func (g *Game) clockwiseDistance(seat int) int {
	return (seat - g.dealerSeat - 1 + g.maxPlayers) % g.maxPlayers
}

// applySevenDeuceBonus pays the table bonus when a single player scooped a
// non-fold showdown holding exactly seven-deuce. Hold'em only; every other
// dealt-in seat pays up to the configured bonus.
func (g *Game) applySevenDeuceBonus() {
	if !g.rules.SevenDeuce || g.rules.SevenDeuceBonus <= 0 {
		return
	}
	if g.variant != VariantTexasHoldem {
		return
	}
	winnerID := ""
	for _, w := range g.winners {
		if winnerID == "" {
			winnerID = w.PlayerID
		} else if w.PlayerID != winnerID {
			return
		}
	}
	if winnerID == "" {
		return
	}
	hole := g.hole[winnerID]
	if len(hole) != 2 || !isSevenDeuce(hole[0], hole[1]) {
		return
	}
	winner := g.Player(winnerID)
	if winner == nil {
		return
	}

	bonus := &SevenDeuceBonus{
		WinnerID:      winnerID,
		Contributions: make(map[string]int),
	}
	for _, p := range g.players {
		if p.ID == winnerID || !p.DealtIn {
			continue
		}
		pay := g.rules.SevenDeuceBonus
		if pay > p.Chips {
			pay = p.Chips
		}
		if pay == 0 {
			continue
		}
		p.Chips -= pay
		winner.Chips += pay
		bonus.Contributions[p.ID] = pay
		bonus.Total += pay
	}
	if bonus.Total > 0 {
		g.bonus = bonus
	}
}

func isSevenDeuce(a, b deck.Card) bool {
	return (a.Rank == deck.Seven && b.Rank == deck.Two) ||
		(a.Rank == deck.Two && b.Rank == deck.Seven)
}
