package game

import "github.com/lox/pokerrooms/internal/deck"

// PlayerState is the per-seat view embedded in a snapshot. Cards is nil
// unless the viewer may see them.
type PlayerState struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Seat      int          `json:"seat"`
	Chips     int          `json:"chips"`
	Status    PlayerStatus `json:"status"`
	Bet       int          `json:"bet"`
	HandTotal int          `json:"handTotal"`
	HasActed  bool         `json:"hasActed"`
	AllIn     bool         `json:"isAllIn"`
	Folded    bool         `json:"isFolded"`
	DealtIn   bool         `json:"dealtIn"`
	Cards     []deck.Card  `json:"cards,omitempty"`

	BombPotWhenDealer bool `json:"bombPotWhenDealer"`
	StraddleNextHand  bool `json:"straddleNextHand"`
}

// State is a point-in-time snapshot of the hand, personalized per viewer.
type State struct {
	HandNum        int           `json:"handNum"`
	HandID         string        `json:"handId,omitempty"`
	Variant        Variant       `json:"variant"`
	Phase          Phase         `json:"phase"`
	Stakes         Stakes        `json:"stakes"`
	Rules          Rules         `json:"rules"`
	DealerSeat     int           `json:"dealerSeat"`
	CurrentSeat    int           `json:"currentSeat"`
	Pot            int           `json:"pot"`
	SidePots       []SidePot     `json:"sidePots,omitempty"`
	CurrentBet     int           `json:"currentBet"`
	MinRaise       int           `json:"minRaise"`
	Boards         [][]deck.Card `json:"boards"`
	GhostCards     []deck.Card   `json:"ghostCards,omitempty"`
	DualBoard      bool          `json:"isDualBoard,omitempty"`
	BombPot        bool          `json:"isBombPot,omitempty"`
	Players        []PlayerState `json:"players"`
	Straddles      []Straddle    `json:"straddles,omitempty"`
	StraddleOffer  *StraddlePrompt `json:"straddlePrompt,omitempty"`
	RunItPrompt    *RunItPrompt  `json:"runItPrompt,omitempty"`
	Winners        []Winner      `json:"winners,omitempty"`
	SevenDeuce     *SevenDeuceBonus `json:"sevenDeuceBonus,omitempty"`
	WonByFold      bool          `json:"wonByFold,omitempty"`
	SeedCommitment string        `json:"seedCommitment,omitempty"`
	RevealedSeed   string        `json:"revealedSeed,omitempty"`
}

// GetState snapshots the hand for one viewer. The viewer sees their own
// hole cards; everyone's surviving cards are visible once the hand reaches
// showdown, unless it was won by a fold. An empty viewerId produces the
// spectator view.
func (g *Game) GetState(viewerID string) *State {
	s := &State{
		HandNum:     g.handNum,
		Variant:     g.variant,
		Phase:       g.phase,
		Stakes:      g.stakes,
		Rules:       g.rules,
		DealerSeat:  g.dealerSeat,
		CurrentSeat: g.currentSeat,
		Pot:         g.potTotal(),
		SidePots:    g.sidePots,
		CurrentBet:  g.currentBet,
		MinRaise:    g.minRaise,
		DualBoard:   g.dualBoard,
		BombPot:     g.bombPot,
		Straddles:   g.straddles,
		StraddleOffer: g.straddlePrompt,
		RunItPrompt: g.runIt,
		Winners:     g.winners,
		SevenDeuce:  g.bonus,
		WonByFold:   g.wonByFold,
	}

	if g.phase.InHand() || g.phase == PhaseComplete {
		s.HandID = g.deck.HandID()
		s.SeedCommitment = g.deck.SeedCommitment()
		s.RevealedSeed = g.revealedSeed
		s.GhostCards = g.ghostCards
	}

	s.Boards = make([][]deck.Card, len(g.boards))
	for i, b := range g.boards {
		s.Boards[i] = append([]deck.Card(nil), b...)
	}

	showdownReveal := (g.phase == PhaseShowdown || g.phase == PhaseComplete) && !g.wonByFold

	s.Players = make([]PlayerState, 0, len(g.players))
	for _, p := range g.players {
		ps := PlayerState{
			ID:        p.ID,
			Name:      p.Name,
			Seat:      p.Seat,
			Chips:     p.Chips,
			Status:    p.Status,
			Bet:       p.Bet,
			HandTotal: p.HandTotal,
			HasActed:  p.HasActed,
			AllIn:     p.AllIn,
			Folded:    p.Folded,
			DealtIn:   p.DealtIn,

			BombPotWhenDealer: p.BombPotWhenDealer,
			StraddleNextHand:  p.StraddleNextHand,
		}
		if p.ID == viewerID || (showdownReveal && p.InHand()) {
			ps.Cards = append([]deck.Card(nil), g.hole[p.ID]...)
		}
		s.Players = append(s.Players, ps)
	}
	return s
}
