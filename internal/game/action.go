package game

// ActionType identifies a betting action.
type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
	ActionAllIn ActionType = "all-in"
)

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionFold, ActionCheck, ActionCall, ActionBet, ActionRaise, ActionAllIn:
		return true
	}
	return false
}

// Action is a player's betting decision. Amount is the target total
// contribution for this street on bet/raise and ignored otherwise.
type Action struct {
	Type   ActionType `json:"type"`
	Amount int        `json:"amount,omitempty"`
}

// ActionResult describes what a processed action did, so the orchestrator
// can schedule timers and fan-out without re-deriving engine state.
type ActionResult struct {
	PlayerID   string     `json:"playerId"`
	Action     ActionType `json:"type"`
	AmountPaid int        `json:"amountPaid"`
	Pot        int        `json:"pot"`

	PhaseChanged bool `json:"-"`
	HandComplete bool `json:"-"`

	// RunItEligible is set when betting closed with two or more all-in
	// players and cards to come: the orchestrator should open the run-it
	// prompt instead of letting the board run out.
	RunItEligible bool `json:"-"`
}
