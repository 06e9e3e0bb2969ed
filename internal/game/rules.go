package game

// Stakes defines the forced bets and buy-in range for a room. All amounts
// are chips. Either blind may be 0 (disabled).
type Stakes struct {
	SmallBlind int `json:"smallBlind"`
	BigBlind   int `json:"bigBlind"`
	Ante       int `json:"ante,omitempty"`
	MinBuyIn   int `json:"minBuyIn"`
	MaxBuyIn   int `json:"maxBuyIn"`
}

// Rules holds the optional table rules the engine and orchestrator consult.
type Rules struct {
	RunItTwice   bool `json:"runItTwice"`
	RunItThrice  bool `json:"runItThrice"`
	RunOutOnFold bool `json:"runOutOnFold"`

	BombPotEnabled     bool `json:"bombPotEnabled"`
	BombPotAmount      int  `json:"bombPotAmount"`
	BombPotDoubleBoard bool `json:"bombPotDoubleBoard"`

	StraddleEnabled          bool `json:"straddleEnabled"`
	MultipleStraddlesAllowed bool `json:"multipleStraddlesAllowed"`
	MaxStraddles             int  `json:"maxStraddles"`

	TurnTimeEnabled    bool `json:"turnTimeEnabled"`
	TurnTimeSeconds    int  `json:"turnTimeSeconds"`
	WarningTimeSeconds int  `json:"warningTimeSeconds"`

	SevenDeuce      bool `json:"sevenDeuce"`
	SevenDeuceBonus int  `json:"sevenDeuceBonus"`

	WaitForAllRebuys bool `json:"waitForAllRebuys"`
}

// DefaultRules returns the rules applied to a new room before the host
// customizes anything.
func DefaultRules() Rules {
	return Rules{
		MaxStraddles:       1,
		TurnTimeEnabled:    true,
		TurnTimeSeconds:    30,
		WarningTimeSeconds: 15,
		SevenDeuceBonus:    10,
	}
}

// DefaultStakes returns a 5/10 game with a 100BB spread buy-in.
func DefaultStakes() Stakes {
	return Stakes{
		SmallBlind: 5,
		BigBlind:   10,
		MinBuyIn:   200,
		MaxBuyIn:   1000,
	}
}

// maxStraddleCount normalizes the straddle cap given the rule combination.
func (r Rules) maxStraddleCount() int {
	if !r.StraddleEnabled {
		return 0
	}
	if !r.MultipleStraddlesAllowed {
		return 1
	}
	if r.MaxStraddles < 1 {
		return 1
	}
	return r.MaxStraddles
}

// clampRunItChoice downgrades a run-it choice to the strongest enabled
// option, else 1.
func (r Rules) clampRunItChoice(choice int) int {
	if choice >= 3 && r.RunItThrice {
		return 3
	}
	if choice >= 2 && r.RunItTwice {
		return 2
	}
	return 1
}
