package game

import (
	"encoding/json"
	"fmt"
)

// Phase represents the lifecycle stage of a hand. Transitions are
// forward-only within a hand.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseStarting
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseStarting:
		return "starting"
	case PhasePreflop:
		return "preflop"
	case PhaseFlop:
		return "flop"
	case PhaseTurn:
		return "turn"
	case PhaseRiver:
		return "river"
	case PhaseShowdown:
		return "showdown"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// NextPhase returns the phase that follows p.
func NextPhase(p Phase) Phase {
	if p >= PhaseComplete {
		return PhaseComplete
	}
	return p + 1
}

// IsBetting reports whether p is a street with betting action.
func (p Phase) IsBetting() bool {
	return p >= PhasePreflop && p <= PhaseRiver
}

// InHand reports whether a hand is in progress.
func (p Phase) InHand() bool {
	return p > PhaseWaiting && p < PhaseComplete
}

// MarshalJSON emits the phase name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON restores a phase from its name.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for candidate := PhaseWaiting; candidate <= PhaseComplete; candidate++ {
		if candidate.String() == name {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("game: unknown phase %q", name)
}

// communityCardsFor returns how many community cards are on the board once
// the given phase has been dealt.
func communityCardsFor(p Phase) int {
	switch {
	case p >= PhaseRiver:
		return 5
	case p == PhaseTurn:
		return 4
	case p == PhaseFlop:
		return 3
	default:
		return 0
	}
}
