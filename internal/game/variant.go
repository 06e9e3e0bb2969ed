package game

import (
	"encoding/json"
	"fmt"

	"github.com/lox/pokerrooms/internal/deck"
	"github.com/lox/pokerrooms/internal/evaluator"
)

// Variant identifies the poker variant a room plays.
type Variant string

const (
	VariantTexasHoldem Variant = "texas-holdem"
	VariantOmaha       Variant = "omaha"
)

// Valid reports whether v is a playable variant.
func (v Variant) Valid() bool {
	return v == VariantTexasHoldem || v == VariantOmaha
}

// HoleCardCount returns the number of hole cards dealt per seat.
func (v Variant) HoleCardCount() int {
	if v == VariantOmaha {
		return 4
	}
	return 2
}

// EvaluateHand ranks a player's hand against a board under the variant's
// rules. Omaha enforces the two-hole/three-board constraint.
func (v Variant) EvaluateHand(hole, board []deck.Card) (evaluator.HandResult, error) {
	if v == VariantOmaha {
		return evaluator.EvaluateOmaha(hole, board)
	}
	all := make([]deck.Card, 0, len(hole)+len(board))
	all = append(all, hole...)
	all = append(all, board...)
	return evaluator.Evaluate(all)
}

// ParseVariant validates a variant name from the wire.
func ParseVariant(name string) (Variant, error) {
	v := Variant(name)
	if !v.Valid() {
		return "", fmt.Errorf("game: unknown variant %q", name)
	}
	return v, nil
}

// MarshalJSON emits the variant name.
func (v Variant) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// UnmarshalJSON restores a variant, rejecting unknown names.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseVariant(name)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
