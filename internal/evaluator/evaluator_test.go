package evaluator

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/lox/pokerrooms/internal/deck"
)

func cards(t *testing.T, codes ...string) []deck.Card {
	t.Helper()
	out, err := deck.ParseCards(codes...)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func eval(t *testing.T, codes ...string) HandResult {
	t.Helper()
	result, err := Evaluate(cards(t, codes...))
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestEvaluateClasses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		codes []string
		class Class
	}{
		{"royal flush", []string{"As", "Ks", "Qs", "Js", "Ts"}, RoyalFlush},
		{"straight flush", []string{"9h", "8h", "7h", "6h", "5h"}, StraightFlush},
		{"wheel straight flush", []string{"Ad", "2d", "3d", "4d", "5d"}, StraightFlush},
		{"four of a kind", []string{"Kc", "Kd", "Kh", "Ks", "2c"}, FourOfAKind},
		{"full house", []string{"Ac", "Ad", "Ah", "2c", "2d"}, FullHouse},
		{"flush", []string{"Ac", "Jc", "8c", "5c", "2c"}, Flush},
		{"straight", []string{"Tc", "9d", "8h", "7s", "6c"}, Straight},
		{"wheel", []string{"Ac", "2d", "3h", "4s", "5c"}, Straight},
		{"trips", []string{"7c", "7d", "7h", "Ks", "2c"}, ThreeOfAKind},
		{"two pair", []string{"Kc", "Kd", "4h", "4s", "2c"}, TwoPair},
		{"pair", []string{"Qc", "Qd", "Ah", "8s", "2c"}, OnePair},
		{"high card", []string{"Ac", "Jd", "8h", "5s", "2c"}, HighCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := eval(t, tt.codes...)
			if result.Class != tt.class {
				t.Errorf("class = %v, want %v (%s)", result.Class, tt.class, result.Description)
			}
		})
	}
}

func TestEvaluateBestOfSeven(t *testing.T) {
	t.Parallel()
	// Board makes a flush; hole cards irrelevant.
	result := eval(t, "Ah", "Kh", "Qh", "Jh", "9h", "2c", "2d")
	if result.Class != Flush {
		t.Errorf("class = %v, want Flush", result.Class)
	}

	// Seven cards where the best five are a straight using one hole card.
	result = eval(t, "9c", "8d", "7h", "6s", "5c", "Ad", "Ah")
	if result.Class != Straight {
		t.Errorf("class = %v, want Straight", result.Class)
	}
}

func TestKickerOrdering(t *testing.T) {
	t.Parallel()
	// Same pair, better kicker wins.
	a := eval(t, "Qc", "Qd", "Ah", "8s", "2c")
	b := eval(t, "Qh", "Qs", "Kh", "8d", "2d")
	if !a.Beats(b) {
		t.Error("ace kicker should beat king kicker")
	}

	// Wheel is the lowest straight.
	wheel := eval(t, "Ac", "2d", "3h", "4s", "5c")
	sixHigh := eval(t, "2c", "3d", "4h", "5s", "6c")
	broadway := eval(t, "Tc", "Jd", "Qh", "Ks", "Ac")
	if !sixHigh.Beats(wheel) {
		t.Error("six-high straight should beat the wheel")
	}
	if !broadway.Beats(sixHigh) {
		t.Error("broadway should beat six-high straight")
	}
}

func TestTieSameValue(t *testing.T) {
	t.Parallel()
	a := eval(t, "Qc", "Qd", "Ah", "8s", "2c")
	b := eval(t, "Qh", "Qs", "Ad", "8c", "2d")
	if a.Value != b.Value {
		t.Errorf("identical ranks across suits should tie: %d vs %d", a.Value, b.Value)
	}
}

func TestEvaluatePermutationInvariant(t *testing.T) {
	t.Parallel()
	base := cards(t, "9c", "8d", "7h", "6s", "5c", "Ad", "Kh")
	want := eval(t, "9c", "8d", "7h", "6s", "5c", "Ad", "Kh").Value

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := make([]deck.Card, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		result, err := Evaluate(shuffled)
		if err != nil {
			t.Fatal(err)
		}
		if result.Value != want {
			t.Fatalf("permutation %d: value = %d, want %d", i, result.Value, want)
		}
	}
}

func TestEvaluateOmahaTwoHoleConstraint(t *testing.T) {
	t.Parallel()
	// Four hearts on the board, one in hand: NOT a flush in Omaha because
	// exactly two hole cards must play.
	hole := cards(t, "Ah", "2c", "3d", "4s")
	board := cards(t, "Kh", "Qh", "Jh", "9h", "2s")
	result, err := EvaluateOmaha(hole, board)
	if err != nil {
		t.Fatal(err)
	}
	if result.Class == Flush || result.Class == RoyalFlush || result.Class == StraightFlush {
		t.Errorf("one hole heart must not make a flush, got %s", result.Description)
	}

	// Two hearts in hand complete the royal flush.
	hole = cards(t, "Ah", "Th", "3d", "4s")
	result, err = EvaluateOmaha(hole, board)
	if err != nil {
		t.Fatal(err)
	}
	if result.Class != RoyalFlush {
		t.Errorf("Ah Th on Kh Qh Jh should be a royal flush, got %s", result.Description)
	}
}

func TestEvaluateOmahaArgumentCounts(t *testing.T) {
	t.Parallel()
	hole := cards(t, "Ah", "2c", "3d")
	board := cards(t, "Kh", "Qh", "Jh", "9h", "2s")
	if _, err := EvaluateOmaha(hole, board); err == nil {
		t.Error("expected error with 3 hole cards")
	}
}

func TestEvaluateArgumentCounts(t *testing.T) {
	t.Parallel()
	if _, err := Evaluate(cards(t, "Ah", "Kh")); err == nil {
		t.Error("expected error with too few cards")
	}
}

func TestHandResultJSONRoundTrip(t *testing.T) {
	t.Parallel()
	result := eval(t, "Ac", "Ad", "Ah", "2c", "2d")
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}

	var decoded HandResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Class != result.Class || decoded.Value != result.Value || decoded.Description != result.Description {
		t.Errorf("round trip mismatch: %+v vs %+v", decoded, result)
	}
	if len(decoded.Cards) != 5 {
		t.Errorf("round trip cards = %d, want 5", len(decoded.Cards))
	}
}

func TestClassValuesDoNotCollide(t *testing.T) {
	t.Parallel()
	// The worst hand of a class must beat the best hand of the class below.
	worstFlush := eval(t, "7c", "5c", "4c", "3c", "2c")
	bestStraight := eval(t, "Ac", "Kd", "Qh", "Js", "Tc")
	if !worstFlush.Beats(bestStraight) {
		t.Error("worst flush should beat best straight")
	}

	worstPair := eval(t, "2c", "2d", "5h", "4s", "3c")
	bestHigh := eval(t, "Ac", "Kd", "Qh", "Js", "9c")
	if !worstPair.Beats(bestHigh) {
		t.Error("worst pair should beat best high card")
	}
}
