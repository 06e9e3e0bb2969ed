// Package evaluator ranks poker hands. A hand's strength is a single integer:
// class*classUnit + kicker, where kicker packs the ordered ranks of the best
// five cards in base 15. Strict integer comparison gives the total order;
// equal values are ties.
package evaluator

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lox/pokerrooms/internal/deck"
)

// Class is the rank class of a five-card hand.
type Class int

const (
	HighCard Class = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the readable name of the class.
func (c Class) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// MarshalJSON emits the class name.
func (c Class) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON restores a class from its name.
func (c *Class) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for candidate := HighCard; candidate <= RoyalFlush; candidate++ {
		if candidate.String() == name {
			*c = candidate
			return nil
		}
	}
	return fmt.Errorf("evaluator: unknown hand class %q", name)
}

const (
	// kickerBase is larger than the highest rank (Ace = 14) so five ranks
	// pack without collisions.
	kickerBase = 15

	// classUnit separates classes: any kicker value is < 15^5.
	classUnit = kickerBase * kickerBase * kickerBase * kickerBase * kickerBase
)

// HandResult is the outcome of evaluating a hand.
type HandResult struct {
	Class       Class       `json:"rank"`
	Value       int         `json:"value"`
	Cards       []deck.Card `json:"cards"`
	Description string      `json:"description"`
}

// Beats reports whether h strictly beats other.
func (h HandResult) Beats(other HandResult) bool {
	return h.Value > other.Value
}

// Evaluate ranks a hand of 5 to 7 cards, returning the best five-card subset.
func Evaluate(cards []deck.Card) (HandResult, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandResult{}, fmt.Errorf("evaluator: need 5-7 cards, got %d", len(cards))
	}
	if len(cards) == 5 {
		five := [5]deck.Card{cards[0], cards[1], cards[2], cards[3], cards[4]}
		return evaluate5(five), nil
	}

	var best HandResult
	var five [5]deck.Card
	n := len(cards)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five[0], five[1], five[2], five[3], five[4] =
							cards[a], cards[b], cards[c], cards[d], cards[e]
						if result := evaluate5(five); result.Value > best.Value {
							best = result
						}
					}
				}
			}
		}
	}
	return best, nil
}

// EvaluateOmaha ranks the best hand using exactly two of four hole cards and
// three of five board cards, enumerating all 60 combinations.
func EvaluateOmaha(hole, board []deck.Card) (HandResult, error) {
	if len(hole) != 4 {
		return HandResult{}, fmt.Errorf("evaluator: omaha needs 4 hole cards, got %d", len(hole))
	}
	if len(board) != 5 {
		return HandResult{}, fmt.Errorf("evaluator: omaha needs 5 board cards, got %d", len(board))
	}

	var best HandResult
	var five [5]deck.Card
	for h1 := 0; h1 < 3; h1++ {
		for h2 := h1 + 1; h2 < 4; h2++ {
			for b1 := 0; b1 < 3; b1++ {
				for b2 := b1 + 1; b2 < 4; b2++ {
					for b3 := b2 + 1; b3 < 5; b3++ {
						five[0], five[1] = hole[h1], hole[h2]
						five[2], five[3], five[4] = board[b1], board[b2], board[b3]
						if result := evaluate5(five); result.Value > best.Value {
							best = result
						}
					}
				}
			}
		}
	}
	return best, nil
}

// evaluate5 classifies exactly five cards.
func evaluate5(cards [5]deck.Card) HandResult {
	sorted := cards[:]
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	flush := true
	for i := 1; i < 5; i++ {
		if sorted[i].Suit != sorted[0].Suit {
			flush = false
			break
		}
	}

	straightHigh, straight := straightHighRank(sorted)

	counts := make(map[deck.Rank]int, 5)
	for _, c := range sorted {
		counts[c.Rank]++
	}

	// Group ranks by multiplicity, then rank, descending. This is the kicker
	// ordering for every non-straight class.
	ranks := make([]deck.Rank, 0, len(counts))
	for r := range counts {
		ranks = append(ranks, r)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if counts[ranks[i]] != counts[ranks[j]] {
			return counts[ranks[i]] > counts[ranks[j]]
		}
		return ranks[i] > ranks[j]
	})

	var class Class
	var kickers []int
	var desc string

	switch {
	case flush && straight && straightHigh == deck.Ace:
		class = RoyalFlush
		kickers = straightKickers(straightHigh)
		desc = "Royal Flush"
	case flush && straight:
		class = StraightFlush
		kickers = straightKickers(straightHigh)
		desc = fmt.Sprintf("Straight Flush, %s High", rankWord(straightHigh))
	case counts[ranks[0]] == 4:
		class = FourOfAKind
		kickers = groupedKickers(ranks, counts)
		desc = fmt.Sprintf("Four of a Kind, %s", rankPlural(ranks[0]))
	case counts[ranks[0]] == 3 && counts[ranks[1]] == 2:
		class = FullHouse
		kickers = groupedKickers(ranks, counts)
		desc = fmt.Sprintf("Full House, %s over %s", rankPlural(ranks[0]), rankPlural(ranks[1]))
	case flush:
		class = Flush
		kickers = groupedKickers(ranks, counts)
		desc = fmt.Sprintf("Flush, %s High", rankWord(sorted[0].Rank))
	case straight:
		class = Straight
		kickers = straightKickers(straightHigh)
		desc = fmt.Sprintf("Straight, %s High", rankWord(straightHigh))
	case counts[ranks[0]] == 3:
		class = ThreeOfAKind
		kickers = groupedKickers(ranks, counts)
		desc = fmt.Sprintf("Three of a Kind, %s", rankPlural(ranks[0]))
	case counts[ranks[0]] == 2 && counts[ranks[1]] == 2:
		class = TwoPair
		kickers = groupedKickers(ranks, counts)
		desc = fmt.Sprintf("Two Pair, %s and %s", rankPlural(ranks[0]), rankPlural(ranks[1]))
	case counts[ranks[0]] == 2:
		class = OnePair
		kickers = groupedKickers(ranks, counts)
		desc = fmt.Sprintf("Pair of %s", rankPlural(ranks[0]))
	default:
		class = HighCard
		kickers = groupedKickers(ranks, counts)
		desc = fmt.Sprintf("%s High", rankWord(sorted[0].Rank))
	}

	value := int(class) * classUnit
	kicker := 0
	for _, k := range kickers {
		kicker = kicker*kickerBase + k
	}
	value += kicker

	out := make([]deck.Card, 5)
	copy(out, sorted)

	return HandResult{
		Class:       class,
		Value:       value,
		Cards:       out,
		Description: desc,
	}
}

// straightHighRank returns the high card of a straight formed by the five
// sorted-descending cards, treating A-2-3-4-5 as a five-high straight.
func straightHighRank(sorted []deck.Card) (deck.Rank, bool) {
	run := true
	for i := 1; i < 5; i++ {
		if sorted[i-1].Rank != sorted[i].Rank+1 {
			run = false
			break
		}
	}
	if run {
		return sorted[0].Rank, true
	}

	// Wheel: A,5,4,3,2 when sorted descending.
	if sorted[0].Rank == deck.Ace &&
		sorted[1].Rank == deck.Five &&
		sorted[2].Rank == deck.Four &&
		sorted[3].Rank == deck.Three &&
		sorted[4].Rank == deck.Two {
		return deck.Five, true
	}
	return 0, false
}

// straightKickers packs a straight as its descending run, with the ace
// counting as one below the deuce in a wheel.
func straightKickers(high deck.Rank) []int {
	ks := make([]int, 5)
	for i := 0; i < 5; i++ {
		v := int(high) - i
		if v < int(deck.Two) {
			v = 1 // wheel ace
		}
		ks[i] = v
	}
	return ks
}

// groupedKickers expands grouped ranks back to five values in tiebreak order.
func groupedKickers(ranks []deck.Rank, counts map[deck.Rank]int) []int {
	ks := make([]int, 0, 5)
	for _, r := range ranks {
		for i := 0; i < counts[r]; i++ {
			ks = append(ks, r.Value())
		}
	}
	return ks
}

func rankWord(r deck.Rank) string {
	switch r {
	case deck.Jack:
		return "Jack"
	case deck.Queen:
		return "Queen"
	case deck.King:
		return "King"
	case deck.Ace:
		return "Ace"
	case deck.Ten:
		return "Ten"
	case deck.Nine:
		return "Nine"
	case deck.Eight:
		return "Eight"
	case deck.Seven:
		return "Seven"
	case deck.Six:
		return "Six"
	case deck.Five:
		return "Five"
	case deck.Four:
		return "Four"
	case deck.Three:
		return "Three"
	case deck.Two:
		return "Two"
	default:
		return "?"
	}
}

func rankPlural(r deck.Rank) string {
	if r == deck.Six {
		return "Sixes"
	}
	return rankWord(r) + "s"
}
