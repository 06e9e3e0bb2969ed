package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestDeckSizeInvariant(t *testing.T) {
	t.Parallel()
	d := New()
	if d.Size() != CardsPerDeck {
		t.Fatalf("fresh deck size = %d, want %d", d.Size(), CardsPerDeck)
	}

	d.Burn()
	d.DealN(7)
	d.Burn()
	if d.Size() != CardsPerDeck {
		t.Errorf("size after deal/burn = %d, want %d", d.Size(), CardsPerDeck)
	}
	if d.Remaining() != CardsPerDeck-9 {
		t.Errorf("remaining = %d, want %d", d.Remaining(), CardsPerDeck-9)
	}
	if d.Dealt() != 7 || d.Burned() != 2 {
		t.Errorf("dealt=%d burned=%d, want 7 and 2", d.Dealt(), d.Burned())
	}
}

func TestDeckContainsAllCards(t *testing.T) {
	t.Parallel()
	d := New()
	seen := make(map[string]bool)
	for {
		card, ok := d.Deal()
		if !ok {
			break
		}
		if seen[card.Code()] {
			t.Fatalf("duplicate card %s", card.Code())
		}
		seen[card.Code()] = true
	}
	if len(seen) != CardsPerDeck {
		t.Errorf("saw %d distinct cards, want %d", len(seen), CardsPerDeck)
	}
}

func TestDeckDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i * 7)
	}

	a := NewWithSeed(seed)
	b := NewWithSeed(seed)
	for i := 0; i < CardsPerDeck; i++ {
		ca, _ := a.Deal()
		cb, _ := b.Deal()
		if ca != cb {
			t.Fatalf("card %d differs: %s vs %s", i, ca.Code(), cb.Code())
		}
	}
}

func TestDeckSeedCommitmentMatchesReveal(t *testing.T) {
	t.Parallel()
	d := New()
	commitment := d.SeedCommitment()

	seedBytes, err := hex.DecodeString(d.RevealSeed())
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(seedBytes)
	if hex.EncodeToString(sum[:]) != commitment {
		t.Error("commitment does not match SHA-256 of revealed seed")
	}
}

func TestDeckHandID(t *testing.T) {
	t.Parallel()
	d := New()
	if len(d.HandID()) != 16 {
		t.Errorf("hand id %q length = %d, want 16", d.HandID(), len(d.HandID()))
	}
	prev := d.HandID()
	d.Reset(1)
	if d.HandID() == prev {
		t.Error("hand id should change on reset")
	}
}

func TestDealRunOut(t *testing.T) {
	t.Parallel()
	d := New()
	boards, err := d.DealRunOut(5, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(boards) != 3 {
		t.Fatalf("got %d boards, want 3", len(boards))
	}
	for i, board := range boards {
		if len(board) != 5 {
			t.Errorf("board %d has %d cards, want 5", i, len(board))
		}
	}
	// One burn per board plus the board cards.
	if d.Burned() != 3 || d.Dealt() != 15 {
		t.Errorf("burned=%d dealt=%d, want 3 and 15", d.Burned(), d.Dealt())
	}
}

func TestDealRunOutInsufficientCards(t *testing.T) {
	t.Parallel()
	d := New()
	d.DealN(45)
	if _, err := d.DealRunOut(5, 2); err == nil {
		t.Error("expected error with insufficient cards")
	}
}

func TestPeekNextNonDestructive(t *testing.T) {
	t.Parallel()
	d := New()
	peeked := d.PeekNext(3)
	if len(peeked) != 3 {
		t.Fatalf("peeked %d cards, want 3", len(peeked))
	}
	for i := 0; i < 3; i++ {
		card, _ := d.Deal()
		if card != peeked[i] {
			t.Errorf("deal %d = %s, peek said %s", i, card.Code(), peeked[i].Code())
		}
	}
}

func TestDealEmptyDeck(t *testing.T) {
	t.Parallel()
	d := New()
	d.DealN(CardsPerDeck)
	if _, ok := d.Deal(); ok {
		t.Error("deal on empty deck should return no card")
	}
}

func TestMultipleDecks(t *testing.T) {
	t.Parallel()
	d := New()
	d.Reset(2)
	if d.Size() != 2*CardsPerDeck {
		t.Errorf("two-deck size = %d, want %d", d.Size(), 2*CardsPerDeck)
	}
}
