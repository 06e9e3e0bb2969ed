package deck

import (
	"encoding/json"
	"testing"
)

func TestCardCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		card Card
		code string
	}{
		{NewCard(Ace, Spades), "As"},
		{NewCard(Ten, Diamonds), "Td"},
		{NewCard(Two, Clubs), "2c"},
		{NewCard(King, Hearts), "Kh"},
	}

	for _, tt := range tests {
		if got := tt.card.Code(); got != tt.code {
			t.Errorf("Code() = %q, want %q", got, tt.code)
		}
	}
}

func TestParseCardRoundTrip(t *testing.T) {
	t.Parallel()
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			card := NewCard(rank, suit)
			parsed, err := ParseCard(card.Code())
			if err != nil {
				t.Fatalf("ParseCard(%q): %v", card.Code(), err)
			}
			if parsed != card {
				t.Errorf("ParseCard(%q) = %v, want %v", card.Code(), parsed, card)
			}
		}
	}
}

func TestParseCardInvalid(t *testing.T) {
	t.Parallel()
	for _, code := range []string{"", "A", "Asx", "1s", "Ax", "Zs"} {
		if _, err := ParseCard(code); err == nil {
			t.Errorf("ParseCard(%q) should fail", code)
		}
	}
}

func TestCardJSONRoundTrip(t *testing.T) {
	t.Parallel()
	card := NewCard(Queen, Hearts)
	data, err := json.Marshal(card)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Card
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != card {
		t.Errorf("round trip = %v, want %v", decoded, card)
	}
}
