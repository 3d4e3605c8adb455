package engine

import (
	"errors"
	"testing"
)

func testPlayer(a, b Card) Player {
	p := newPlayer()
	p.Hand = [HandSize]Card{a, b}
	return p
}

func TestPeekOwn(t *testing.T) {
	p := testPlayer(NewCard(2, AbilityNone), NewCard(5, AbilityReveal))

	c, err := p.PeekOwn(1)
	if err != nil {
		t.Fatalf("PeekOwn(1): %v", err)
	}
	if c != NewCard(5, AbilityReveal) {
		t.Errorf("PeekOwn(1) = %s, want 5R", c)
	}
	if p.OwnKnown != [HandSize]bool{false, true} {
		t.Errorf("OwnKnown = %v, want [false true]", p.OwnKnown)
	}

	if _, err := p.PeekOwn(HandSize); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("PeekOwn(%d) err = %v, want ErrInvalidPosition", HandSize, err)
	}
	if p.KnownCount() != 1 {
		t.Errorf("KnownCount = %d, want 1", p.KnownCount())
	}
}

func TestObserveAndInvalidate(t *testing.T) {
	p := testPlayer(NewCard(1, AbilityNone), NewCard(1, AbilityNone))

	if err := p.ObserveOpponentCard(0, NewCard(4, AbilityNone)); err != nil {
		t.Fatalf("ObserveOpponentCard: %v", err)
	}
	if p.OpponentKnown[0] != NewCard(4, AbilityNone) || p.OpponentKnown[1] != EmptyCard {
		t.Errorf("OpponentKnown = %v", p.OpponentKnown)
	}
	if p.OwnKnown != [HandSize]bool{} {
		t.Errorf("observing the opponent changed own knowledge: %v", p.OwnKnown)
	}
	if err := p.ObserveOpponentCard(2, NewCard(4, AbilityNone)); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("ObserveOpponentCard(2) err = %v, want ErrInvalidPosition", err)
	}

	p.InvalidateOpponentView(0)
	if p.OpponentKnown[0] != EmptyCard {
		t.Errorf("InvalidateOpponentView left %s", p.OpponentKnown[0])
	}

	p.PeekOwn(0)
	p.InvalidateOwn(0)
	p.InvalidateOwn(9) // out of range is a no-op
	if p.OwnKnown[0] {
		t.Error("InvalidateOwn(0) kept the entry")
	}
}

func TestRawScore(t *testing.T) {
	tests := []struct {
		a, b Card
		want int
	}{
		{NewCard(1, AbilityNone), NewCard(1, AbilityNone), 2},
		{NewCard(4, AbilityNone), NewCard(5, AbilityExchange), 9},
		{NewCard(5, AbilityReveal), NewCard(5, AbilityExchange), 10},
	}
	for _, tt := range tests {
		p := testPlayer(tt.a, tt.b)
		p.OwnKnown = [HandSize]bool{true, false}
		if got := p.RawScore(); got != tt.want {
			t.Errorf("RawScore(%s,%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
