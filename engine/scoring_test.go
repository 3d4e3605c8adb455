package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFinalScoresCaboLaw(t *testing.T) {
	tests := []struct {
		name   string
		raw    [NumPlayers]int
		caller int8
		want   [NumPlayers]int
	}{
		{"no caller keeps raw", [NumPlayers]int{7, 3}, -1, [NumPlayers]int{7, 3}},
		{"caller lower", [NumPlayers]int{2, 4}, 0, [NumPlayers]int{0, 4}},
		{"caller equal", [NumPlayers]int{5, 5}, 1, [NumPlayers]int{5, 0}},
		{"caller higher", [NumPlayers]int{6, 4}, 0, [NumPlayers]int{11, 4}},
		{"seat 1 caller higher", [NumPlayers]int{2, 3}, 1, [NumPlayers]int{2, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FinalScores(tt.raw, tt.caller, 5)
			if got != tt.want {
				t.Errorf("FinalScores(%v, %d) = %v, want %v", tt.raw, tt.caller, got, tt.want)
			}
		})
	}
}

func TestFinalScoresLawExhaustive(t *testing.T) {
	for cRaw := 2; cRaw <= 10; cRaw++ {
		for oRaw := 2; oRaw <= 10; oRaw++ {
			for caller := int8(0); caller < NumPlayers; caller++ {
				var raw [NumPlayers]int
				raw[caller] = cRaw
				raw[OpponentOf(uint8(caller))] = oRaw
				final := FinalScores(raw, caller, 5)
				if final[OpponentOf(uint8(caller))] != oRaw {
					t.Fatalf("other's final %d != raw %d", final[OpponentOf(uint8(caller))], oRaw)
				}
				want := cRaw + 5
				if cRaw <= oRaw {
					want = 0
				}
				if final[caller] != want {
					t.Fatalf("caller raw %d vs %d: final %d, want %d", cRaw, oRaw, final[caller], want)
				}
			}
		}
	}
}

func TestWinnerTieBreak(t *testing.T) {
	tests := []struct {
		name   string
		final  [NumPlayers]int
		caller int8
		tie    TieBreak
		want   int8
	}{
		{"lowest wins", [NumPlayers]int{3, 4}, -1, TieDraw, 0},
		{"lowest wins seat 1", [NumPlayers]int{9, 0}, 1, TieFavorOther, 1},
		{"tie draw", [NumPlayers]int{4, 4}, 0, TieDraw, -1},
		{"tie zero value draws", [NumPlayers]int{4, 4}, 0, "", -1},
		{"tie favor caller", [NumPlayers]int{4, 4}, 1, TieFavorCaller, 1},
		{"tie favor other", [NumPlayers]int{4, 4}, 1, TieFavorOther, 0},
		{"tie favor caller without caller", [NumPlayers]int{4, 4}, -1, TieFavorCaller, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Winner(tt.final, tt.caller, tt.tie); got != tt.want {
				t.Errorf("Winner = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResultBeforeGameOver(t *testing.T) {
	r := newTestRound(t, StandardCards()...)
	if _, err := r.Result(); !errors.Is(err, ErrInvalidActionInState) {
		t.Errorf("Result() err = %v, want ErrInvalidActionInState", err)
	}
}

func TestResultFalseCaboPenaltyConfigurable(t *testing.T) {
	rules := DefaultHouseRules()
	rules.FalseCaboPenalty = 10
	r, err := NewRound(rules, NewDeckFromCards([]Card{c(4), c(4), c(1), c(1), c(3)}), nil)
	if err != nil {
		t.Fatal(err)
	}
	peekBoth(t, r, 0, 0)
	mustApply(t, r, 0, DeclareEnd())
	mustApply(t, r, 1, Draw())
	mustApply(t, r, 1, Discard())

	got, err := r.Result()
	if err != nil {
		t.Fatal(err)
	}
	want := Result{
		Reason:     EndCabo,
		CaboCaller: 0,
		Raw:        [NumPlayers]int{8, 2},
		Final:      [NumPlayers]int{18, 2},
		Winner:     1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Result mismatch (-want +got):\n%s", diff)
	}
}
