package engine

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestScenarioImmediateCabo: seat 0 holds {1,1}, calls Cabo at once, seat 1
// draws a 3 and discards it.
func TestScenarioImmediateCabo(t *testing.T) {
	r := newTestRound(t, StandardCards()...)
	peekBoth(t, r, 0, 0)

	mustApply(t, r, 0, DeclareEnd())
	if r.IsOver() {
		t.Fatal("round ended before the closing turn")
	}
	mustApply(t, r, 1, Draw())
	if r.Pending != c(3) {
		t.Fatalf("closing draw = %s, want 3", r.Pending)
	}
	mustApply(t, r, 1, Discard())

	if !r.IsOver() || r.EndReason != EndCabo {
		t.Fatalf("phase %s reason %s, want game over by cabo", r.Phase(), r.EndReason)
	}
	got, err := r.Result()
	if err != nil {
		t.Fatal(err)
	}
	want := Result{
		Reason:     EndCabo,
		CaboCaller: 0,
		Raw:        [NumPlayers]int{2, 4},
		Final:      [NumPlayers]int{0, 4},
		Winner:     0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Result mismatch (-want +got):\n%s", diff)
	}
	assertConserved(t, r, DeckSize)
}

// TestScenarioSwapThenDiscard checks conservation step by step through a
// swap turn and a discard turn.
func TestScenarioSwapThenDiscard(t *testing.T) {
	r := newTestRound(t, StandardCards()...)
	peekBoth(t, r, 0, 0)
	assertConserved(t, r, DeckSize)

	steps := []struct {
		seat uint8
		a    Action
	}{
		{0, Draw()},
		{0, SwapIntoHand(0)},
		{1, Draw()},
		{1, Discard()},
	}
	for _, s := range steps {
		mustApply(t, r, s.seat, s.a)
		assertConserved(t, r, DeckSize)
		for seat := range r.Players {
			for pos, card := range r.Players[seat].Hand {
				if card == EmptyCard {
					t.Fatalf("after %s: seat %d position %d empty", s.a, seat, pos)
				}
			}
		}
	}

	if r.Players[0].Hand != [HandSize]Card{c(3), c(1)} {
		t.Errorf("seat 0 hand = %v, want [3 1]", r.Players[0].Hand)
	}
	if diff := cmp.Diff([]Card{c(1), c(3)}, r.DiscardPile); diff != "" {
		t.Errorf("discard pile mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Card{c(4), c(4), reveal, exchange}, r.DeckCards()); diff != "" {
		t.Errorf("deck mismatch (-want +got):\n%s", diff)
	}
}

// TestScenarioDeckExhausted: a draw from an empty deck ends the round with
// no closing turn for anyone.
func TestScenarioDeckExhausted(t *testing.T) {
	t.Run("no caller", func(t *testing.T) {
		r := newTestRound(t, c(1), c(2), c(3), c(4))
		peekBoth(t, r, 0, 1)
		mustApply(t, r, 0, Draw())

		if !r.IsOver() || r.EndReason != EndDeckExhausted {
			t.Fatalf("phase %s reason %s, want exhausted game over", r.Phase(), r.EndReason)
		}
		if r.Pending != EmptyCard || r.TurnNumber != 0 {
			t.Errorf("pending %s turn %d after exhausted draw", r.Pending, r.TurnNumber)
		}
		got, err := r.Result()
		if err != nil {
			t.Fatal(err)
		}
		want := Result{Reason: EndDeckExhausted, CaboCaller: -1, Raw: [NumPlayers]int{3, 7}, Final: [NumPlayers]int{3, 7}, Winner: 0}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Result mismatch (-want +got):\n%s", diff)
		}
		assertConserved(t, r, 4)
	})

	t.Run("closing turn cut short", func(t *testing.T) {
		r := newTestRound(t, c(3), c(3), c(4), c(4))
		peekBoth(t, r, 0, 0)
		mustApply(t, r, 0, DeclareEnd())
		mustApply(t, r, 1, Draw())

		if !r.IsOver() || r.EndReason != EndDeckExhausted {
			t.Fatalf("phase %s reason %s, want exhausted game over", r.Phase(), r.EndReason)
		}
		got, err := r.Result()
		if err != nil {
			t.Fatal(err)
		}
		// Cabo was called, so the caller is still scored by the Cabo rule.
		if got.Final != [NumPlayers]int{0, 8} || got.Winner != 0 {
			t.Errorf("Result = %+v, want final [0 8] winner 0", got)
		}
	})
}

// TestCaboGrantsExactlyOneTurn checks the closing turn ends the round
// whichever resolution it takes.
func TestCaboGrantsExactlyOneTurn(t *testing.T) {
	resolutions := map[string][]Action{
		"discard": {Draw(), Discard()},
		"swap":    {Draw(), SwapIntoHand(1)},
		"reveal":  {Draw(), UseAbility(), RevealOpponent(0)},
	}
	for name, closing := range resolutions {
		t.Run(name, func(t *testing.T) {
			r := newTestRound(t, c(1), c(2), c(3), c(4), reveal, c(2))
			peekBoth(t, r, 0, 0)
			mustApply(t, r, 0, DeclareEnd())
			for i, a := range closing {
				if r.IsOver() {
					t.Fatalf("round ended before closing action %d", i)
				}
				mustApply(t, r, 1, a)
			}
			if !r.IsOver() || r.EndReason != EndCabo {
				t.Fatalf("phase %s reason %s after closing turn", r.Phase(), r.EndReason)
			}
		})
	}
}

func randomProvider(rng *rand.Rand) DecisionProvider {
	return ProviderFunc(func(_ context.Context, obs Observation) (Action, error) {
		return obs.Legal[rng.IntN(len(obs.Legal))], nil
	})
}

// TestRandomGamesTerminate plays seeded random rounds through the Runner and
// checks invariants after every applied action.
func TestRandomGamesTerminate(t *testing.T) {
	reasons := map[EndReason]int{}
	for seed := uint64(0); seed < 2000; seed++ {
		r, err := NewSeededRound(seed, DefaultHouseRules(), nil)
		if err != nil {
			t.Fatal(err)
		}
		rng := rand.New(rand.NewPCG(seed, 7))
		applied := 0
		rn := &Runner{
			Round:     r,
			Providers: [NumPlayers]DecisionProvider{randomProvider(rng), randomProvider(rng)},
			OnApplied: func(seat uint8, a Action) {
				applied++
				assertConserved(t, r, DeckSize)
				if r.CaboCalled() && !r.Players[r.CaboCaller].Peeked {
					t.Fatalf("seed %d: caller never peeked", seed)
				}
			},
		}
		res, err := rn.Play(context.Background())
		if err != nil {
			t.Fatalf("seed %d: Play: %v", seed, err)
		}
		if res.Reason == EndNone {
			t.Fatalf("seed %d: finished without an end reason", seed)
		}
		if want := FinalScores(res.Raw, res.CaboCaller, 5); res.Final != want {
			t.Fatalf("seed %d: final %v, want %v", seed, res.Final, want)
		}
		if applied == 0 || applied > 40 {
			t.Fatalf("seed %d: %d actions applied", seed, applied)
		}
		reasons[res.Reason]++
	}
	if reasons[EndCabo] == 0 || reasons[EndDeckExhausted] == 0 {
		t.Errorf("random play never reached both endings: %v", reasons)
	}
}
