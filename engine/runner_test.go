package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// firstLegal always plays the first advertised action.
var firstLegal = ProviderFunc(func(_ context.Context, obs Observation) (Action, error) {
	return obs.Legal[0], nil
})

type rejectCounter struct {
	action   Action
	rejected []error
}

func (p *rejectCounter) Decide(context.Context, Observation) (Action, error) {
	return p.action, nil
}

func (p *rejectCounter) ActionRejected(_ Action, err error) {
	p.rejected = append(p.rejected, err)
}

func TestRunnerStuckProvider(t *testing.T) {
	r := newTestRound(t, StandardCards()...)
	bad := &rejectCounter{action: DeclareEnd()} // illegal during the initial peek
	rn := &Runner{
		Round:       r,
		Providers:   [NumPlayers]DecisionProvider{bad, firstLegal},
		MaxAttempts: 3,
	}

	_, err := rn.Play(context.Background())
	if !errors.Is(err, ErrProviderStuck) {
		t.Fatalf("Play err = %v, want ErrProviderStuck", err)
	}
	if len(bad.rejected) != 3 {
		t.Fatalf("rejections = %d, want 3", len(bad.rejected))
	}
	for _, err := range bad.rejected {
		if !errors.Is(err, ErrInvalidActionInState) {
			t.Errorf("rejection err = %v, want ErrInvalidActionInState", err)
		}
	}
	if r.Phase() != PhaseInitialPeek || r.Players[0].Peeked {
		t.Errorf("rejected actions changed the round: phase %s", r.Phase())
	}
}

func TestRunnerRepromptsAfterTimeoutAndError(t *testing.T) {
	var calls atomic.Int32
	flaky := ProviderFunc(func(ctx context.Context, obs Observation) (Action, error) {
		switch calls.Add(1) {
		case 1:
			<-ctx.Done() // hang until the runner gives up
			return Action{}, ctx.Err()
		case 2:
			return Action{}, errors.New("model unavailable")
		case 3:
			panic("provider bug")
		}
		return obs.Legal[0], nil
	})

	r := newTestRound(t, StandardCards()...)
	rn := &Runner{
		Round:           r,
		Providers:       [NumPlayers]DecisionProvider{flaky, firstLegal},
		DecisionTimeout: 20 * time.Millisecond,
		MaxAttempts:     5,
	}
	res, err := rn.Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if calls.Load() < 4 {
		t.Errorf("provider called %d times, want at least 4", calls.Load())
	}
	if res.Reason == EndNone {
		t.Errorf("Result = %+v, want a finished round", res)
	}
}

func TestRunnerContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocking := ProviderFunc(func(ctx context.Context, _ Observation) (Action, error) {
		cancel()
		<-ctx.Done()
		return Action{}, ctx.Err()
	})
	rn := &Runner{
		Round:     newTestRound(t, StandardCards()...),
		Providers: [NumPlayers]DecisionProvider{blocking, blocking},
	}
	if _, err := rn.Play(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Play err = %v, want context.Canceled", err)
	}
}

func TestRunnerMissingProvider(t *testing.T) {
	rn := &Runner{Round: newTestRound(t, StandardCards()...)}
	if _, err := rn.Play(context.Background()); err == nil {
		t.Error("Play without providers should fail")
	}
}

func TestRunnerOnApplied(t *testing.T) {
	var seen []Action
	rn := &Runner{
		Round:     newTestRound(t, StandardCards()...),
		Providers: [NumPlayers]DecisionProvider{firstLegal, firstLegal},
		OnApplied: func(_ uint8, a Action) { seen = append(seen, a) },
	}
	if _, err := rn.Play(context.Background()); err != nil {
		t.Fatal(err)
	}
	// firstLegal peeks position 0 and never calls Cabo, so the deck runs out.
	if len(seen) == 0 || seen[0] != InitialPeek(0) || seen[2] != Draw() {
		t.Errorf("applied sequence = %v", seen)
	}
	if rn.Round.EndReason != EndDeckExhausted {
		t.Errorf("EndReason = %s, want deck_exhausted", rn.Round.EndReason)
	}
}

func TestRunnerLockNotHeldDuringDecide(t *testing.T) {
	var mu sync.Mutex
	var heldInDecide, heldInApplied atomic.Int32
	p := ProviderFunc(func(_ context.Context, obs Observation) (Action, error) {
		if !mu.TryLock() {
			heldInDecide.Add(1)
		} else {
			mu.Unlock()
		}
		return obs.Legal[0], nil
	})
	rn := &Runner{
		Round:     newTestRound(t, StandardCards()...),
		Providers: [NumPlayers]DecisionProvider{p, p},
		Mu:        &mu,
		OnApplied: func(uint8, Action) {
			if mu.TryLock() {
				heldInApplied.Add(1)
				mu.Unlock()
			}
		},
	}
	if _, err := rn.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if n := heldInDecide.Load(); n != 0 {
		t.Errorf("lock held in %d Decide calls", n)
	}
	if n := heldInApplied.Load(); n != 0 {
		t.Errorf("lock free in %d OnApplied calls", n)
	}
	if !mu.TryLock() {
		t.Fatal("lock still held after Play")
	}
}
