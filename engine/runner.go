package engine

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDecisionTimeout = 30 * time.Second
	DefaultMaxAttempts     = 10
)

// Runner drives a Round to completion by querying one provider per seat.
type Runner struct {
	Round     *Round
	Providers [NumPlayers]DecisionProvider

	// DecisionTimeout bounds a single Decide call. Zero means DefaultDecisionTimeout.
	DecisionTimeout time.Duration
	// MaxAttempts bounds consecutive failed or rejected decisions for one
	// action. Zero means DefaultMaxAttempts.
	MaxAttempts int

	Log *logrus.Entry

	// Mu, if set, is held while the round is observed or mutated and while
	// OnApplied runs. It is never held across a Decide call.
	Mu sync.Locker

	// OnApplied, if set, is called after every accepted action.
	OnApplied func(seat uint8, a Action)
}

type decision struct {
	action Action
	err    error
}

// Play runs the round until GameOver and returns its result. Provider errors
// and timeouts count as "no action" and the seat is asked again; a seat that
// never produces a valid action yields ErrProviderStuck.
func (rn *Runner) Play(ctx context.Context) (Result, error) {
	if rn.Round == nil {
		return Result{}, errors.New("runner has no round")
	}
	for seat, p := range rn.Providers {
		if p == nil {
			return Result{}, errors.Errorf("no decision provider for seat %d", seat)
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		rn.lock()
		over, seat := rn.Round.IsOver(), rn.Round.ActingSeat()
		rn.unlock()
		if over {
			break
		}
		if err := rn.step(ctx, seat); err != nil {
			return Result{}, err
		}
	}
	rn.lock()
	defer rn.unlock()
	return rn.Round.Result()
}

func (rn *Runner) step(ctx context.Context, seat uint8) error {
	provider := rn.Providers[seat]
	attempts := rn.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	rn.lock()
	log := rn.logger().WithFields(logrus.Fields{"seat": seat, "phase": rn.Round.Phase()})
	rn.unlock()

	for attempt := 1; attempt <= attempts; attempt++ {
		rn.lock()
		obs := rn.Round.Observe(seat)
		rn.unlock()

		a, err := rn.decide(ctx, provider, obs)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).WithField("attempt", attempt).Warn("no decision from provider")
			continue
		}

		rn.lock()
		err = rn.Round.Apply(seat, a)
		if err == nil && rn.OnApplied != nil {
			rn.OnApplied(seat, a)
		}
		rn.unlock()

		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{"attempt": attempt, "action": a.String()}).Warn("action rejected")
			if l, ok := provider.(RejectionListener); ok {
				l.ActionRejected(a, err)
			}
			continue
		}
		log.WithField("action", a.String()).Debug("action applied")
		return nil
	}

	log.WithField("attempts", attempts).Error("provider produced no valid action")
	return errors.Wrapf(ErrProviderStuck, "seat %d after %d attempts", seat, attempts)
}

// decide runs one bounded Decide call. The round is never touched from the
// provider goroutine.
func (rn *Runner) decide(ctx context.Context, p DecisionProvider, obs Observation) (Action, error) {
	timeout := rn.DecisionTimeout
	if timeout <= 0 {
		timeout = DefaultDecisionTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan decision, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- decision{err: errors.Errorf("provider panic: %v", rec)}
			}
		}()
		a, err := p.Decide(dctx, obs)
		ch <- decision{action: a, err: err}
	}()

	select {
	case <-dctx.Done():
		return Action{}, errors.Wrapf(ErrProviderFailure, "decision: %v", dctx.Err())
	case d := <-ch:
		if d.err != nil {
			return Action{}, errors.Wrapf(ErrProviderFailure, "%v", d.err)
		}
		return d.action, nil
	}
}

func (rn *Runner) lock() {
	if rn.Mu != nil {
		rn.Mu.Lock()
	}
}

func (rn *Runner) unlock() {
	if rn.Mu != nil {
		rn.Mu.Unlock()
	}
}

func (rn *Runner) logger() *logrus.Entry {
	if rn.Log != nil {
		return rn.Log
	}
	return rn.Round.log
}
