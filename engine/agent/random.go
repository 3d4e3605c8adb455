package agent

import (
	"context"
	"math/rand/v2"
	"sync"

	engine "github.com/jason-s-yu/cabo/engine"
	"github.com/pkg/errors"
)

var errNoLegalActions = errors.New("observation has no legal actions")

// RandomProvider plays a uniformly random legal action.
type RandomProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomProvider returns a random player seeded with seed.
func NewRandomProvider(seed uint64) *RandomProvider {
	return &RandomProvider{rng: rand.New(rand.NewPCG(seed, 0x72616e64))}
}

// Decide implements engine.DecisionProvider.
func (p *RandomProvider) Decide(ctx context.Context, obs engine.Observation) (engine.Action, error) {
	if err := ctx.Err(); err != nil {
		return engine.Action{}, err
	}
	if len(obs.Legal) == 0 {
		return engine.Action{}, errNoLegalActions
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return obs.Legal[p.rng.IntN(len(obs.Legal))], nil
}
