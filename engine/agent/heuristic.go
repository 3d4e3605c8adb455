package agent

import (
	"context"
	"math/rand/v2"
	"sync"

	engine "github.com/jason-s-yu/cabo/engine"
)

// Thresholds used by HeuristicProvider.
const (
	caboAverageMax  = 2 // call Cabo when the mean known own rank is at most this
	exchangeGiveMin = 4 // only give away a known card of at least this rank
	exchangeTakeMax = 2 // only take a known opponent card of at most this rank
)

// HeuristicProvider plays a fixed rule set:
//   - peek a random unknown own position at setup
//   - call Cabo once the known own cards average 2 or less
//   - use Reveal on an opponent position it has no snapshot of
//   - use Exchange to give a known high card for a known low opponent card
//   - swap a drawn plain card over a known higher card, else discard
type HeuristicProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicProvider returns a heuristic player whose random choices come from seed.
func NewHeuristicProvider(seed uint64) *HeuristicProvider {
	return &HeuristicProvider{rng: rand.New(rand.NewPCG(seed, 0x6361626f))}
}

// Decide implements engine.DecisionProvider.
func (h *HeuristicProvider) Decide(ctx context.Context, obs engine.Observation) (engine.Action, error) {
	if err := ctx.Err(); err != nil {
		return engine.Action{}, err
	}
	if len(obs.Legal) == 0 {
		return engine.Action{}, errNoLegalActions
	}
	a := h.choose(obs)
	if !obs.IsLegal(a) {
		return obs.Legal[0], nil
	}
	return a, nil
}

func (h *HeuristicProvider) choose(obs engine.Observation) engine.Action {
	switch obs.Phase {
	case engine.PhaseInitialPeek:
		return engine.InitialPeek(h.pick(unknownPositions(obs.OwnHand)))

	case engine.PhaseMainAction:
		if !obs.CaboCalled && shouldCallCabo(obs) {
			return engine.DeclareEnd()
		}
		return engine.Draw()

	case engine.PhaseRoundClosing:
		return engine.Draw()

	case engine.PhaseDrawResolution:
		switch obs.Drawn.Ability() {
		case engine.AbilityReveal:
			if len(unknownPositions(obs.OpponentHand)) > 0 {
				return engine.UseAbility()
			}
			return engine.Discard()
		case engine.AbilityExchange:
			if _, _, ok := favorableExchange(obs); ok {
				return engine.UseAbility()
			}
			return engine.Discard()
		}
		for pos, s := range obs.OwnHand {
			if s.Known && obs.Drawn.Rank() < s.Card.Rank() {
				return engine.SwapIntoHand(uint8(pos))
			}
		}
		return engine.Discard()

	case engine.PhaseAbilityResolution:
		if obs.Drawn.Ability() == engine.AbilityReveal {
			return engine.RevealOpponent(h.pick(unknownPositions(obs.OpponentHand)))
		}
		my, opp, _ := favorableExchange(obs)
		return engine.ExchangeCards(my, opp)
	}
	return obs.Legal[0]
}

// pick returns a random element of positions, or 0 when it is empty.
func (h *HeuristicProvider) pick(positions []uint8) uint8 {
	if len(positions) == 0 {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return positions[h.rng.IntN(len(positions))]
}

func shouldCallCabo(obs engine.Observation) bool {
	sum, n := obs.KnownOwnTotal()
	return n > 0 && sum <= caboAverageMax*n
}

func unknownPositions(slots [engine.HandSize]engine.SlotView) []uint8 {
	var out []uint8
	for pos, s := range slots {
		if !s.Known {
			out = append(out, uint8(pos))
		}
	}
	return out
}

// exchangeTarget pairs the highest known own card with the lowest known
// opponent card. Unknown sides fall back to position 0.
func exchangeTarget(obs engine.Observation) (my, opp uint8, myRank, oppRank int) {
	myRank, oppRank = -1, maxRank+1
	for pos, s := range obs.OwnHand {
		if s.Known && s.Card.Value() > myRank {
			my, myRank = uint8(pos), s.Card.Value()
		}
	}
	for pos, s := range obs.OpponentHand {
		if s.Known && s.Card.Value() < oppRank {
			opp, oppRank = uint8(pos), s.Card.Value()
		}
	}
	return my, opp, myRank, oppRank
}

// favorableExchange reports whether a known high own card can be traded for a
// known low opponent card.
func favorableExchange(obs engine.Observation) (my, opp uint8, ok bool) {
	my, opp, myRank, oppRank := exchangeTarget(obs)
	return my, opp, myRank >= exchangeGiveMin && oppRank <= exchangeTakeMax
}
