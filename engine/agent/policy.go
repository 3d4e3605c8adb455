package agent

import (
	"context"
	"os"
	"sort"

	engine "github.com/jason-s-yu/cabo/engine"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LinearPolicy is a linear action-value function over the encoded state:
// Q(s, a) = Bias[a] + sum_i Weights[a][i] * s[i]. The weights file is
// produced elsewhere; this package only reads it.
type LinearPolicy struct {
	Name    string      `yaml:"name"`
	Weights [][]float32 `yaml:"weights"` // NumAbstractActions rows of StateSize
	Bias    []float32   `yaml:"bias"`    // NumAbstractActions, optional
}

// LoadPolicy reads a yaml weights file.
func LoadPolicy(path string) (*LinearPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading policy file [%s]", path)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing policy file [%s]", path)
	}
	return p, nil
}

// ParsePolicy decodes and validates yaml weights.
func ParsePolicy(data []byte) (*LinearPolicy, error) {
	var p LinearPolicy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "yaml")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the weight matrix shape.
func (p *LinearPolicy) Validate() error {
	if len(p.Weights) != NumAbstractActions {
		return errors.Errorf("weights: got %d rows, want %d", len(p.Weights), NumAbstractActions)
	}
	for i, row := range p.Weights {
		if len(row) != StateSize {
			return errors.Errorf("weights row %d (%s): got %d columns, want %d", i, AbstractAction(i), len(row), StateSize)
		}
	}
	if len(p.Bias) != 0 && len(p.Bias) != NumAbstractActions {
		return errors.Errorf("bias: got %d entries, want %d", len(p.Bias), NumAbstractActions)
	}
	return nil
}

// Q returns the value of each abstract action in state.
func (p *LinearPolicy) Q(state *[StateSize]float32) [NumAbstractActions]float32 {
	var q [NumAbstractActions]float32
	for a := range q {
		if len(p.Bias) == NumAbstractActions {
			q[a] = p.Bias[a]
		}
		for i, w := range p.Weights[a] {
			q[a] += w * state[i]
		}
	}
	return q
}

// Ranked returns the abstract actions ordered by descending value. Ties keep
// index order.
func (p *LinearPolicy) Ranked(state *[StateSize]float32) []AbstractAction {
	q := p.Q(state)
	order := make([]AbstractAction, NumAbstractActions)
	for i := range order {
		order[i] = AbstractAction(i)
	}
	sort.SliceStable(order, func(i, j int) bool { return q[order[i]] > q[order[j]] })
	return order
}

// PolicyProvider plays the highest-valued abstract action that maps to a
// legal engine action.
type PolicyProvider struct {
	Policy *LinearPolicy
}

// NewPolicyProvider wraps p.
func NewPolicyProvider(p *LinearPolicy) *PolicyProvider {
	return &PolicyProvider{Policy: p}
}

// Decide implements engine.DecisionProvider.
func (pp *PolicyProvider) Decide(ctx context.Context, obs engine.Observation) (engine.Action, error) {
	if err := ctx.Err(); err != nil {
		return engine.Action{}, err
	}
	if len(obs.Legal) == 0 {
		return engine.Action{}, errNoLegalActions
	}

	switch obs.Phase {
	case engine.PhaseInitialPeek:
		return engine.InitialPeek(firstOr(unknownPositions(obs.OwnHand), 0)), nil
	case engine.PhaseAbilityResolution:
		return abilityTarget(obs), nil
	}

	var state [StateSize]float32
	Encode(obs, &state)
	for _, abs := range pp.Policy.Ranked(&state) {
		if a, ok := MapAbstract(abs, obs); ok && obs.IsLegal(a) {
			return a, nil
		}
	}
	return obs.Legal[0], nil
}

// MapAbstract translates an abstract action into the engine action it means
// in obs. ok is false when the abstract action has no meaning in this phase.
func MapAbstract(abs AbstractAction, obs engine.Observation) (engine.Action, bool) {
	switch obs.Phase {
	case engine.PhaseMainAction, engine.PhaseRoundClosing:
		if abs == AbstractCabo {
			return engine.DeclareEnd(), true
		}
		return engine.Draw(), true

	case engine.PhaseDrawResolution:
		switch abs {
		case AbstractPeek:
			if obs.Drawn.Ability() == engine.AbilityReveal {
				return engine.UseAbility(), true
			}
			return engine.Discard(), true
		case AbstractSwap:
			if obs.Drawn.Ability() == engine.AbilityExchange {
				return engine.UseAbility(), true
			}
			return engine.Discard(), true
		case AbstractSwapPos1:
			return engine.SwapIntoHand(0), true
		case AbstractSwapPos2:
			return engine.SwapIntoHand(1), true
		case AbstractDiscard:
			return engine.Discard(), true
		}
	}
	return engine.Action{}, false
}

// abilityTarget picks the target once an ability is committed: an unseen
// opponent position for Reveal, or the best known pairing for Exchange.
func abilityTarget(obs engine.Observation) engine.Action {
	if obs.Drawn.Ability() == engine.AbilityReveal {
		return engine.RevealOpponent(firstOr(unknownPositions(obs.OpponentHand), 0))
	}
	my, opp, _, _ := exchangeTarget(obs)
	return engine.ExchangeCards(my, opp)
}

func firstOr(positions []uint8, def uint8) uint8 {
	if len(positions) == 0 {
		return def
	}
	return positions[0]
}
