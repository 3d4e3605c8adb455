package engine

import "context"

// DecisionProvider chooses the next action for one seat. The round never
// inspects which implementation it is talking to.
type DecisionProvider interface {
	Decide(ctx context.Context, obs Observation) (Action, error)
}

// RejectionListener is implemented by providers that want to hear why the
// round refused an action, e.g. to report it to a human.
type RejectionListener interface {
	ActionRejected(a Action, err error)
}

// ProviderFunc adapts a function to DecisionProvider.
type ProviderFunc func(ctx context.Context, obs Observation) (Action, error)

// Decide calls f.
func (f ProviderFunc) Decide(ctx context.Context, obs Observation) (Action, error) {
	return f(ctx, obs)
}
