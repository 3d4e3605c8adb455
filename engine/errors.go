package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidPosition is returned when a hand position is outside [0, HandSize).
	ErrInvalidPosition = errors.New("invalid hand position")
	// ErrDeckEmpty is returned by Deck.Draw when no cards remain.
	ErrDeckEmpty = errors.New("deck is empty")
	// ErrInvalidDeck is returned by NewRound for a deck holding a card that is
	// not part of the standard deck, or more copies of one than it has.
	ErrInvalidDeck = errors.New("invalid deck")
	// ErrInvalidActionInState is returned when an action is not legal in the current phase.
	ErrInvalidActionInState = errors.New("action not legal in current state")
	// ErrProviderFailure marks an error produced by a decision provider rather than the rules.
	ErrProviderFailure = errors.New("decision provider failure")
	// ErrProviderStuck is returned by Runner.Play when a provider exhausts its attempts.
	ErrProviderStuck = errors.New("decision provider made no valid action")
)

// InvariantViolation is the panic value raised when the round detects
// corrupted state. It is never returned as an error.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", v.Invariant, v.Detail)
}

func violate(invariant, format string, args ...any) {
	panic(&InvariantViolation{Invariant: invariant, Detail: fmt.Sprintf(format, args...)})
}
