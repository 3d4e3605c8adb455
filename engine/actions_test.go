package engine

import (
	"errors"
	"testing"
)

// TestApplyValidation runs each action from a fixed position reached by a
// short prefix and checks the outcome.
func TestApplyValidation(t *testing.T) {
	deck := []Card{c(1), c(2), c(3), c(4), reveal, exchange, c(3), c(1)}
	setup := []Action{InitialPeek(0), InitialPeek(0)}
	tests := []struct {
		name    string
		prefix  []Action
		seat    uint8
		action  Action
		wantErr error
		phase   Phase
	}{
		{"peek out of range", nil, 0, InitialPeek(3), ErrInvalidPosition, PhaseInitialPeek},
		{"draw before peek", nil, 0, Draw(), ErrInvalidActionInState, PhaseInitialPeek},
		{"draw", setup, 0, Draw(), nil, PhaseDrawResolution},
		{"declare end", setup, 0, DeclareEnd(), nil, PhaseRoundClosing},
		{"wrong seat", setup, 1, Draw(), ErrInvalidActionInState, PhaseMainAction},
		{"use ability on reveal", append(setup, Draw()), 0, UseAbility(), nil, PhaseAbilityResolution},
		{"discard reveal unused", append(setup, Draw()), 0, Discard(), nil, PhaseMainAction},
		{"swap reveal in", append(setup, Draw()), 0, SwapIntoHand(1), nil, PhaseMainAction},
		{"exchange with reveal", append(setup, Draw(), UseAbility()), 0, ExchangeCards(0, 0), ErrInvalidActionInState, PhaseAbilityResolution},
		{"reveal bad position", append(setup, Draw(), UseAbility()), 0, RevealOpponent(9), ErrInvalidPosition, PhaseAbilityResolution},
		{"reveal", append(setup, Draw(), UseAbility()), 0, RevealOpponent(0), nil, PhaseMainAction},
		{"reveal with exchange", append(setup, Draw(), Discard(), Draw(), UseAbility()), 1, RevealOpponent(0), ErrInvalidActionInState, PhaseAbilityResolution},
		{"exchange", append(setup, Draw(), Discard(), Draw(), UseAbility()), 1, ExchangeCards(1, 0), nil, PhaseMainAction},
		{"unknown kind", setup, 0, Action{Kind: ActionKind(42)}, ErrInvalidActionInState, PhaseMainAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRound(t, deck...)
			for _, a := range tt.prefix {
				mustApply(t, r, r.ActingSeat(), a)
			}
			var err error
			if tt.wantErr != nil {
				assertRejected(t, r, tt.seat, tt.action, tt.wantErr)
			} else {
				err = r.Apply(tt.seat, tt.action)
			}
			if err != nil {
				t.Fatalf("Apply(%s): %v", tt.action, err)
			}
			if r.Phase() != tt.phase {
				t.Errorf("Phase = %s, want %s", r.Phase(), tt.phase)
			}
			if tt.wantErr == nil && !r.LastAction.Valid {
				t.Error("LastAction not recorded")
			}
			assertConserved(t, r, len(deck))
		})
	}
}

func TestApplyErrorsAreClassifiable(t *testing.T) {
	r := newTestRound(t, StandardCards()...)
	err := r.Apply(0, InitialPeek(5))
	if !errors.Is(err, ErrInvalidPosition) || errors.Is(err, ErrInvalidActionInState) {
		t.Errorf("err = %v, want only ErrInvalidPosition", err)
	}
	err = r.Apply(1, InitialPeek(0))
	if !errors.Is(err, ErrInvalidActionInState) || errors.Is(err, ErrInvalidPosition) {
		t.Errorf("err = %v, want only ErrInvalidActionInState", err)
	}
}
