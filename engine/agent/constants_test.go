package agent

import (
	"testing"

	engine "github.com/jason-s-yu/cabo/engine"
)

func TestAbstractActionNames(t *testing.T) {
	tests := []struct {
		a    AbstractAction
		want string
	}{
		{AbstractCabo, "cabo"},
		{AbstractPeek, "peek"},
		{AbstractSwap, "swap"},
		{AbstractSwapPos1, "swap_pos_1"},
		{AbstractSwapPos2, "swap_pos_2"},
		{AbstractDiscard, "discard"},
		{AbstractAction(9), "abstract(9)"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("AbstractAction(%d).String() = %q, want %q", uint8(tt.a), got, tt.want)
		}
	}
}

// The offsets must tile the vector with no gaps.
func TestFeatureLayout(t *testing.T) {
	slots := 2*engine.HandSize + 1
	if featOppSlots != featOwnSlots+slots {
		t.Errorf("featOppSlots = %d, want %d", featOppSlots, featOwnSlots+slots)
	}
	if featOwnAvg != featOwnSlots+2*engine.HandSize {
		t.Errorf("featOwnAvg = %d, want %d", featOwnAvg, featOwnSlots+2*engine.HandSize)
	}
	if featOppAvg != featOppSlots+2*engine.HandSize {
		t.Errorf("featOppAvg = %d, want %d", featOppAvg, featOppSlots+2*engine.HandSize)
	}
	if featDeckFrac != featOppSlots+slots {
		t.Errorf("featDeckFrac = %d, want %d", featDeckFrac, featOppSlots+slots)
	}
	if featCaboIsSelf != StateSize-1 {
		t.Errorf("featCaboIsSelf = %d, want %d", featCaboIsSelf, StateSize-1)
	}
	if NumAbstractActions != int(AbstractDiscard)+1 {
		t.Errorf("NumAbstractActions = %d, want %d", NumAbstractActions, int(AbstractDiscard)+1)
	}
}
