package engine

import "fmt"

// TieBreak decides the winner when both final scores are equal.
type TieBreak string

const (
	TieDraw        TieBreak = "draw"         // nobody wins; the zero value behaves the same
	TieFavorCaller TieBreak = "favor_caller" // Cabo caller wins; draw if nobody called
	TieFavorOther  TieBreak = "favor_other"  // non-caller wins; draw if nobody called
)

// HouseRules holds configurable round settings.
type HouseRules struct {
	StartingSeat     uint8    `yaml:"starting_seat" json:"starting_seat"`           // seat taking the first main action
	FalseCaboPenalty int      `yaml:"false_cabo_penalty" json:"false_cabo_penalty"` // added when the caller scores above the opponent
	TieBreak         TieBreak `yaml:"tie_break" json:"tie_break"`
}

// DefaultHouseRules returns the standard Cabo house rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		StartingSeat:     0,
		FalseCaboPenalty: 5,
		TieBreak:         TieDraw,
	}
}

// Validate reports settings the round cannot honor.
func (r HouseRules) Validate() error {
	if r.StartingSeat >= NumPlayers {
		return fmt.Errorf("starting seat %d out of range", r.StartingSeat)
	}
	if r.FalseCaboPenalty < 0 {
		return fmt.Errorf("false cabo penalty must be non-negative, got %d", r.FalseCaboPenalty)
	}
	switch r.TieBreak {
	case "", TieDraw, TieFavorCaller, TieFavorOther:
	default:
		return fmt.Errorf("unknown tie break policy %q", r.TieBreak)
	}
	return nil
}
