package engine

import "github.com/pkg/errors"

// Result is the outcome of a finished round.
type Result struct {
	Reason     EndReason       `json:"reason"`
	CaboCaller int8            `json:"cabo_caller"`
	Raw        [NumPlayers]int `json:"raw"`
	Final      [NumPlayers]int `json:"final"`
	Winner     int8            `json:"winner"` // -1 for a draw
}

// RawScores returns each seat's hand sum.
func (r *Round) RawScores() [NumPlayers]int {
	var raw [NumPlayers]int
	for seat := range r.Players {
		raw[seat] = r.Players[seat].RawScore()
	}
	return raw
}

// Result scores a finished round. The Cabo rule applies whenever someone
// called, including a closing turn cut short by deck exhaustion.
func (r *Round) Result() (Result, error) {
	if !r.IsOver() {
		return Result{}, errors.Wrapf(ErrInvalidActionInState, "round not over, phase %s", r.Phase())
	}
	raw := r.RawScores()
	final := FinalScores(raw, r.CaboCaller, r.Rules.FalseCaboPenalty)
	return Result{
		Reason:     r.EndReason,
		CaboCaller: r.CaboCaller,
		Raw:        raw,
		Final:      final,
		Winner:     Winner(final, r.CaboCaller, r.Rules.TieBreak),
	}, nil
}

// FinalScores applies the Cabo adjustment to raw scores. With caller < 0 the
// raw scores are returned unchanged. The non-caller always keeps their raw score.
//
// Caller rules:
//   - caller raw <= other raw → 0
//   - caller raw > other raw → raw + penalty
func FinalScores(raw [NumPlayers]int, caller int8, penalty int) [NumPlayers]int {
	final := raw
	if caller < 0 {
		return final
	}
	c := uint8(caller)
	if raw[c] <= raw[OpponentOf(c)] {
		final[c] = 0
	} else {
		final[c] = raw[c] + penalty
	}
	return final
}

// Winner returns the seat with the lowest final score, or -1 for a draw.
func Winner(final [NumPlayers]int, caller int8, tie TieBreak) int8 {
	switch {
	case final[0] < final[1]:
		return 0
	case final[1] < final[0]:
		return 1
	}
	if caller < 0 {
		return -1
	}
	switch tie {
	case TieFavorCaller:
		return caller
	case TieFavorOther:
		return int8(OpponentOf(uint8(caller)))
	}
	return -1
}
