package agent

import engine "github.com/jason-s-yu/cabo/engine"

// Encode writes the StateSize feature vector for obs into out.
// out is zeroed internally before writing.
func Encode(obs engine.Observation, out *[StateSize]float32) {
	*out = [StateSize]float32{}

	encodeSlots(obs.OwnHand, out[featOwnSlots:featOwnAvg+1])
	encodeSlots(obs.OpponentHand, out[featOppSlots:featOppAvg+1])

	out[featDeckFrac] = float32(obs.DeckRemaining) / engine.DeckSize
	if obs.CaboCalled {
		out[featCaboCalled] = 1
		if obs.CaboCaller == int8(obs.Seat) {
			out[featCaboIsSelf] = 1
		}
	}
}

// encodeSlots writes (rank/5, known) per slot followed by the mean known rank / 5.
// dst must have room for 2*HandSize+1 values.
func encodeSlots(slots [engine.HandSize]engine.SlotView, dst []float32) {
	sum, n := 0, 0
	for i, s := range slots {
		if !s.Known {
			continue
		}
		dst[2*i] = float32(s.Card.Value()) / maxRank
		dst[2*i+1] = 1
		sum += s.Card.Value()
		n++
	}
	if n > 0 {
		dst[2*engine.HandSize] = float32(sum) / float32(n) / maxRank
	}
}
