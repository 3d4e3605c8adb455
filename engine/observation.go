package engine

// SlotView is one hand position as seen by a particular viewer.
type SlotView struct {
	Known bool `json:"known"`
	Card  Card `json:"card"` // EmptyCard unless Known
}

// Observation is the read-only view handed to a decision provider. It is a
// copy; nothing in it aliases round state.
type Observation struct {
	Seat          uint8              `json:"seat"`
	Phase         Phase              `json:"phase"`
	ActingSeat    uint8              `json:"acting_seat"`
	Turn          uint16             `json:"turn"`
	DeckRemaining int                `json:"deck_remaining"`
	DiscardTop    Card               `json:"discard_top"`
	OwnHand       [HandSize]SlotView `json:"own_hand"`
	OpponentHand  [HandSize]SlotView `json:"opponent_hand"`
	Drawn         Card               `json:"drawn"` // only set for the seat holding it
	CaboCalled    bool               `json:"cabo_called"`
	CaboCaller    int8               `json:"cabo_caller"`
	LastAction    LastActionInfo     `json:"last_action"`
	Legal         []Action           `json:"legal,omitempty"` // only set for the acting seat
}

// Observe builds the observation for seat. Own cards are shown only where
// the seat has verified them; opponent cards only where the seat holds a
// snapshot, which may be stale. A seat outside [0, NumPlayers) gets the
// zero Observation.
func (r *Round) Observe(seat uint8) Observation {
	if seat >= NumPlayers {
		return Observation{}
	}
	p := &r.Players[seat]
	obs := Observation{
		Seat:          seat,
		Phase:         r.Phase(),
		ActingSeat:    r.ActingSeat(),
		Turn:          r.TurnNumber,
		DeckRemaining: r.deck.Len(),
		DiscardTop:    r.DiscardTop(),
		Drawn:         EmptyCard,
		CaboCalled:    r.CaboCalled(),
		CaboCaller:    r.CaboCaller,
		LastAction:    r.LastAction,
	}
	for pos := 0; pos < HandSize; pos++ {
		obs.OwnHand[pos].Card = EmptyCard
		if p.OwnKnown[pos] {
			obs.OwnHand[pos] = SlotView{Known: true, Card: p.Hand[pos]}
		}
		obs.OpponentHand[pos].Card = EmptyCard
		if c := p.OpponentKnown[pos]; c != EmptyCard {
			obs.OpponentHand[pos] = SlotView{Known: true, Card: c}
		}
	}
	if r.Pending != EmptyCard && seat == r.CurrentPlayer {
		obs.Drawn = r.Pending
	}
	if !r.IsOver() && seat == obs.ActingSeat {
		obs.Legal = r.LegalActionsList()
	}
	return obs
}

// IsLegal reports whether a appears in the observation's legal list.
func (o Observation) IsLegal(a Action) bool {
	for _, l := range o.Legal {
		if l == a {
			return true
		}
	}
	return false
}

// KnownOwnTotal returns the sum and count of verified own cards.
func (o Observation) KnownOwnTotal() (sum, n int) {
	for _, s := range o.OwnHand {
		if s.Known {
			sum += s.Card.Value()
			n++
		}
	}
	return sum, n
}
