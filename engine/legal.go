package engine

// LegalActions returns a bitmask of legal action indices for the acting seat.
// Bit i is set if action index i is legal.
func (r *Round) LegalActions() uint16 {
	var mask uint16
	set := func(idx uint16) { mask |= 1 << idx }

	switch r.Phase() {
	case PhaseInitialPeek:
		for pos := uint16(0); pos < HandSize; pos++ {
			set(ActionBaseInitialPeek + pos)
		}

	case PhaseMainAction:
		set(ActionDraw)
		if !r.CaboCalled() {
			set(ActionDeclareEnd)
		}

	case PhaseRoundClosing:
		set(ActionDraw)

	case PhaseDrawResolution:
		set(ActionDiscard)
		for pos := uint16(0); pos < HandSize; pos++ {
			set(ActionBaseSwapIntoHand + pos)
		}
		if r.Pending.HasAbility() {
			set(ActionUseAbility)
		}

	case PhaseAbilityResolution:
		switch r.Pending.Ability() {
		case AbilityReveal:
			for pos := uint16(0); pos < HandSize; pos++ {
				set(ActionBaseRevealOpponent + pos)
			}
		case AbilityExchange:
			for i := uint16(0); i < HandSize*HandSize; i++ {
				set(ActionBaseExchange + i)
			}
		}

	case PhaseGameOver:
		// No legal actions.
	}
	return mask
}

// LegalActionsList returns the legal actions in index order.
func (r *Round) LegalActionsList() []Action {
	mask := r.LegalActions()
	var actions []Action
	for idx := uint16(0); idx < NumActions; idx++ {
		if mask&(1<<idx) != 0 {
			a, _ := ActionFromIndex(idx)
			actions = append(actions, a)
		}
	}
	return actions
}

// IsLegal reports whether a is legal for the acting seat.
func (r *Round) IsLegal(a Action) bool {
	idx := a.Index()
	if idx >= NumActions {
		return false
	}
	return r.LegalActions()&(1<<idx) != 0
}
