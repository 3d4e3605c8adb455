package engine

// resolveReveal lets viewer look at the opponent's card at pos. No card moves.
func (r *Round) resolveReveal(viewer, pos uint8) error {
	opp := &r.Players[OpponentOf(viewer)]
	return r.Players[viewer].ObserveOpponentCard(pos, opp.Hand[pos])
}

// resolveExchange swaps initiator.Hand[myPos] with opponent.Hand[oppPos].
//
// Knowledge is invalidated wherever a card left: both owners forget the
// vacated positions and any snapshot keyed to those positions is dropped.
// Nobody learns the value of a card at its new location.
func (r *Round) resolveExchange(initiator, myPos, oppPos uint8) {
	me := &r.Players[initiator]
	opp := &r.Players[OpponentOf(initiator)]

	me.Hand[myPos], opp.Hand[oppPos] = opp.Hand[oppPos], me.Hand[myPos]

	me.InvalidateOwn(myPos)
	opp.InvalidateOwn(oppPos)
	me.InvalidateOpponentView(oppPos)
	opp.InvalidateOpponentView(myPos)
}
