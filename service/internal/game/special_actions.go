// internal/game/special_actions.go
package game

import "github.com/jason-s-yu/cabo/engine"

// Special identifiers carried on ability events.
const (
	SpecialReveal   = "reveal"
	SpecialExchange = "exchange"
)

func specialFor(a engine.Ability) string {
	switch a {
	case engine.AbilityReveal:
		return SpecialReveal
	case engine.AbilityExchange:
		return SpecialExchange
	}
	return ""
}

// emitAbilityEvents covers the ability choice and its resolution. The
// public events name positions only; the card seen by a reveal goes to the
// revealing player alone.
// Assumes lock is held by caller.
func (g *CaboGame) emitAbilityEvents(seat uint8, a engine.Action) {
	r := g.Round
	actorID := g.playerAt(seat)
	opp := engine.OpponentOf(seat)
	oppID := g.playerAt(opp)

	switch a.Kind {
	case engine.KindUseAbility:
		special := specialFor(r.Pending.Ability())
		g.fireEvent(GameEvent{
			Type:    EventPlayerAbilityChoice,
			User:    &EventUser{ID: actorID},
			Special: special,
			Card:    cardDetails(r.Pending),
		})
		g.logAction(actorID, string(EventPlayerAbilityChoice), map[string]interface{}{"special": special})

	case engine.KindRevealOpponent:
		seen := r.Players[seat].OpponentKnown[a.Pos]
		g.fireEvent(GameEvent{
			Type:    EventPlayerReveal,
			User:    &EventUser{ID: actorID},
			Special: SpecialReveal,
			Card:    position(oppID, a.Pos),
		})
		g.fireEventToPlayer(actorID, GameEvent{
			Type:    EventPrivateReveal,
			Special: SpecialReveal,
			Card:    positionWithCard(oppID, a.Pos, seen),
		})
		g.logAction(actorID, string(EventPlayerReveal), map[string]interface{}{"idx": a.Pos, "card": seen.String()})
		g.fireDiscard(actorID, r.LastAction.Discarded, "ability")

	case engine.KindExchangeCards:
		g.fireEvent(GameEvent{
			Type:    EventPlayerExchange,
			User:    &EventUser{ID: actorID},
			Special: SpecialExchange,
			Card1:   position(actorID, a.Pos),
			Card2:   position(oppID, a.OppPos),
		})
		g.logAction(actorID, string(EventPlayerExchange), map[string]interface{}{"idx": a.Pos, "oppIdx": a.OppPos})
		g.fireDiscard(actorID, r.LastAction.Discarded, "ability")
	}
}
