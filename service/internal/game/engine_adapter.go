// engine_adapter.go: bridge between engine.Round and CaboGame.
package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cabo/engine"
	"github.com/sirupsen/logrus"
)

// seatProvider wraps a seat's provider so the session hears about failed
// decisions and refused actions.
type seatProvider struct {
	g     *CaboGame
	seat  uint8
	inner engine.DecisionProvider
}

func (sp *seatProvider) Decide(ctx context.Context, obs engine.Observation) (engine.Action, error) {
	a, err := sp.inner.Decide(ctx, obs)
	if err != nil {
		sp.g.Metrics.DecisionFailed()
	}
	return a, err
}

// ActionRejected runs without g.Mu held.
func (sp *seatProvider) ActionRejected(a engine.Action, err error) {
	g := sp.g
	g.Metrics.ActionRejected(a.Kind)

	g.Mu.Lock()
	playerID := g.playerAt(sp.seat)
	g.fireEventToPlayer(playerID, GameEvent{
		Type: EventPrivateActionRejected,
		User: &EventUser{ID: playerID},
		Payload: map[string]interface{}{
			"action":  a.String(),
			"message": err.Error(),
		},
	})
	g.logAction(playerID, string(EventPrivateActionRejected), map[string]interface{}{"action": a.String(), "reason": err.Error()})
	g.Mu.Unlock()

	if l, ok := sp.inner.(engine.RejectionListener); ok {
		l.ActionRejected(a, err)
	}
}

// playerAt returns the player ID in seat, or uuid.Nil.
func (g *CaboGame) playerAt(seat uint8) uuid.UUID {
	if int(seat) < len(g.Players) {
		return g.Players[seat].ID
	}
	return uuid.Nil
}

// seatOf returns the seat held by playerID.
func (g *CaboGame) seatOf(playerID uuid.UUID) (uint8, bool) {
	for seat, p := range g.Players {
		if p.ID == playerID {
			return uint8(seat), true
		}
	}
	return 0, false
}

// cardDetails converts a card to its event form. EmptyCard yields nil.
func cardDetails(c engine.Card) *EventCard {
	if c == engine.EmptyCard {
		return nil
	}
	ev := &EventCard{Rank: int(c.Rank()), Label: c.String()}
	if c.HasAbility() {
		ev.Ability = c.Ability().String()
	}
	return ev
}

// position describes a hand position without revealing its card.
func position(owner uuid.UUID, pos uint8) *EventCard {
	idx := int(pos)
	return &EventCard{Idx: &idx, User: &EventUser{ID: owner}}
}

// positionWithCard describes a hand position and the card there.
func positionWithCard(owner uuid.UUID, pos uint8, c engine.Card) *EventCard {
	ev := cardDetails(c)
	if ev == nil {
		return position(owner, pos)
	}
	idx := int(pos)
	ev.Idx, ev.User = &idx, &EventUser{ID: owner}
	return ev
}

// emitEventsForAction sends the public and private events for an applied action.
// Assumes lock is held by caller.
func (g *CaboGame) emitEventsForAction(seat uint8, a engine.Action) {
	actorID := g.playerAt(seat)
	r := g.Round

	switch a.Kind {
	case engine.KindInitialPeek:
		g.fireEvent(GameEvent{Type: EventPlayerInitialPeek, User: &EventUser{ID: actorID}, Card: position(actorID, a.Pos)})
		g.fireEventToPlayer(actorID, GameEvent{
			Type: EventPrivateInitialPeek,
			Card: positionWithCard(actorID, a.Pos, r.Players[seat].Hand[a.Pos]),
		})
		g.logAction(actorID, string(EventPlayerInitialPeek), map[string]interface{}{"idx": a.Pos})

	case engine.KindDraw:
		if r.IsOver() && r.EndReason == engine.EndDeckExhausted {
			g.Log.WithField("seat", seat).Info("deck exhausted on draw")
			g.fireEvent(GameEvent{Type: EventGameDeckExhausted, User: &EventUser{ID: actorID}})
			g.logAction(actorID, string(EventGameDeckExhausted), nil)
			return
		}
		g.fireEvent(GameEvent{
			Type:    EventPlayerDraw,
			User:    &EventUser{ID: actorID},
			Payload: map[string]interface{}{"deckRemaining": r.DeckRemaining()},
		})
		g.fireEventToPlayer(actorID, GameEvent{Type: EventPrivateDraw, Card: cardDetails(r.Pending)})
		g.logAction(actorID, string(EventPlayerDraw), map[string]interface{}{
			"card": r.Pending.String(), "deckRemaining": r.DeckRemaining(),
		})

	case engine.KindDeclareEnd:
		g.fireEvent(GameEvent{Type: EventPlayerCabo, User: &EventUser{ID: actorID}})
		g.logAction(actorID, string(EventPlayerCabo), map[string]interface{}{"turn": r.TurnNumber})

	case engine.KindDiscard:
		g.fireDiscard(actorID, r.LastAction.Discarded, "drawn")

	case engine.KindSwapIntoHand:
		g.fireEvent(GameEvent{
			Type: EventPlayerSwap,
			User: &EventUser{ID: actorID},
			Card: position(actorID, a.Pos),
		})
		g.logAction(actorID, string(EventPlayerSwap), map[string]interface{}{
			"idx": a.Pos, "placed": r.Players[seat].Hand[a.Pos].String(),
		})
		g.fireDiscard(actorID, r.LastAction.Discarded, "hand")

	case engine.KindUseAbility, engine.KindRevealOpponent, engine.KindExchangeCards:
		g.emitAbilityEvents(seat, a)

	default:
		g.Log.WithFields(logrus.Fields{"seat": seat, "action": a.String()}).Warn("no events for action")
	}
}

// fireDiscard announces the card that landed on the discard pile. Discards are public.
// Assumes lock is held by caller.
func (g *CaboGame) fireDiscard(actorID uuid.UUID, c engine.Card, source string) {
	g.fireEvent(GameEvent{
		Type:    EventPlayerDiscard,
		User:    &EventUser{ID: actorID},
		Card:    cardDetails(c),
		Payload: map[string]interface{}{"source": source, "discardSize": len(g.Round.DiscardPile)},
	})
	g.logAction(actorID, string(EventPlayerDiscard), map[string]interface{}{"card": c.String(), "source": source})
}
