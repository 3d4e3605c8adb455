package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

// ActionKind identifies the shape of an Action.
type ActionKind uint8

const (
	KindInitialPeek ActionKind = iota
	KindDraw
	KindDeclareEnd
	KindUseAbility
	KindDiscard
	KindSwapIntoHand
	KindRevealOpponent
	KindExchangeCards
)

var kindNames = [...]string{
	KindInitialPeek:    "initial_peek",
	KindDraw:           "draw",
	KindDeclareEnd:     "declare_end",
	KindUseAbility:     "use_ability",
	KindDiscard:        "discard",
	KindSwapIntoHand:   "swap_into_hand",
	KindRevealOpponent: "reveal_opponent",
	KindExchangeCards:  "exchange_cards",
}

func (k ActionKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ActionKind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = ActionKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown action kind %q", string(b))
}

// Action is one decision submitted by a provider. Pos is the acting player's
// hand position where relevant; OppPos is the opponent position for
// RevealOpponent (in Pos) and ExchangeCards.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Pos    uint8      `json:"pos,omitempty"`
	OppPos uint8      `json:"opp_pos,omitempty"`
}

func InitialPeek(pos uint8) Action    { return Action{Kind: KindInitialPeek, Pos: pos} }
func Draw() Action                    { return Action{Kind: KindDraw} }
func DeclareEnd() Action              { return Action{Kind: KindDeclareEnd} }
func UseAbility() Action              { return Action{Kind: KindUseAbility} }
func Discard() Action                 { return Action{Kind: KindDiscard} }
func SwapIntoHand(pos uint8) Action   { return Action{Kind: KindSwapIntoHand, Pos: pos} }
func RevealOpponent(pos uint8) Action { return Action{Kind: KindRevealOpponent, Pos: pos} }

// ExchangeCards swaps the actor's card at myPos with the opponent's card at oppPos.
func ExchangeCards(myPos, oppPos uint8) Action {
	return Action{Kind: KindExchangeCards, Pos: myPos, OppPos: oppPos}
}

func (a Action) String() string {
	switch a.Kind {
	case KindInitialPeek, KindSwapIntoHand, KindRevealOpponent:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Pos)
	case KindExchangeCards:
		return fmt.Sprintf("%s(%d,%d)", a.Kind, a.Pos, a.OppPos)
	}
	return a.Kind.String()
}

// ---------------------------------------------------------------------------
// Action index constants
// ---------------------------------------------------------------------------

const (
	ActionDraw       uint16 = 0
	ActionDeclareEnd uint16 = 1
	ActionUseAbility uint16 = 2
	ActionDiscard    uint16 = 3

	ActionBaseInitialPeek    uint16 = 4  // InitialPeek(0..1)
	ActionBaseSwapIntoHand   uint16 = 6  // SwapIntoHand(0..1)
	ActionBaseRevealOpponent uint16 = 8  // RevealOpponent(0..1)
	ActionBaseExchange       uint16 = 10 // ExchangeCards(my*2+opp), 4 entries

	NumActions uint16 = 14
)

// Index returns the flat action index, or NumActions if a position is out of range.
func (a Action) Index() uint16 {
	switch a.Kind {
	case KindDraw:
		return ActionDraw
	case KindDeclareEnd:
		return ActionDeclareEnd
	case KindUseAbility:
		return ActionUseAbility
	case KindDiscard:
		return ActionDiscard
	}
	if a.Pos >= HandSize || a.OppPos >= HandSize {
		return NumActions
	}
	switch a.Kind {
	case KindInitialPeek:
		return ActionBaseInitialPeek + uint16(a.Pos)
	case KindSwapIntoHand:
		return ActionBaseSwapIntoHand + uint16(a.Pos)
	case KindRevealOpponent:
		return ActionBaseRevealOpponent + uint16(a.Pos)
	case KindExchangeCards:
		return ActionBaseExchange + uint16(a.Pos)*HandSize + uint16(a.OppPos)
	}
	return NumActions
}

// ActionFromIndex decodes a flat action index.
func ActionFromIndex(idx uint16) (Action, error) {
	switch {
	case idx == ActionDraw:
		return Draw(), nil
	case idx == ActionDeclareEnd:
		return DeclareEnd(), nil
	case idx == ActionUseAbility:
		return UseAbility(), nil
	case idx == ActionDiscard:
		return Discard(), nil
	case idx < ActionBaseSwapIntoHand:
		return InitialPeek(uint8(idx - ActionBaseInitialPeek)), nil
	case idx < ActionBaseRevealOpponent:
		return SwapIntoHand(uint8(idx - ActionBaseSwapIntoHand)), nil
	case idx < ActionBaseExchange:
		return RevealOpponent(uint8(idx - ActionBaseRevealOpponent)), nil
	case idx < NumActions:
		off := idx - ActionBaseExchange
		return ExchangeCards(uint8(off/HandSize), uint8(off%HandSize)), nil
	}
	return Action{}, errors.Errorf("action index %d out of range", idx)
}

// positions validates every position the action carries.
func (a Action) positions() error {
	switch a.Kind {
	case KindInitialPeek, KindSwapIntoHand, KindRevealOpponent:
		return checkPosition(a.Pos)
	case KindExchangeCards:
		if err := checkPosition(a.Pos); err != nil {
			return err
		}
		return checkPosition(a.OppPos)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

// Apply validates a and applies it for seat. A rejected action returns an
// error wrapping ErrInvalidPosition or ErrInvalidActionInState and leaves the
// round unchanged. A draw from an empty deck ends the round and returns nil.
func (r *Round) Apply(seat uint8, a Action) error {
	if r.IsOver() {
		return errors.Wrap(ErrInvalidActionInState, "round is over")
	}
	if acting := r.ActingSeat(); seat != acting {
		return errors.Wrapf(ErrInvalidActionInState, "seat %d acted out of turn, seat %d to act", seat, acting)
	}
	if err := a.positions(); err != nil {
		return err
	}

	callerBefore := r.CaboCaller
	var (
		discarded = EmptyCard
		err       error
	)
	switch a.Kind {
	case KindInitialPeek:
		err = r.initialPeek(seat, a.Pos)
	case KindDraw:
		err = r.draw()
	case KindDeclareEnd:
		err = r.declareEnd(seat)
	case KindUseAbility:
		err = r.useAbility()
	case KindDiscard:
		discarded, err = r.discardDrawn()
	case KindSwapIntoHand:
		discarded, err = r.swapIntoHand(seat, a.Pos)
	case KindRevealOpponent:
		discarded, err = r.revealOpponent(seat, a.Pos)
	case KindExchangeCards:
		discarded, err = r.exchangeCards(seat, a.Pos, a.OppPos)
	default:
		err = errors.Wrapf(ErrInvalidActionInState, "unknown action kind %d", a.Kind)
	}
	if err != nil {
		return err
	}

	r.LastAction = LastActionInfo{Action: a, ActingPlayer: seat, Discarded: discarded, Valid: true}
	r.mustHoldInvariants(callerBefore)
	return nil
}

func (r *Round) requirePhase(a ActionKind, phases ...Phase) error {
	cur := r.Phase()
	for _, p := range phases {
		if cur == p {
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidActionInState, "%s not allowed in %s", a, cur)
}

// initialPeek records the setup peek for seat.
func (r *Round) initialPeek(seat, pos uint8) error {
	if err := r.requirePhase(KindInitialPeek, PhaseInitialPeek); err != nil {
		return err
	}
	p := &r.Players[seat]
	if _, err := p.PeekOwn(pos); err != nil {
		return err
	}
	p.Peeked = true
	for i := range r.Players {
		if !r.Players[i].Peeked {
			return nil
		}
	}
	r.CurrentPlayer = r.Rules.StartingSeat
	r.event(evPeeksDone)
	return nil
}

// draw moves the top card into Pending. An empty deck ends the round at once.
func (r *Round) draw() error {
	if err := r.requirePhase(KindDraw, PhaseMainAction, PhaseRoundClosing); err != nil {
		return err
	}
	c, err := r.deck.Draw()
	if errors.Is(err, ErrDeckEmpty) {
		r.EndReason = EndDeckExhausted
		r.log.WithField("seat", r.CurrentPlayer).Info("deck exhausted, round over")
		r.event(evExhaust)
		return nil
	}
	if err != nil {
		return err
	}
	r.Pending = c
	r.event(evDraw)
	return nil
}

// declareEnd calls Cabo. The turn ends without a draw and the opponent gets
// the closing turn.
func (r *Round) declareEnd(seat uint8) error {
	if r.CaboCalled() {
		return errors.Wrapf(ErrInvalidActionInState, "cabo already called by seat %d", r.CaboCaller)
	}
	if err := r.requirePhase(KindDeclareEnd, PhaseMainAction); err != nil {
		return err
	}
	r.CaboCaller = int8(seat)
	r.TurnNumber++
	r.CurrentPlayer = OpponentOf(seat)
	r.log.WithField("seat", seat).Info("cabo called")
	r.event(evDeclareEnd)
	return nil
}

func (r *Round) useAbility() error {
	if err := r.requirePhase(KindUseAbility, PhaseDrawResolution); err != nil {
		return err
	}
	if !r.Pending.HasAbility() {
		return errors.Wrapf(ErrInvalidActionInState, "drawn card %s has no ability", r.Pending)
	}
	r.event(evUseAbility)
	return nil
}

func (r *Round) discardDrawn() (Card, error) {
	if err := r.requirePhase(KindDiscard, PhaseDrawResolution); err != nil {
		return EmptyCard, err
	}
	c := r.Pending
	r.DiscardPile = append(r.DiscardPile, c)
	r.endTurn()
	return c, nil
}

// swapIntoHand places the drawn card at pos and discards the displaced card.
// The placed card is known to its owner; the opponent's snapshot of pos is
// left alone and may now be stale.
func (r *Round) swapIntoHand(seat, pos uint8) (Card, error) {
	if err := r.requirePhase(KindSwapIntoHand, PhaseDrawResolution); err != nil {
		return EmptyCard, err
	}
	p := &r.Players[seat]
	old := p.Hand[pos]
	p.Hand[pos] = r.Pending
	p.OwnKnown[pos] = true
	r.DiscardPile = append(r.DiscardPile, old)
	r.endTurn()
	return old, nil
}

func (r *Round) revealOpponent(seat, pos uint8) (Card, error) {
	if err := r.requireAbility(KindRevealOpponent, AbilityReveal); err != nil {
		return EmptyCard, err
	}
	if err := r.resolveReveal(seat, pos); err != nil {
		return EmptyCard, err
	}
	return r.discardAbilityCard(), nil
}

func (r *Round) exchangeCards(seat, myPos, oppPos uint8) (Card, error) {
	if err := r.requireAbility(KindExchangeCards, AbilityExchange); err != nil {
		return EmptyCard, err
	}
	r.resolveExchange(seat, myPos, oppPos)
	return r.discardAbilityCard(), nil
}

func (r *Round) requireAbility(k ActionKind, want Ability) error {
	if err := r.requirePhase(k, PhaseAbilityResolution); err != nil {
		return err
	}
	if got := r.Pending.Ability(); got != want {
		return errors.Wrapf(ErrInvalidActionInState, "%s needs a %s card, drawn card is %s", k, want, r.Pending)
	}
	return nil
}

func (r *Round) discardAbilityCard() Card {
	c := r.Pending
	r.DiscardPile = append(r.DiscardPile, c)
	r.endTurn()
	return c
}

// endTurn clears the drawn card and passes play. The turn that follows a
// Cabo call is the last one.
func (r *Round) endTurn() {
	r.Pending = EmptyCard
	r.TurnNumber++
	if r.CaboCalled() && int8(r.CurrentPlayer) != r.CaboCaller {
		r.EndReason = EndCabo
		r.log.WithField("caller", r.CaboCaller).Info("closing turn complete, round over")
		r.event(evFinish)
		return
	}
	r.CurrentPlayer = OpponentOf(r.CurrentPlayer)
	r.event(evNextTurn)
}
