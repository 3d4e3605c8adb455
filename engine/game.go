// Package engine implements the rules of the two-player Cabo card game.
//
// A Round owns the deck, the discard pile and both hands. Decision providers
// only ever see an Observation and submit Actions through Round.Apply, which
// validates the action against the current phase before mutating anything.
package engine

import (
	"io"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// fsm event names.
const (
	evPeeksDone  = "peeks_done"
	evDraw       = "draw"
	evDeclareEnd = "declare_end"
	evUseAbility = "use_ability"
	evNextTurn   = "next_turn"
	evFinish     = "finish"
	evExhaust    = "exhaust"
)

// Round holds the complete state of one Cabo round.
type Round struct {
	Rules         HouseRules
	Players       [NumPlayers]Player
	DiscardPile   []Card
	CurrentPlayer uint8
	Pending       Card // drawn card awaiting resolution, EmptyCard if none
	CaboCaller    int8 // -1 until someone declares the end
	EndReason     EndReason
	TurnNumber    uint16
	LastAction    LastActionInfo

	deck   *Deck
	census map[Card]int
	sm     *fsm.FSM
	log    *logrus.Entry
}

// NewRound deals two cards to seat 0 then two to seat 1 from deck. The round
// starts in PhaseInitialPeek. log may be nil.
func NewRound(rules HouseRules, deck *Deck, log *logrus.Entry) (*Round, error) {
	if err := rules.Validate(); err != nil {
		return nil, errors.Wrap(err, "house rules")
	}
	if deck == nil {
		return nil, errors.New("nil deck")
	}
	if err := deck.validate(); err != nil {
		return nil, err
	}
	if need := NumPlayers * HandSize; deck.Len() < need {
		return nil, errors.Errorf("deck has %d cards, need at least %d to deal", deck.Len(), need)
	}
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = logrus.NewEntry(l)
	}

	r := &Round{
		Rules:         rules,
		CurrentPlayer: rules.StartingSeat,
		Pending:       EmptyCard,
		CaboCaller:    -1,
		deck:          deck,
		census:        make(map[Card]int, DeckSize),
		log:           log,
	}
	r.LastAction.Discarded = EmptyCard
	for _, c := range deck.Cards() {
		r.census[c]++
	}

	for seat := range r.Players {
		r.Players[seat] = newPlayer()
		for pos := 0; pos < HandSize; pos++ {
			c, err := deck.Draw()
			if err != nil {
				return nil, errors.Wrap(err, "deal")
			}
			r.Players[seat].Hand[pos] = c
		}
	}

	r.sm = fsm.NewFSM(
		string(PhaseInitialPeek),
		fsm.Events{
			{Name: evPeeksDone, Src: []string{string(PhaseInitialPeek)}, Dst: string(PhaseMainAction)},
			{Name: evDraw, Src: []string{string(PhaseMainAction), string(PhaseRoundClosing)}, Dst: string(PhaseDrawResolution)},
			{Name: evDeclareEnd, Src: []string{string(PhaseMainAction)}, Dst: string(PhaseRoundClosing)},
			{Name: evUseAbility, Src: []string{string(PhaseDrawResolution)}, Dst: string(PhaseAbilityResolution)},
			{
				Name: evNextTurn,
				Src:  []string{string(PhaseDrawResolution), string(PhaseAbilityResolution)},
				Dst:  string(PhaseMainAction),
			},
			{
				Name: evFinish,
				Src:  []string{string(PhaseDrawResolution), string(PhaseAbilityResolution)},
				Dst:  string(PhaseGameOver),
			},
			{Name: evExhaust, Src: []string{string(PhaseMainAction), string(PhaseRoundClosing)}, Dst: string(PhaseGameOver)},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) { r.enterState(e) },
		},
	)
	r.mustHoldInvariants(-1)
	return r, nil
}

// NewSeededRound deals a round from a deck shuffled with seed.
func NewSeededRound(seed uint64, rules HouseRules, log *logrus.Entry) (*Round, error) {
	return NewRound(rules, NewSeededDeck(seed), log)
}

func (r *Round) enterState(e *fsm.Event) {
	r.log.WithField("turn", r.TurnNumber).Debugf("[%s] ===> [%s]", e.Src, e.Dst)
}

// event fires an fsm transition. Handlers validate the phase first, so a
// failed transition means the round is corrupted.
func (r *Round) event(name string) {
	if err := r.sm.Event(name); err != nil {
		violate("phase", "event %s from %s: %v", name, r.sm.Current(), err)
	}
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// Phase returns the current phase.
func (r *Round) Phase() Phase { return Phase(r.sm.Current()) }

// IsOver returns true once the round reached PhaseGameOver.
func (r *Round) IsOver() bool { return r.Phase() == PhaseGameOver }

// CaboCalled reports whether a player has declared the end.
func (r *Round) CaboCalled() bool { return r.CaboCaller >= 0 }

// ActingSeat returns the seat that must act next. During the initial peek
// phase seat 0 peeks first, then seat 1.
func (r *Round) ActingSeat() uint8 {
	if r.Phase() == PhaseInitialPeek {
		for seat := range r.Players {
			if !r.Players[seat].Peeked {
				return uint8(seat)
			}
		}
	}
	return r.CurrentPlayer
}

// OpponentOf returns the other seat.
func OpponentOf(seat uint8) uint8 { return 1 - seat }

// DeckRemaining returns the number of undrawn cards.
func (r *Round) DeckRemaining() int { return r.deck.Len() }

// DiscardTop returns the top of the discard pile, or EmptyCard if empty.
func (r *Round) DiscardTop() Card {
	if len(r.DiscardPile) == 0 {
		return EmptyCard
	}
	return r.DiscardPile[len(r.DiscardPile)-1]
}

// DeckCards returns a copy of the undrawn cards, top first.
func (r *Round) DeckCards() []Card { return r.deck.Cards() }

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

// mustHoldInvariants panics with *InvariantViolation if the round is corrupt.
// callerBefore is the Cabo caller prior to the action, or -1.
func (r *Round) mustHoldInvariants(callerBefore int8) {
	seen := make(map[Card]int, DeckSize)
	for _, c := range r.deck.cards {
		seen[c]++
	}
	for _, c := range r.DiscardPile {
		seen[c]++
	}
	if r.Pending != EmptyCard {
		seen[r.Pending]++
	}
	for seat := range r.Players {
		p := &r.Players[seat]
		for pos, c := range p.Hand {
			if c == EmptyCard {
				violate("hand-size", "seat %d position %d is empty", seat, pos)
			}
			seen[c]++
		}
	}
	if len(seen) != len(r.census) {
		violate("conservation", "card kinds %v, want %v", seen, r.census)
	}
	for c, n := range r.census {
		if seen[c] != n {
			violate("conservation", "card %s seen %d times, want %d", c, seen[c], n)
		}
	}
	if callerBefore >= 0 && r.CaboCaller != callerBefore {
		violate("cabo-caller", "caller changed from %d to %d", callerBefore, r.CaboCaller)
	}
	switch r.Phase() {
	case PhaseDrawResolution, PhaseAbilityResolution:
		if r.Pending == EmptyCard {
			violate("pending", "phase %s without a drawn card", r.Phase())
		}
	default:
		if r.Pending != EmptyCard {
			violate("pending", "phase %s holds drawn card %s", r.Phase(), r.Pending)
		}
	}
}

// TotalCards returns the number of cards in play across all locations.
func (r *Round) TotalCards() int {
	n := r.deck.Len() + len(r.DiscardPile) + NumPlayers*HandSize
	if r.Pending != EmptyCard {
		n++
	}
	return n
}
