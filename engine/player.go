package engine

import "github.com/pkg/errors"

// Player holds one seat's hand and what that seat knows.
//
// OwnKnown[i] is true when the player has verified Hand[i]. OpponentKnown[i]
// is the last value this player observed at the opponent's position i, or
// EmptyCard when there is no entry. It is a snapshot and can go stale.
type Player struct {
	Hand          [HandSize]Card
	OwnKnown      [HandSize]bool
	OpponentKnown [HandSize]Card
	Peeked        bool // initial peek done
}

func newPlayer() Player {
	p := Player{}
	for i := range p.Hand {
		p.Hand[i] = EmptyCard
		p.OpponentKnown[i] = EmptyCard
	}
	return p
}

func checkPosition(pos uint8) error {
	if pos >= HandSize {
		return errors.Wrapf(ErrInvalidPosition, "position %d", pos)
	}
	return nil
}

// PeekOwn marks pos as known and returns the card there.
func (p *Player) PeekOwn(pos uint8) (Card, error) {
	if err := checkPosition(pos); err != nil {
		return EmptyCard, err
	}
	p.OwnKnown[pos] = true
	return p.Hand[pos], nil
}

// ObserveOpponentCard records c as this player's view of the opponent's pos.
func (p *Player) ObserveOpponentCard(pos uint8, c Card) error {
	if err := checkPosition(pos); err != nil {
		return err
	}
	p.OpponentKnown[pos] = c
	return nil
}

// InvalidateOwn drops the own-knowledge entry at pos.
func (p *Player) InvalidateOwn(pos uint8) {
	if pos < HandSize {
		p.OwnKnown[pos] = false
	}
}

// InvalidateOpponentView drops the snapshot of the opponent's pos.
func (p *Player) InvalidateOpponentView(pos uint8) {
	if pos < HandSize {
		p.OpponentKnown[pos] = EmptyCard
	}
}

// RawScore is the sum of ranks in hand. Knowledge is ignored.
func (p *Player) RawScore() int {
	s := 0
	for _, c := range p.Hand {
		s += c.Value()
	}
	return s
}

// KnownCount returns how many own positions are verified.
func (p *Player) KnownCount() int {
	n := 0
	for _, k := range p.OwnKnown {
		if k {
			n++
		}
	}
	return n
}
