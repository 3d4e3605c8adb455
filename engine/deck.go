package engine

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

// Deck is an ordered stack of cards. Index 0 is the top.
type Deck struct {
	cards []Card
}

// StandardCards returns the ten cards of a Cabo deck in canonical order:
// two copies each of ranks 1–4, then the Reveal and Exchange fives.
func StandardCards() []Card {
	cards := make([]Card, 0, DeckSize)
	for rank := uint8(1); rank <= 4; rank++ {
		cards = append(cards, NewCard(rank, AbilityNone), NewCard(rank, AbilityNone))
	}
	return append(cards, NewCard(5, AbilityReveal), NewCard(5, AbilityExchange))
}

// NewDeck builds the standard deck and shuffles it with src.
func NewDeck(src rand.Source) *Deck {
	cards := StandardCards()
	rand.New(src).Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// NewSeededDeck is NewDeck with a PCG source built from seed.
func NewSeededDeck(seed uint64) *Deck {
	return NewDeck(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// NewDeckFromCards builds an unshuffled deck. cards[0] is drawn first.
func NewDeckFromCards(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// validate checks every remaining card against StandardCards. Shorter decks
// are allowed.
func (d *Deck) validate() error {
	limit := make(map[Card]int, DeckSize)
	for _, c := range StandardCards() {
		limit[c]++
	}
	seen := make(map[Card]int, len(d.cards))
	for i, c := range d.cards {
		if limit[c] == 0 {
			return errors.Wrapf(ErrInvalidDeck, "card %d (%#02x) is not a Cabo card", i, uint8(c))
		}
		if seen[c]++; seen[c] > limit[c] {
			return errors.Wrapf(ErrInvalidDeck, "%d copies of %s, at most %d", seen[c], c, limit[c])
		}
	}
	return nil
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return EmptyCard, ErrDeckEmpty
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int { return len(d.cards) }

// Cards returns a copy of the remaining cards, top first.
func (d *Deck) Cards() []Card { return append([]Card(nil), d.cards...) }
