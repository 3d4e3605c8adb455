package engine

import "fmt"

const (
	NumPlayers = 2
	HandSize   = 2
	DeckSize   = 10
)

// Ability is the special effect carried by a rank-5 card.
type Ability uint8

const (
	AbilityNone     Ability = iota // 0
	AbilityReveal                  // 1: look at one opponent card
	AbilityExchange                // 2: swap one own card with one opponent card
)

func (a Ability) String() string {
	switch a {
	case AbilityNone:
		return "none"
	case AbilityReveal:
		return "reveal"
	case AbilityExchange:
		return "exchange"
	}
	return fmt.Sprintf("ability(%d)", uint8(a))
}

// Card is a packed uint8: upper 4 bits = ability, lower 4 bits = rank.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from rank and ability.
func NewCard(rank uint8, ability Ability) Card {
	return Card((uint8(ability) << 4) | (rank & 0x0F))
}

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// Ability returns the ability bits (upper 4).
func (c Card) Ability() Ability {
	if c == EmptyCard {
		return AbilityNone
	}
	return Ability(uint8(c) >> 4)
}

// HasAbility returns true for the two rank-5 skill cards.
func (c Card) HasAbility() bool { return c.Ability() != AbilityNone }

// Value returns the point value of the card. EmptyCard is worth 0.
func (c Card) Value() int {
	if c == EmptyCard {
		return 0
	}
	return int(c.Rank())
}

// String renders a card as its rank, suffixed with R or E for ability cards.
func (c Card) String() string {
	switch {
	case c == EmptyCard:
		return "-"
	case c.Ability() == AbilityReveal:
		return fmt.Sprintf("%dR", c.Rank())
	case c.Ability() == AbilityExchange:
		return fmt.Sprintf("%dE", c.Rank())
	}
	return fmt.Sprintf("%d", c.Rank())
}

// MarshalText encodes the card in its String form; EmptyCard encodes as "".
func (c Card) MarshalText() ([]byte, error) {
	if c == EmptyCard {
		return []byte{}, nil
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses the String form of a card.
func (c *Card) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "" || s == "-" {
		*c = EmptyCard
		return nil
	}
	ability := AbilityNone
	switch s[len(s)-1] {
	case 'R':
		ability = AbilityReveal
		s = s[:len(s)-1]
	case 'E':
		ability = AbilityExchange
		s = s[:len(s)-1]
	}
	if len(s) != 1 || s[0] < '1' || s[0] > '5' {
		return fmt.Errorf("invalid card %q", string(b))
	}
	*c = NewCard(s[0]-'0', ability)
	return nil
}

// Phase names a state of the round machine. The values double as fsm state names.
type Phase string

const (
	PhaseInitialPeek       Phase = "awaiting_initial_peek"
	PhaseMainAction        Phase = "awaiting_main_action"
	PhaseDrawResolution    Phase = "awaiting_draw_resolution"
	PhaseAbilityResolution Phase = "awaiting_ability_resolution"
	PhaseRoundClosing      Phase = "round_closing"
	PhaseGameOver          Phase = "game_over"
)

// EndReason records why a round terminated.
type EndReason uint8

const (
	EndNone          EndReason = iota // 0: round still running
	EndCabo                           // 1
	EndDeckExhausted                  // 2
)

func (r EndReason) String() string {
	switch r {
	case EndNone:
		return "none"
	case EndCabo:
		return "cabo"
	case EndDeckExhausted:
		return "deck_exhausted"
	}
	return fmt.Sprintf("end(%d)", uint8(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r EndReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// ---------------------------------------------------------------------------
// LastActionInfo
// ---------------------------------------------------------------------------

// LastActionInfo is a publicly observable summary of the most recent action.
// Revealed values are never included; only positions that were touched.
type LastActionInfo struct {
	Action       Action `json:"action"`
	ActingPlayer uint8  `json:"acting_player"`
	Discarded    Card   `json:"discarded"` // card that landed on the discard pile, EmptyCard if none
	Valid        bool   `json:"valid"`
}
