// internal/game/sync_state.go
package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cabo/engine"
	"github.com/jason-s-yu/cabo/service/internal/cache"
)

// ObfCard represents a card position for client synchronization, hiding what the observer does not know.
type ObfCard struct {
	Known   bool   `json:"known"` // True if the observer knows (or remembers) this card.
	Label   string `json:"label,omitempty"`
	Rank    int    `json:"rank,omitempty"`
	Ability string `json:"ability,omitempty"`
	Idx     *int   `json:"idx,omitempty"` // Hand position, nil for pile and drawn cards.
}

// ObfPlayerState represents the state of a single player, obfuscated for a specific observer.
type ObfPlayerState struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Username      string    `json:"username"`
	Provider      string    `json:"provider,omitempty"`
	HandSize      int       `json:"handSize"`
	CalledCabo    bool      `json:"calledCabo"`
	Connected     bool      `json:"connected"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
	// Hand shows what the observer knows about this player's positions: own
	// verified cards for self, remembered snapshots for the opponent.
	Hand []ObfCard `json:"hand,omitempty"`
	// DrawnCard is populated only for the player requesting the state ('self').
	DrawnCard *ObfCard `json:"drawnCard,omitempty"`
}

// ObfGameState represents the overall game state, obfuscated for a specific observer.
type ObfGameState struct {
	GameID          uuid.UUID         `json:"gameId"`
	Phase           engine.Phase      `json:"phase"`
	Started         bool              `json:"started"`
	GameOver        bool              `json:"gameOver"`
	CurrentPlayerID uuid.UUID         `json:"currentPlayerId"`
	TurnID          int               `json:"turnId"`
	DeckRemaining   int               `json:"deckRemaining"`
	DiscardSize     int               `json:"discardSize"`
	DiscardTop      *ObfCard          `json:"discardTop,omitempty"`
	Players         []ObfPlayerState  `json:"players"`
	CaboCalled      bool              `json:"caboCalled"`
	CaboCallerID    uuid.UUID         `json:"caboCallerId,omitempty"`
	HouseRules      engine.HouseRules `json:"houseRules"`
}

func obfCard(c engine.Card, idx *int) ObfCard {
	if c == engine.EmptyCard {
		return ObfCard{Idx: idx}
	}
	oc := ObfCard{Known: true, Label: c.String(), Rank: int(c.Rank()), Idx: idx}
	if c.HasAbility() {
		oc.Ability = c.Ability().String()
	}
	return oc
}

func obfSlots(slots [engine.HandSize]engine.SlotView) []ObfCard {
	out := make([]ObfCard, len(slots))
	for i, s := range slots {
		idx := i
		c := engine.EmptyCard
		if s.Known {
			c = s.Card
		}
		out[i] = obfCard(c, &idx)
	}
	return out
}

// GetCurrentObfuscatedGameState generates a snapshot of the game state,
// tailored to the perspective of the requesting user (`forUser`). Card values
// appear only where that player's knowledge allows; spectators see none.
// This function assumes the game lock is HELD by the caller.
func (g *CaboGame) GetCurrentObfuscatedGameState(forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		GameID:     g.ID,
		Started:    g.Started,
		GameOver:   g.GameOver,
		HouseRules: g.HouseRules,
	}
	if g.Round == nil {
		for _, p := range g.Players {
			obf.Players = append(obf.Players, ObfPlayerState{PlayerID: p.ID, Username: p.Name(), Provider: p.Provider, Connected: p.Connected})
		}
		return obf
	}

	r := g.Round
	obf.Phase = r.Phase()
	obf.GameOver = obf.GameOver || r.IsOver()
	obf.TurnID = int(r.TurnNumber)
	obf.DeckRemaining = r.DeckRemaining()
	obf.DiscardSize = len(r.DiscardPile)
	obf.CaboCalled = r.CaboCalled()
	if r.CaboCalled() {
		obf.CaboCallerID = g.playerAt(uint8(r.CaboCaller))
	}
	if !obf.GameOver {
		obf.CurrentPlayerID = g.playerAt(r.ActingSeat())
	}
	if top := r.DiscardTop(); top != engine.EmptyCard {
		c := obfCard(top, nil)
		obf.DiscardTop = &c
	}

	viewerSeat, isPlayer := g.seatOf(forUser)
	var view engine.Observation
	if isPlayer {
		view = r.Observe(viewerSeat)
	}

	obf.Players = make([]ObfPlayerState, len(g.Players))
	for i, p := range g.Players {
		seat := uint8(i)
		ps := ObfPlayerState{
			PlayerID:      p.ID,
			Username:      p.Name(),
			Provider:      p.Provider,
			HandSize:      engine.HandSize,
			CalledCabo:    r.CaboCaller == int8(seat),
			Connected:     p.Connected,
			IsCurrentTurn: !obf.GameOver && r.ActingSeat() == seat,
		}
		switch {
		case !isPlayer:
		case seat == viewerSeat:
			ps.Hand = obfSlots(view.OwnHand)
			if view.Drawn != engine.EmptyCard {
				c := obfCard(view.Drawn, nil)
				ps.DrawnCard = &c
			}
		default:
			ps.Hand = obfSlots(view.OpponentHand)
		}
		obf.Players[i] = ps
	}
	return obf
}

// SyncState returns the obfuscated state for forUser, taking the game lock.
func (g *CaboGame) SyncState(forUser uuid.UUID) ObfGameState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.GetCurrentObfuscatedGameState(forUser)
}

// sendSyncState sends a private sync event to playerID and caches the snapshot.
// Assumes lock is held by caller.
func (g *CaboGame) sendSyncState(playerID uuid.UUID) {
	state := g.GetCurrentObfuscatedGameState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})

	if cache.Rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.StoreSyncState(ctx, g.ID, playerID, state); err != nil {
			g.Log.WithError(err).WithField("player", playerID).Warn("failed caching sync state")
		}
	}()
}

// broadcastSyncStateToAll sends each player their own sync state.
// Assumes lock is held by caller.
func (g *CaboGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		g.sendSyncState(p.ID)
	}
}
