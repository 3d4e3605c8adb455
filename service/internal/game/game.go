// internal/game/game.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cabo/engine"
	"github.com/jason-s-yu/cabo/service/internal/cache"
	"github.com/jason-s-yu/cabo/service/internal/database"
	"github.com/jason-s-yu/cabo/service/internal/metrics"
	"github.com/jason-s-yu/cabo/service/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// OnGameEndFunc defines the signature for a callback function executed when a game ends.
// It receives the lobby ID, the winner's ID (uuid.Nil on a draw), and the final scores.
type OnGameEndFunc func(lobbyID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]int)

// GameEventType represents the type of a game-related event sent to players.
type GameEventType string

// Constants defining the various GameEvent types.
const (
	EventPlayerInitialPeek     GameEventType = "player_initial_peek"     // Public: Player looked at one of their own cards.
	EventPrivateInitialPeek    GameEventType = "private_initial_peek"    // Private: The card seen during the setup peek.
	EventPlayerDraw            GameEventType = "player_draw"             // Public: Player drew a card (no details).
	EventPrivateDraw           GameEventType = "private_draw"            // Private: Details of the card drawn.
	EventPlayerDiscard         GameEventType = "player_discard"          // Public: A card landed on the discard pile.
	EventPlayerSwap            GameEventType = "player_swap"             // Public: Drawn card placed into a hand position.
	EventPlayerAbilityChoice   GameEventType = "player_ability_choice"   // Public: Player chose to use the drawn card's ability.
	EventPlayerReveal          GameEventType = "player_reveal"           // Public: Player looked at an opponent position.
	EventPrivateReveal         GameEventType = "private_reveal"          // Private: The opponent card seen.
	EventPlayerExchange        GameEventType = "player_exchange"         // Public: Player exchanged a card with the opponent.
	EventPlayerCabo            GameEventType = "player_cabo"             // Public: Player declared the end of the round.
	EventGamePlayerTurn        GameEventType = "game_player_turn"        // Public: Notification of the acting player.
	EventGameDeckExhausted     GameEventType = "game_deck_exhausted"     // Public: A draw found the deck empty.
	EventPrivateActionRejected GameEventType = "private_action_rejected" // Private: The round refused the player's action.
	EventPrivateSyncState      GameEventType = "private_sync_state"      // Private: Full game state sync for a player.
	EventGameEnd               GameEventType = "game_end"                // Public: Game has ended, includes results.
)

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// EventCard identifies a card position within a GameEvent payload, optionally including details.
type EventCard struct {
	Rank    int        `json:"rank,omitempty"`
	Ability string     `json:"ability,omitempty"`
	Label   string     `json:"label,omitempty"` // e.g. "3", "5R"
	Idx     *int       `json:"idx,omitempty"`   // Index in hand, if relevant.
	User    *EventUser `json:"user,omitempty"`  // Owner of the position, if relevant.
}

// GameEvent is the standard structure for broadcasting game state changes and actions.
type GameEvent struct {
	Type    GameEventType `json:"type"`
	User    *EventUser    `json:"user,omitempty"`    // The user initiating or targeted by the event.
	Card    *EventCard    `json:"card,omitempty"`    // Primary card involved.
	Card1   *EventCard    `json:"card1,omitempty"`   // First card in a two-card action (exchange).
	Card2   *EventCard    `json:"card2,omitempty"`   // Second card in a two-card action.
	Special string        `json:"special,omitempty"` // Ability in play ("reveal", "exchange").

	Payload map[string]interface{} `json:"payload,omitempty"` // Additional arbitrary data.

	State *ObfGameState `json:"state,omitempty"` // Full obfuscated state for sync events.
}

var (
	// ErrNotReady is returned by Play when the table is not complete.
	ErrNotReady = errors.New("game needs two seated players with providers")
	// ErrAlreadyStarted is returned when a started game is modified or replayed.
	ErrAlreadyStarted = errors.New("game already started")
)

// CaboGame is one two-player round of Cabo played between decision providers.
type CaboGame struct {
	ID      uuid.UUID // Unique identifier for this game instance.
	LobbyID uuid.UUID // ID of the lobby that created this game, if any.

	HouseRules      engine.HouseRules
	Seed            uint64        // Deck shuffle seed.
	Deck            *engine.Deck  // If set, dealt instead of a deck shuffled from Seed.
	DecisionTimeout time.Duration // Per-decision bound, 0 for engine.DefaultDecisionTimeout.
	MaxAttempts     int           // Per-action attempt bound, 0 for engine.DefaultMaxAttempts.

	Players   []*models.Player // Seat order.
	providers [engine.NumPlayers]engine.DecisionProvider

	Round  *engine.Round  // Authoritative round state; nil until Play.
	Result *engine.Result // Set once the round is scored.

	Started  bool
	GameOver bool

	actionIndex int    // Sequential index for the action log.
	turnSeat    uint8  // Acting seat last announced.
	turnNumber  uint16 // Round turn number last announced.

	Mu sync.Mutex // Protects everything above once Play runs.

	Log     *logrus.Entry
	Metrics *metrics.Recorder

	// Communication Callbacks
	BroadcastFn         func(ev GameEvent)                     // Sends an event to all players.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent) // Sends an event to a single player.
	OnGameEnd           OnGameEndFunc                          // Callback executed when the game finishes.
}

// NewCaboGame creates a game with the given rules and a time-based seed.
func NewCaboGame(rules engine.HouseRules, log *logrus.Entry) *CaboGame {
	id := uuid.New()
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CaboGame{
		ID:         id,
		HouseRules: rules,
		Seed:       uint64(time.Now().UnixNano()),
		Log:        log.WithField("game", id),
		Metrics:    metrics.Default,
	}
}

// AddPlayer seats p, driven by provider, in the next free seat.
func (g *CaboGame) AddPlayer(p *models.Player, provider engine.DecisionProvider) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started {
		return ErrAlreadyStarted
	}
	if provider == nil {
		return errors.Errorf("player %s has no decision provider", p.ID)
	}
	for _, pl := range g.Players {
		if pl.ID == p.ID {
			return errors.Errorf("player %s already seated", p.ID)
		}
	}
	if len(g.Players) >= engine.NumPlayers {
		return errors.Errorf("table full, cannot seat %s", p.Name())
	}
	seat := len(g.Players)
	g.Players = append(g.Players, p)
	g.providers[seat] = provider
	g.Log.WithFields(logrus.Fields{"player": p.ID, "seat": seat, "provider": p.Provider}).Info("player seated")
	g.logAction(p.ID, "player_add", map[string]interface{}{"seat": seat, "username": p.Name(), "provider": p.Provider})
	return nil
}

// Play deals the round and runs it to completion. It returns the scored
// result, or the error that stopped the round early.
func (g *CaboGame) Play(ctx context.Context) (engine.Result, error) {
	runner, err := g.begin()
	if err != nil {
		return engine.Result{}, err
	}
	defer g.Metrics.GameStopped()

	res, err := runner.Play(ctx)

	g.Mu.Lock()
	defer g.Mu.Unlock()
	if err != nil {
		g.abort(err)
		return engine.Result{}, err
	}
	g.endGame(res)
	return res, nil
}

// begin deals the round and announces the start. The returned runner shares g.Mu.
func (g *CaboGame) begin() (*engine.Runner, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started {
		return nil, ErrAlreadyStarted
	}
	if len(g.Players) != engine.NumPlayers {
		return nil, ErrNotReady
	}
	deck := g.Deck
	if deck == nil {
		deck = engine.NewSeededDeck(g.Seed)
	}
	round, err := engine.NewRound(g.HouseRules, deck, g.Log)
	if err != nil {
		return nil, errors.Wrap(err, "deal")
	}
	g.Round = round
	g.Started = true
	g.Metrics.GameStarted()

	g.Log.WithField("seed", g.Seed).Info("game started")
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{"seed": g.Seed})
	g.persistInitialGameState()
	g.broadcastSyncStateToAll()
	g.turnSeat, g.turnNumber = round.ActingSeat(), round.TurnNumber
	g.broadcastPlayerTurn()

	runner := &engine.Runner{
		Round:           round,
		DecisionTimeout: g.DecisionTimeout,
		MaxAttempts:     g.MaxAttempts,
		Log:             g.Log,
		Mu:              &g.Mu,
		OnApplied:       g.onApplied,
	}
	for seat := range g.providers {
		runner.Providers[seat] = &seatProvider{g: g, seat: uint8(seat), inner: g.providers[seat]}
	}
	return runner, nil
}

// onApplied runs inside the runner with g.Mu held.
func (g *CaboGame) onApplied(seat uint8, a engine.Action) {
	g.Metrics.ActionApplied(a.Kind)
	g.emitEventsForAction(seat, a)

	if g.Round.IsOver() {
		return
	}
	if acting := g.Round.ActingSeat(); acting != g.turnSeat || g.Round.TurnNumber != g.turnNumber {
		g.turnSeat, g.turnNumber = acting, g.Round.TurnNumber
		g.broadcastPlayerTurn()
	}
}

// broadcastPlayerTurn notifies all players of the acting player.
// Assumes lock is held by caller.
func (g *CaboGame) broadcastPlayerTurn() {
	seat := g.Round.ActingSeat()
	playerID := g.playerAt(seat)
	g.fireEvent(GameEvent{
		Type: EventGamePlayerTurn,
		User: &EventUser{ID: playerID},
		Payload: map[string]interface{}{
			"turn":  g.Round.TurnNumber,
			"phase": g.Round.Phase(),
		},
	})
	g.logAction(playerID, string(EventGamePlayerTurn), map[string]interface{}{"turn": g.Round.TurnNumber})
}

// fireEvent broadcasts an event to all players via the BroadcastFn callback.
// Assumes lock is held by caller.
func (g *CaboGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event to one player via the BroadcastToPlayerFn callback.
// Assumes lock is held by caller.
func (g *CaboGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// endGame records the result, broadcasts it and triggers the OnGameEnd callback.
// Assumes lock is held by caller.
func (g *CaboGame) endGame(res engine.Result) {
	if g.GameOver {
		g.Log.Warn("endGame called, but game is already over")
		return
	}
	g.GameOver = true
	g.Result = &res
	g.Metrics.RoundFinished(res)

	scores := make(map[uuid.UUID]int, engine.NumPlayers)
	raw := make(map[string]int, engine.NumPlayers)
	final := make(map[string]int, engine.NumPlayers)
	for seat, p := range g.Players {
		scores[p.ID] = res.Final[seat]
		raw[p.ID.String()] = res.Raw[seat]
		final[p.ID.String()] = res.Final[seat]
	}
	winner := uuid.Nil
	if res.Winner >= 0 {
		winner = g.playerAt(uint8(res.Winner))
	}
	caller := uuid.Nil
	penaltyApplied := false
	if res.CaboCaller >= 0 {
		c := uint8(res.CaboCaller)
		caller = g.playerAt(c)
		penaltyApplied = res.Raw[c] > res.Raw[engine.OpponentOf(c)]
	}

	g.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{
		"scores":         final,
		"winner":         winner,
		"caller":         caller,
		"reason":         res.Reason.String(),
		"penaltyApplied": penaltyApplied,
	})
	g.persistFinalGameState(res)

	g.fireEvent(GameEvent{
		Type: EventGameEnd,
		Payload: map[string]interface{}{
			"scores":         final,
			"rawScores":      raw,
			"winner":         winner.String(),
			"caller":         caller.String(),
			"reason":         res.Reason.String(),
			"penaltyApplied": penaltyApplied,
			"hands":          g.revealedHands(),
		},
	})
	g.broadcastSyncStateToAll()

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.LobbyID, winner, scores)
	}

	g.Log.WithFields(logrus.Fields{
		"reason": res.Reason,
		"winner": metrics.Outcome(res.Winner),
		"final":  res.Final,
		"turns":  g.Round.TurnNumber,
	}).Info("game ended")
}

// abort ends a game the runner could not finish.
// Assumes lock is held by caller.
func (g *CaboGame) abort(err error) {
	g.GameOver = true
	g.Metrics.RoundAborted()
	g.Log.WithError(err).Error("game aborted")
	g.logAction(uuid.Nil, "game_aborted", map[string]interface{}{"error": err.Error()})
	g.fireEvent(GameEvent{
		Type:    EventGameEnd,
		Payload: map[string]interface{}{"aborted": true, "error": err.Error()},
	})
}

// revealedHands lists every hand face up, keyed by player id.
// Assumes lock is held by caller.
func (g *CaboGame) revealedHands() map[string][]string {
	hands := make(map[string][]string, len(g.Players))
	for seat, p := range g.Players {
		cards := make([]string, 0, engine.HandSize)
		for _, c := range g.Round.Players[seat].Hand {
			cards = append(cards, c.String())
		}
		hands[p.ID.String()] = cards
	}
	return hands
}

// persistInitialGameState saves the seed, deck order and dealt hands to the database.
// Assumes lock is held by caller.
func (g *CaboGame) persistInitialGameState() {
	type initialState struct {
		Seed  uint64              `json:"seed"`
		Rules engine.HouseRules   `json:"rules"`
		Deck  []engine.Card       `json:"deck"`
		Hands map[string][]string `json:"hands"`
	}
	snap := initialState{
		Seed:  g.Seed,
		Rules: g.HouseRules,
		Deck:  g.Round.DeckCards(),
		Hands: g.revealedHands(),
	}
	if database.DB != nil {
		go func(id uuid.UUID) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.UpsertInitialGameState(ctx, id, snap); err != nil {
				g.Log.WithError(err).Error("failed persisting initial state")
			}
		}(g.ID)
	}
	g.logAction(uuid.Nil, "game_initial_state_saved", map[string]interface{}{"deckRemaining": len(snap.Deck)})
}

// persistFinalGameState saves final hands and the round result to the database.
// Assumes lock is held by caller.
func (g *CaboGame) persistFinalGameState(res engine.Result) {
	if database.DB == nil {
		return
	}
	snapshot := map[string]interface{}{
		"hands":  g.revealedHands(),
		"result": res,
	}
	row := database.RoundResult{
		GameID:     g.ID,
		Seed:       g.Seed,
		EndReason:  res.Reason.String(),
		CaboCaller: int(res.CaboCaller),
		Winner:     int(res.Winner),
		Raw:        res.Raw,
		Final:      res.Final,
		Turns:      int(g.Round.TurnNumber),
	}
	for seat, p := range g.Players {
		row.Providers[seat] = p.Provider
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		database.StoreFinalGameStateInDB(ctx, row.GameID, snapshot)
		if err := database.InsertRoundResult(ctx, row); err != nil {
			g.Log.WithError(err).Error("failed persisting round result")
		}
	}()
}

// logAction publishes an action record to the Redis queue.
// Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (g *CaboGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			g.Log.WithError(err).WithFields(logrus.Fields{
				"index": rec.ActionIndex,
				"type":  rec.ActionType,
			}).Error("failed publishing action")
		}
	}(record)
}

// ActionCount returns how many actions have been logged.
func (g *CaboGame) ActionCount() int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.actionIndex
}
