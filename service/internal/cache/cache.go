// Package cache holds the Redis client used for the action log and the
// per-seat sync state snapshots.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ActionQueueKey is the list game action records are pushed onto.
const ActionQueueKey = "cabo:game_actions"

// SyncStateTTL bounds how long a sync snapshot survives after its last write.
const SyncStateTTL = time.Hour

var (
	// ErrNotConnected is returned when Rdb has not been set up.
	ErrNotConnected = errors.New("redis client not connected")
	// ErrStateNotFound is returned when no sync state is stored for a seat.
	ErrStateNotFound = errors.New("sync state not found")
)

// Rdb is the shared client. It stays nil when Redis is not configured.
var Rdb *redis.Client

// Connect creates Rdb and pings the server.
func Connect(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return errors.Wrapf(err, "redis ping [%s]", addr)
	}
	Rdb = client
	return nil
}

// Close releases Rdb.
func Close() error {
	if Rdb == nil {
		return nil
	}
	err := Rdb.Close()
	Rdb = nil
	return err
}

// GameActionRecord is one entry of a game's action log.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorUserID   uuid.UUID              `json:"actor_user_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// PublishGameAction appends rec to ActionQueueKey.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encode action %d of game %s", rec.ActionIndex, rec.GameID)
	}
	return Rdb.RPush(ctx, ActionQueueKey, data).Err()
}

// SyncStateKey returns the key a player's sync snapshot is stored under.
func SyncStateKey(gameID, playerID uuid.UUID) string {
	return fmt.Sprintf("cabo:sync:%s:%s", gameID, playerID)
}

// StoreSyncState saves state as JSON for playerID.
func StoreSyncState(ctx context.Context, gameID, playerID uuid.UUID, state interface{}) error {
	if Rdb == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode sync state")
	}
	return Rdb.Set(ctx, SyncStateKey(gameID, playerID), data, SyncStateTTL).Err()
}

// LoadSyncState decodes the snapshot stored for playerID into dst.
func LoadSyncState(ctx context.Context, gameID, playerID uuid.UUID, dst interface{}) error {
	if Rdb == nil {
		return ErrNotConnected
	}
	key := SyncStateKey(gameID, playerID)
	data, err := Rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return errors.Wrapf(ErrStateNotFound, "key %s", key)
	}
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(data, dst), "decode sync state [%s]", key)
}
