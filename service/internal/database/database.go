// Package database persists game snapshots and round results to Postgres.
package database

import (
	"context"
	"embed"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schema embed.FS

// ErrNotConnected is returned when DB has not been set up.
var ErrNotConnected = errors.New("database not connected")

// DB is the shared pool. It stays nil when no database is configured.
var DB *pgxpool.Pool

// Log receives errors from fire-and-forget writes.
var Log = logrus.WithField("component", "database")

// Connect opens DB and pings the server.
func Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return errors.Wrap(err, "open pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return errors.Wrap(err, "ping")
	}
	DB = pool
	return nil
}

// Close releases DB.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// Schema returns the embedded schema.
func Schema() (string, error) {
	b, err := schema.ReadFile("schema.sql")
	return string(b), err
}

// Migrate applies the embedded schema. It is safe to run repeatedly.
func Migrate(ctx context.Context) error {
	if DB == nil {
		return ErrNotConnected
	}
	sql, err := Schema()
	if err != nil {
		return err
	}
	_, err = DB.Exec(ctx, sql)
	return errors.Wrap(err, "migrate")
}

/* -----------------------------
   Game snapshots
------------------------------*/

// UpsertInitialGameState records the dealt state of a game.
func UpsertInitialGameState(ctx context.Context, gameID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "encode initial state")
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO games(id, initial_state)
		VALUES ($1::uuid, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET initial_state = EXCLUDED.initial_state
	`, gameID.String(), string(data))
	return err
}

// StoreFinalGameStateInDB records the final hands and scores of a game. It
// is meant to run in its own goroutine, so failures are logged.
func StoreFinalGameStateInDB(ctx context.Context, gameID uuid.UUID, snapshot interface{}) {
	if err := storeFinalGameState(ctx, gameID, snapshot); err != nil {
		Log.WithError(err).WithField("game", gameID).Error("storing final game state")
	}
}

func storeFinalGameState(ctx context.Context, gameID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "encode final state")
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO games(id, final_state, ended_at)
		VALUES ($1::uuid, $2::jsonb, now())
		ON CONFLICT (id) DO UPDATE
		  SET final_state = EXCLUDED.final_state,
		      ended_at = EXCLUDED.ended_at
	`, gameID.String(), string(data))
	return err
}

/* -----------------------------
   Round results
------------------------------*/

// RoundResult is one scored round.
type RoundResult struct {
	GameID     uuid.UUID
	Seed       uint64
	EndReason  string
	CaboCaller int
	Winner     int
	Raw        [2]int
	Final      [2]int
	Turns      int
	Providers  [2]string
	CreatedAt  time.Time
}

// InsertRoundResult stores res. The game row must exist.
func InsertRoundResult(ctx context.Context, res RoundResult) error {
	if DB == nil {
		return ErrNotConnected
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO round_results(
			game_id, seed, end_reason, cabo_caller, winner,
			raw_0, raw_1, final_0, final_1, turns, provider_0, provider_1)
		VALUES ($1::uuid,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, res.GameID.String(), int64(res.Seed), res.EndReason, res.CaboCaller, res.Winner,
		res.Raw[0], res.Raw[1], res.Final[0], res.Final[1], res.Turns,
		res.Providers[0], res.Providers[1])
	return errors.Wrapf(err, "insert round result for game %s", res.GameID)
}

// RecentResults returns up to limit results, newest first.
func RecentResults(ctx context.Context, limit int) ([]RoundResult, error) {
	if DB == nil {
		return nil, ErrNotConnected
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := DB.Query(ctx, `
		SELECT game_id::text, seed, end_reason, cabo_caller, winner,
		       raw_0, raw_1, final_0, final_1, turns, provider_0, provider_1, created_at
		  FROM round_results
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoundResult
	for rows.Next() {
		var (
			res    RoundResult
			gameID string
			seed   int64
		)
		if err := rows.Scan(&gameID, &seed, &res.EndReason, &res.CaboCaller, &res.Winner,
			&res.Raw[0], &res.Raw[1], &res.Final[0], &res.Final[1], &res.Turns,
			&res.Providers[0], &res.Providers[1], &res.CreatedAt); err != nil {
			return nil, err
		}
		if res.GameID, err = uuid.Parse(gameID); err != nil {
			return nil, errors.Wrapf(err, "game id %q", gameID)
		}
		res.Seed = uint64(seed)
		out = append(out, res)
	}
	return out, rows.Err()
}
