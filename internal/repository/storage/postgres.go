package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_stats (
	user_id TEXT PRIMARY KEY,
	wins    INTEGER NOT NULL DEFAULT 0,
	losses  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_achievements (
	user_id        TEXT NOT NULL,
	achievement_id TEXT NOT NULL,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL,
	icon           TEXT NOT NULL,
	unlocked_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, achievement_id)
);

CREATE TABLE IF NOT EXISTS game_history (
	id        BIGSERIAL PRIMARY KEY,
	user_id   TEXT NOT NULL,
	game_type TEXT NOT NULL,
	result    TEXT NOT NULL,
	opponent  TEXT NOT NULL,
	played_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS game_history_user_played_idx ON game_history (user_id, played_at DESC);
`

type PostgresStorage struct {
	Pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &PostgresStorage{Pool: pool}, nil
}

// Init - creates the profile tables when they are missing.
func (that *PostgresStorage) Init(ctx context.Context) error {
	if _, err := that.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("can't create tables: %w", err)
	}

	return nil
}

func (that *PostgresStorage) Close() {
	that.Pool.Close()
}
