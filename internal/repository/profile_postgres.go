package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

type pgProfile struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &pgProfile{
		pool: pool,
	}
}

func (that *pgProfile) GetStats(ctx context.Context, userID string) (entity.Stats, error) {
	query := `SELECT wins, losses FROM user_stats WHERE user_id = $1`

	var stats entity.Stats

	err := that.pool.QueryRow(ctx, query, userID).Scan(&stats.Wins, &stats.Losses)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Stats{}, nil
	}
	if err != nil {
		return entity.Stats{}, fmt.Errorf("can't get stats: %w", err)
	}

	return stats, nil
}

func (that *pgProfile) IncrementWins(ctx context.Context, userID string) error {
	query := `INSERT INTO user_stats (user_id, wins, losses) VALUES ($1, 1, 0)
		ON CONFLICT (user_id) DO UPDATE SET wins = user_stats.wins + 1`

	if _, err := that.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("can't increment wins: %w", err)
	}

	return nil
}

func (that *pgProfile) IncrementLosses(ctx context.Context, userID string) error {
	query := `INSERT INTO user_stats (user_id, wins, losses) VALUES ($1, 0, 1)
		ON CONFLICT (user_id) DO UPDATE SET losses = user_stats.losses + 1`

	if _, err := that.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("can't increment losses: %w", err)
	}

	return nil
}

func (that *pgProfile) HasAchievement(ctx context.Context, userID, achievementID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_achievements WHERE user_id = $1 AND achievement_id = $2)`

	var exists bool
	if err := that.pool.QueryRow(ctx, query, userID, achievementID).Scan(&exists); err != nil {
		return false, fmt.Errorf("can't check achievement: %w", err)
	}

	return exists, nil
}

func (that *pgProfile) GrantAchievement(ctx context.Context, userID string, achievement entity.Achievement) (bool, error) {
	query := `INSERT INTO user_achievements (user_id, achievement_id, name, description, icon, unlocked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`

	tag, err := that.pool.Exec(ctx, query,
		userID, achievement.ID, achievement.Name, achievement.Description, achievement.Icon, achievement.UnlockedAt,
	)
	if err != nil {
		return false, fmt.Errorf("can't grant achievement: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (that *pgProfile) ListAchievements(ctx context.Context, userID string) ([]entity.Achievement, error) {
	query := `SELECT achievement_id, name, description, icon, unlocked_at
		FROM user_achievements WHERE user_id = $1 ORDER BY unlocked_at`

	rows, err := that.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("can't list achievements: %w", err)
	}

	achievements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Achievement, error) {
		var achievement entity.Achievement
		err := row.Scan(&achievement.ID, &achievement.Name, &achievement.Description, &achievement.Icon, &achievement.UnlockedAt)
		return achievement, err
	})
	if err != nil {
		return nil, fmt.Errorf("can't scan achievements: %w", err)
	}

	return achievements, nil
}

func (that *pgProfile) AppendHistory(ctx context.Context, userID string, entry entity.HistoryEntry) error {
	insert := `INSERT INTO game_history (user_id, game_type, result, opponent, played_at) VALUES ($1, $2, $3, $4, $5)`
	trim := `DELETE FROM game_history WHERE user_id = $1 AND id NOT IN (
		SELECT id FROM game_history WHERE user_id = $1 ORDER BY played_at DESC, id DESC LIMIT $2)`

	err := pgx.BeginFunc(ctx, that.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insert, userID, string(entry.GameType), entry.Result, entry.Opponent, entry.PlayedAt); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, trim, userID, HistoryLimit)
		return err
	})
	if err != nil {
		return fmt.Errorf("can't append history: %w", err)
	}

	return nil
}

func (that *pgProfile) ListHistory(ctx context.Context, userID string, limit int) ([]entity.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT game_type, result, opponent, played_at FROM game_history
		WHERE user_id = $1 ORDER BY played_at DESC, id DESC LIMIT $2`

	rows, err := that.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list history: %w", err)
	}

	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.HistoryEntry, error) {
		var entry entity.HistoryEntry
		var gameType string
		err := row.Scan(&gameType, &entry.Result, &entry.Opponent, &entry.PlayedAt)
		entry.GameType = entity.GameType(gameType)
		return entry, err
	})
	if err != nil {
		return nil, fmt.Errorf("can't scan history: %w", err)
	}

	return history, nil
}
