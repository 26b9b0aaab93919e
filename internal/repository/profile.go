package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

// HistoryLimit - how many history entries are kept per user.
const HistoryLimit = 50

type ProfileRepository interface {
	GetStats(ctx context.Context, userID string) (entity.Stats, error)
	IncrementWins(ctx context.Context, userID string) error
	IncrementLosses(ctx context.Context, userID string) error

	HasAchievement(ctx context.Context, userID, achievementID string) (bool, error)
	GrantAchievement(ctx context.Context, userID string, achievement entity.Achievement) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]entity.Achievement, error)

	AppendHistory(ctx context.Context, userID string, entry entity.HistoryEntry) error
	ListHistory(ctx context.Context, userID string, limit int) ([]entity.HistoryEntry, error)
}

type redisProfile struct {
	client *redis.Client
}

type redisStats struct {
	Wins   int `redis:"wins"`
	Losses int `redis:"losses"`
}

func NewRedisProfileRepository(client *redis.Client) ProfileRepository {
	return &redisProfile{
		client: client,
	}
}

func statsKey(userID string) string        { return "stats:" + userID }
func achievementsKey(userID string) string { return "achievements:" + userID }
func historyKey(userID string) string      { return "history:" + userID }

func (that *redisProfile) GetStats(ctx context.Context, userID string) (entity.Stats, error) {
	var stats redisStats
	if err := that.client.HGetAll(ctx, statsKey(userID)).Scan(&stats); err != nil {
		return entity.Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}

	return entity.Stats{Wins: stats.Wins, Losses: stats.Losses}, nil
}

func (that *redisProfile) IncrementWins(ctx context.Context, userID string) error {
	if err := that.client.HIncrBy(ctx, statsKey(userID), "wins", 1).Err(); err != nil {
		return fmt.Errorf("failed to increment wins: %w", err)
	}

	return nil
}

func (that *redisProfile) IncrementLosses(ctx context.Context, userID string) error {
	if err := that.client.HIncrBy(ctx, statsKey(userID), "losses", 1).Err(); err != nil {
		return fmt.Errorf("failed to increment losses: %w", err)
	}

	return nil
}

func (that *redisProfile) HasAchievement(ctx context.Context, userID, achievementID string) (bool, error) {
	exists, err := that.client.HExists(ctx, achievementsKey(userID), achievementID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check achievement: %w", err)
	}

	return exists, nil
}

// GrantAchievement - stores the achievement once. Reports false when the user already had it.
func (that *redisProfile) GrantAchievement(ctx context.Context, userID string, achievement entity.Achievement) (bool, error) {
	achievementJSON, err := json.Marshal(achievement)
	if err != nil {
		return false, fmt.Errorf("could not marshal achievement: %w", err)
	}

	granted, err := that.client.HSetNX(ctx, achievementsKey(userID), achievement.ID, achievementJSON).Result()
	if err != nil {
		return false, fmt.Errorf("failed to grant achievement: %w", err)
	}

	return granted, nil
}

func (that *redisProfile) ListAchievements(ctx context.Context, userID string) ([]entity.Achievement, error) {
	response, err := that.client.HGetAll(ctx, achievementsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	achievements := make([]entity.Achievement, 0, len(response))
	for _, raw := range response {
		var achievement entity.Achievement
		if err = json.Unmarshal([]byte(raw), &achievement); err != nil {
			return nil, fmt.Errorf("failed to unmarshal achievement: %w", err)
		}
		achievements = append(achievements, achievement)
	}

	slices.SortFunc(achievements, func(a, b entity.Achievement) int {
		return a.UnlockedAt.Compare(b.UnlockedAt)
	})

	return achievements, nil
}

// AppendHistory - newest entry first, trimmed to HistoryLimit.
func (that *redisProfile) AppendHistory(ctx context.Context, userID string, entry entity.HistoryEntry) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("could not marshal history entry: %w", err)
	}

	key := historyKey(userID)
	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, entryJSON)
		pipe.LTrim(ctx, key, 0, HistoryLimit-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	return nil
}

func (that *redisProfile) ListHistory(ctx context.Context, userID string, limit int) ([]entity.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	response, err := that.client.LRange(ctx, historyKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	history := make([]entity.HistoryEntry, 0, len(response))
	for _, raw := range response {
		var entry entity.HistoryEntry
		if err = json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		history = append(history, entry)
	}

	return history, nil
}
