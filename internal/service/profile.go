package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

// ProfileHistorySize - how many recent games the profile shows.
const ProfileHistorySize = 10

const (
	AchievementFirstWin = "first_win"
	AchievementMaster   = "master"

	masterLevel = 10
)

type achievementRule struct {
	achievement entity.Achievement
	unlocked    func(stats entity.Stats) bool
}

var achievementRules = []achievementRule{
	{
		achievement: entity.Achievement{
			ID:          AchievementFirstWin,
			Name:        "First Victory",
			Description: "Win your first game",
			Icon:        "🏆",
		},
		unlocked: func(stats entity.Stats) bool { return stats.Wins >= 1 },
	},
	{
		achievement: entity.Achievement{
			ID:          AchievementMaster,
			Name:        "Game Master",
			Description: "Reach level 10",
			Icon:        "🌟",
		},
		unlocked: func(stats entity.Stats) bool { return stats.Level() >= masterLevel },
	},
}

type profileRepo interface {
	GetStats(ctx context.Context, userID string) (entity.Stats, error)
	IncrementWins(ctx context.Context, userID string) error
	IncrementLosses(ctx context.Context, userID string) error

	HasAchievement(ctx context.Context, userID, achievementID string) (bool, error)
	GrantAchievement(ctx context.Context, userID string, achievement entity.Achievement) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]entity.Achievement, error)

	AppendHistory(ctx context.Context, userID string, entry entity.HistoryEntry) error
	ListHistory(ctx context.Context, userID string, limit int) ([]entity.HistoryEntry, error)
}

type ProfileService interface {
	ApplyResult(ctx context.Context, result entity.GameResult) ([]entity.Achievement, error)
	CheckAchievements(ctx context.Context, userID string) ([]entity.Achievement, error)
	GetProfile(ctx context.Context, user entity.User) (*entity.Profile, error)
}

type profileService struct {
	repo profileRepo
	now  func() time.Time
}

func NewProfileService(repo profileRepo) ProfileService {
	return &profileService{
		repo: repo,
		now:  time.Now,
	}
}

// ApplyResult - counts the result, appends it to the history and returns newly unlocked achievements.
func (that *profileService) ApplyResult(ctx context.Context, result entity.GameResult) ([]entity.Achievement, error) {
	switch result.Result {
	case entity.ResultWin:
		if err := that.repo.IncrementWins(ctx, result.UserID); err != nil {
			return nil, fmt.Errorf("could not count win: %w", err)
		}
	case entity.ResultLoss:
		if err := that.repo.IncrementLosses(ctx, result.UserID); err != nil {
			return nil, fmt.Errorf("could not count loss: %w", err)
		}
	}

	entry := entity.HistoryEntry{
		GameType: result.GameType,
		Result:   result.Result,
		Opponent: result.Opponent,
		PlayedAt: that.now().UTC(),
	}
	if err := that.repo.AppendHistory(ctx, result.UserID, entry); err != nil {
		return nil, fmt.Errorf("could not append history: %w", err)
	}

	if result.Result == entity.ResultDraw {
		return nil, nil
	}

	return that.CheckAchievements(ctx, result.UserID)
}

func (that *profileService) CheckAchievements(ctx context.Context, userID string) ([]entity.Achievement, error) {
	stats, err := that.repo.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get stats: %w", err)
	}

	var unlocked []entity.Achievement
	for _, rule := range achievementRules {
		if !rule.unlocked(stats) {
			continue
		}

		has, err := that.repo.HasAchievement(ctx, userID, rule.achievement.ID)
		if err != nil {
			return unlocked, fmt.Errorf("could not check achievement %s: %w", rule.achievement.ID, err)
		}
		if has {
			continue
		}

		achievement := rule.achievement
		achievement.UnlockedAt = that.now().UTC()

		granted, err := that.repo.GrantAchievement(ctx, userID, achievement)
		if err != nil {
			return unlocked, fmt.Errorf("could not grant achievement %s: %w", achievement.ID, err)
		}
		if granted {
			unlocked = append(unlocked, achievement)
		}
	}

	return unlocked, nil
}

func (that *profileService) GetProfile(ctx context.Context, user entity.User) (*entity.Profile, error) {
	stats, err := that.repo.GetStats(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get stats: %w", err)
	}

	achievements, err := that.repo.ListAchievements(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list achievements: %w", err)
	}

	history, err := that.repo.ListHistory(ctx, user.ID, ProfileHistorySize)
	if err != nil {
		return nil, fmt.Errorf("could not list history: %w", err)
	}

	return &entity.Profile{
		User:         user,
		Stats:        stats,
		Level:        stats.Level(),
		Achievements: achievements,
		History:      history,
	}, nil
}
