package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

type resultApplier interface {
	ApplyResult(ctx context.Context, result entity.GameResult) ([]entity.Achievement, error)
}

// UnlockFunc - called from a worker goroutine for every newly unlocked achievement.
type UnlockFunc func(userID string, achievement entity.Achievement)

// Recorder - bounded background queue for game outcomes. Record never blocks: when the queue is full
// the result is dropped and logged. Failures are logged and never reach the players.
type Recorder struct {
	logger   *slog.Logger
	profiles resultApplier
	onUnlock UnlockFunc

	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	tasks  chan entity.GameResult
	wg     sync.WaitGroup
}

func NewRecorder(logger *slog.Logger, profiles resultApplier, workers, queueSize int, timeout time.Duration) *Recorder {
	return &Recorder{
		logger:   logger.With("component", "recorder"),
		profiles: profiles,
		onUnlock: func(string, entity.Achievement) {},

		workers: max(workers, 1),
		timeout: timeout,

		tasks: make(chan entity.GameResult, max(queueSize, 1)),
	}
}

// OnUnlock - must be set before Start.
func (that *Recorder) OnUnlock(fn UnlockFunc) {
	that.onUnlock = fn
}

// Start - launches the workers. Tasks still queued at Stop are finished even if ctx is already cancelled.
func (that *Recorder) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	for range that.workers {
		that.wg.Add(1)
		go func() {
			defer that.wg.Done()

			for result := range that.tasks {
				that.apply(ctx, result)
			}
		}()
	}
}

func (that *Recorder) Record(result entity.GameResult) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.closed {
		that.logger.Warn("recorder stopped, result dropped", "userID", result.UserID, "result", result.Result)
		return
	}

	select {
	case that.tasks <- result:
	default:
		that.logger.Error("recorder queue is full, result dropped", "userID", result.UserID, "result", result.Result)
	}
}

// Stop - stops accepting results and waits for the queued ones.
func (that *Recorder) Stop() {
	that.mu.Lock()
	if !that.closed {
		that.closed = true
		close(that.tasks)
	}
	that.mu.Unlock()

	that.wg.Wait()
}

func (that *Recorder) apply(ctx context.Context, result entity.GameResult) {
	log := that.logger.With("userID", result.UserID, "gameType", result.GameType, "result", result.Result)

	ctx, cancel := context.WithTimeout(ctx, that.timeout)
	defer cancel()

	unlocked, err := that.profiles.ApplyResult(ctx, result)
	if err != nil {
		log.Error("failed to record game result", "error", err)
	}

	for _, achievement := range unlocked {
		log.Info("achievement unlocked", "achievement", achievement.ID)
		that.onUnlock(result.UserID, achievement)
	}
}
