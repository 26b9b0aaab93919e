package usecase

import (
	"log/slog"
	"slices"
	"time"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

type matchStarter interface {
	StartMatch(first, second entity.Participant, gameType entity.GameType) (*entity.Room, error)
}

// scheduler runs fn once after d, on the same event loop that owns the Matchmaker.
type scheduler interface {
	After(d time.Duration, fn func())
}

type QueueEntry struct {
	entity.Participant
	GameType entity.GameType
	QueuedAt time.Time
}

// Matchmaker - FIFO waiting list that pairs participants of the same game type into new rooms.
// Like Lobby it must only be used from one event loop.
type Matchmaker struct {
	logger        *slog.Logger
	starter       matchStarter
	notifier      notifier
	scheduler     scheduler
	retryInterval time.Duration

	queue        []QueueEntry
	draining     bool
	retryPending bool

	now func() time.Time
}

func NewMatchmaker(
	logger *slog.Logger,
	starter matchStarter,
	notifier notifier,
	scheduler scheduler,
	retryInterval time.Duration,
) *Matchmaker {
	return &Matchmaker{
		logger:        logger.With("component", "matchmaker"),
		starter:       starter,
		notifier:      notifier,
		scheduler:     scheduler,
		retryInterval: retryInterval,

		now: time.Now,
	}
}

// Enqueue - puts the participant at the back of the queue and tries to pair right away.
func (that *Matchmaker) Enqueue(participant entity.Participant, gameType entity.GameType) error {
	if that.indexOf(participant.ConnID) != -1 {
		return apperror.ErrAlreadyQueued
	}

	that.queue = append(that.queue, QueueEntry{
		Participant: participant,
		GameType:    gameType,
		QueuedAt:    that.now(),
	})

	that.notifier.Send(participant.ConnID, EventMatchmakingStarted, MessagePayload{
		Message: "Looking for an opponent...",
	})

	that.Drain()

	return nil
}

// Cancel - removes connID from the queue. Reports whether it was queued.
func (that *Matchmaker) Cancel(connID string) bool {
	i := that.indexOf(connID)
	if i == -1 {
		return false
	}

	that.queue = slices.Delete(that.queue, i, i+1)

	return true
}

// Withdraw - client initiated cancel; always acknowledged.
func (that *Matchmaker) Withdraw(connID string) {
	that.Cancel(connID)

	that.notifier.Send(connID, EventMatchmakingCancelled, MessagePayload{
		Message: "Matchmaking cancelled",
	})
}

// DequeuePair - the two oldest entries of gameType, removed from the queue.
func (that *Matchmaker) DequeuePair(gameType entity.GameType) (QueueEntry, QueueEntry, bool) {
	picked := make([]int, 0, 2)
	for i, entry := range that.queue {
		if entry.GameType == gameType {
			picked = append(picked, i)
			if len(picked) == 2 {
				break
			}
		}
	}

	if len(picked) < 2 {
		return QueueEntry{}, QueueEntry{}, false
	}

	first, second := that.queue[picked[0]], that.queue[picked[1]]
	that.queue = slices.Delete(that.queue, picked[1], picked[1]+1)
	that.queue = slices.Delete(that.queue, picked[0], picked[0]+1)

	return first, second, true
}

// Drain - pairs everything that can be paired. While entries remain a single retry is kept scheduled.
func (that *Matchmaker) Drain() {
	if that.draining {
		return
	}

	that.draining = true
	defer func() { that.draining = false }()

	that.purgeDisconnected()

	for _, gameType := range that.pendingTypes() {
		for {
			first, second, ok := that.DequeuePair(gameType)
			if !ok {
				break
			}

			if _, err := that.starter.StartMatch(first.Participant, second.Participant, gameType); err != nil {
				that.logger.Error("failed to start match", "gameType", gameType, "error", err)

				for _, entry := range []QueueEntry{first, second} {
					that.notifier.Send(entry.ConnID, EventError, MessagePayload{
						Message: "Could not start the match, please try again",
					})
				}
			}
		}
	}

	if len(that.queue) == 0 || that.retryPending {
		return
	}

	that.retryPending = true
	that.scheduler.After(that.retryInterval, func() {
		that.retryPending = false
		that.Drain()
	})
}

func (that *Matchmaker) Len() int {
	return len(that.queue)
}

func (that *Matchmaker) IsQueued(connID string) bool {
	return that.indexOf(connID) != -1
}

func (that *Matchmaker) purgeDisconnected() {
	that.queue = slices.DeleteFunc(that.queue, func(entry QueueEntry) bool {
		if that.notifier.IsConnected(entry.ConnID) {
			return false
		}

		that.logger.Info("dropping stale queue entry", "connID", entry.ConnID)

		return true
	})
}

// pendingTypes - game types present in the queue, in order of their oldest entry.
func (that *Matchmaker) pendingTypes() []entity.GameType {
	var types []entity.GameType
	for _, entry := range that.queue {
		if !slices.Contains(types, entry.GameType) {
			types = append(types, entry.GameType)
		}
	}
	return types
}

func (that *Matchmaker) indexOf(connID string) int {
	return slices.IndexFunc(that.queue, func(entry QueueEntry) bool {
		return entry.ConnID == connID
	})
}
