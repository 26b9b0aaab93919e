package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

const retryInterval = 5 * time.Second

type mockStarter struct {
	mock.Mock
}

func (that *mockStarter) StartMatch(first, second entity.Participant, gameType entity.GameType) (*entity.Room, error) {
	args := that.Called(first, second, gameType)
	room, _ := args.Get(0).(*entity.Room)
	return room, args.Error(1)
}

type matchmakerFixture struct {
	matchmaker *Matchmaker
	starter    *mockStarter
	notifier   *fakeNotifier
	scheduler  *fakeScheduler
}

func newMatchmakerFixture(t *testing.T) *matchmakerFixture {
	t.Helper()

	starter := &mockStarter{}
	t.Cleanup(func() { starter.AssertExpectations(t) })

	notifier := newFakeNotifier()
	scheduler := &fakeScheduler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &matchmakerFixture{
		matchmaker: NewMatchmaker(logger, starter, notifier, scheduler, retryInterval),
		starter:    starter,
		notifier:   notifier,
		scheduler:  scheduler,
	}
}

func TestMatchmaker_Enqueue(t *testing.T) {
	t.Run("Lonely entry waits and a retry is scheduled", func(t *testing.T) {
		fx := newMatchmakerFixture(t)

		// When: one participant looks for a match
		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameTicTacToe))

		// Then: they are told and stay queued
		assert.Len(t, fx.notifier.received("a", EventMatchmakingStarted), 1)
		assert.True(t, fx.matchmaker.IsQueued("a"))
		assert.Equal(t, []time.Duration{retryInterval}, fx.scheduler.delays)
	})

	t.Run("Duplicate connection is rejected", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameTicTacToe))

		err := fx.matchmaker.Enqueue(guest("a"), entity.GameConnectFour)

		require.ErrorIs(t, err, apperror.ErrAlreadyQueued)
		assert.Equal(t, 1, fx.matchmaker.Len())
	})

	t.Run("Two entries of one type are paired immediately", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		fx.starter.On("StartMatch", guest("a"), guest("b"), entity.GameConnectFour).
			Return(&entity.Room{ID: "R1"}, nil).
			Once()

		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameConnectFour))
		require.NoError(t, fx.matchmaker.Enqueue(guest("b"), entity.GameConnectFour))

		assert.Zero(t, fx.matchmaker.Len())
	})

	t.Run("Different game types are not paired", func(t *testing.T) {
		fx := newMatchmakerFixture(t)

		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameConnectFour))
		require.NoError(t, fx.matchmaker.Enqueue(guest("b"), entity.GameMemory))

		assert.Equal(t, 2, fx.matchmaker.Len())
		fx.starter.AssertNotCalled(t, "StartMatch", mock.Anything, mock.Anything, mock.Anything)
		assert.Len(t, fx.scheduler.pending, 1, "only one retry is kept scheduled")
	})
}

func TestMatchmaker_DequeuePair(t *testing.T) {
	t.Run("Oldest two of the type, in order", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		fx.matchmaker.queue = []QueueEntry{
			{Participant: guest("a"), GameType: entity.GameTicTacToe},
			{Participant: guest("x"), GameType: entity.GameMemory},
			{Participant: guest("b"), GameType: entity.GameTicTacToe},
			{Participant: guest("c"), GameType: entity.GameTicTacToe},
			{Participant: guest("d"), GameType: entity.GameTicTacToe},
		}

		first, second, ok := fx.matchmaker.DequeuePair(entity.GameTicTacToe)

		require.True(t, ok)
		assert.Equal(t, "a", first.ConnID)
		assert.Equal(t, "b", second.ConnID)

		var left []string
		for _, entry := range fx.matchmaker.queue {
			left = append(left, entry.ConnID)
		}
		assert.Equal(t, []string{"x", "c", "d"}, left)
	})

	t.Run("Not enough entries", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		fx.matchmaker.queue = []QueueEntry{{Participant: guest("a"), GameType: entity.GameTicTacToe}}

		_, _, ok := fx.matchmaker.DequeuePair(entity.GameTicTacToe)

		assert.False(t, ok)
		assert.Equal(t, 1, fx.matchmaker.Len())
	})
}

func TestMatchmaker_Drain(t *testing.T) {
	t.Run("FIFO pairing across the whole queue", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		fx.matchmaker.queue = []QueueEntry{
			{Participant: guest("a"), GameType: entity.GameTicTacToe},
			{Participant: guest("b"), GameType: entity.GameTicTacToe},
			{Participant: guest("c"), GameType: entity.GameTicTacToe},
			{Participant: guest("d"), GameType: entity.GameTicTacToe},
		}

		first := fx.starter.On("StartMatch", guest("a"), guest("b"), entity.GameTicTacToe).
			Return(&entity.Room{ID: "R1"}, nil).Once()
		fx.starter.On("StartMatch", guest("c"), guest("d"), entity.GameTicTacToe).
			Return(&entity.Room{ID: "R2"}, nil).Once().NotBefore(first)

		fx.matchmaker.Drain()

		assert.Zero(t, fx.matchmaker.Len())
		assert.Empty(t, fx.scheduler.pending, "nothing to retry on an empty queue")
	})

	t.Run("Retry purges dead connections", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameTicTacToe))
		require.Len(t, fx.scheduler.pending, 1)

		// Given: the waiting connection went away
		fx.notifier.offline["a"] = true

		// When: the retry fires
		fx.scheduler.fire()

		// Then: the entry is gone and the drain halts
		assert.Zero(t, fx.matchmaker.Len())
		assert.Empty(t, fx.scheduler.pending)
	})

	t.Run("Retry keeps rescheduling while entries remain", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameTicTacToe))

		fx.scheduler.fire()
		fx.scheduler.fire()

		assert.True(t, fx.matchmaker.IsQueued("a"))
		assert.Len(t, fx.scheduler.delays, 3)
		assert.Len(t, fx.scheduler.pending, 1)
	})

	t.Run("Failed start tells both players and the queue moves on", func(t *testing.T) {
		// Given: the room for the pair cannot be opened
		fx := newMatchmakerFixture(t)
		fx.starter.On("StartMatch", guest("a"), guest("b"), entity.GameMemory).
			Return(nil, apperror.ErrUnknownGameType).Once()

		// When: the pair is formed
		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameMemory))
		require.NoError(t, fx.matchmaker.Enqueue(guest("b"), entity.GameMemory))

		// Then: neither stays queued and both get an error to act on
		assert.Zero(t, fx.matchmaker.Len())
		for _, connID := range []string{"a", "b"} {
			errs := fx.notifier.received(connID, EventError)
			require.Len(t, errs, 1)
			assert.Equal(t, MessagePayload{Message: "Could not start the match, please try again"}, errs[0].Payload)
		}

		// And: they may queue again
		fx.starter.On("StartMatch", guest("a"), guest("b"), entity.GameTicTacToe).
			Return(&entity.Room{ID: "R1"}, nil).Once()
		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameTicTacToe))
		require.NoError(t, fx.matchmaker.Enqueue(guest("b"), entity.GameTicTacToe))
		assert.Zero(t, fx.matchmaker.Len())
	})
}

func TestMatchmaker_Cancel(t *testing.T) {
	t.Run("Cancel is idempotent", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameTicTacToe))

		assert.True(t, fx.matchmaker.Cancel("a"))
		assert.False(t, fx.matchmaker.Cancel("a"))
		assert.Zero(t, fx.matchmaker.Len())
	})

	t.Run("Withdraw always acknowledges", func(t *testing.T) {
		fx := newMatchmakerFixture(t)

		fx.matchmaker.Withdraw("a")

		assert.Len(t, fx.notifier.received("a", EventMatchmakingCancelled), 1)
	})

	t.Run("Cancelled entry is never paired", func(t *testing.T) {
		fx := newMatchmakerFixture(t)
		fx.starter.On("StartMatch", guest("b"), guest("c"), entity.GameTicTacToe).
			Return(&entity.Room{ID: "R1"}, nil).Once()

		require.NoError(t, fx.matchmaker.Enqueue(guest("a"), entity.GameTicTacToe))
		require.True(t, fx.matchmaker.Cancel("a"))

		require.NoError(t, fx.matchmaker.Enqueue(guest("b"), entity.GameTicTacToe))
		require.NoError(t, fx.matchmaker.Enqueue(guest("c"), entity.GameTicTacToe))

		assert.Zero(t, fx.matchmaker.Len())
	})
}
