package usecase

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
	"github.com/rocketscienceinc/gameverse-backend/internal/repository"
)

var fixedNow = time.Date(2024, time.October, 1, 12, 0, 0, 0, time.UTC)

type sentEvent struct {
	ConnID  string
	Action  string
	Payload any
}

type fakeNotifier struct {
	events  []sentEvent
	offline map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{offline: make(map[string]bool)}
}

func (that *fakeNotifier) Send(connID, action string, payload any) {
	that.events = append(that.events, sentEvent{ConnID: connID, Action: action, Payload: payload})
}

func (that *fakeNotifier) IsConnected(connID string) bool {
	return !that.offline[connID]
}

// received - every event delivered to connID with the given action, oldest first.
func (that *fakeNotifier) received(connID, action string) []sentEvent {
	var found []sentEvent
	for _, event := range that.events {
		if event.ConnID == connID && event.Action == action {
			found = append(found, event)
		}
	}
	return found
}

func (that *fakeNotifier) reset() {
	that.events = nil
}

type mockRecorder struct {
	mock.Mock
}

func (that *mockRecorder) Record(result entity.GameResult) {
	that.Called(result)
}

type fakeScheduler struct {
	delays  []time.Duration
	pending []func()
}

func (that *fakeScheduler) After(d time.Duration, fn func()) {
	that.delays = append(that.delays, d)
	that.pending = append(that.pending, fn)
}

// fire - runs everything scheduled so far, the way the event loop would once the timers expire.
func (that *fakeScheduler) fire() {
	pending := that.pending
	that.pending = nil
	for _, fn := range pending {
		fn()
	}
}

type lobbyFixture struct {
	lobby    *Lobby
	rooms    repository.RoomRepository
	notifier *fakeNotifier
	recorder *mockRecorder
}

func newLobbyFixture(t *testing.T) *lobbyFixture {
	t.Helper()

	rooms := repository.NewRoomRepository()
	notifier := newFakeNotifier()
	recorder := &mockRecorder{}
	t.Cleanup(func() { recorder.AssertExpectations(t) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lobby := NewLobby(logger, rooms, notifier, recorder, rand.New(rand.NewPCG(1, 2)))

	seq := 0
	lobby.now = func() time.Time { return fixedNow }
	lobby.newRoomID = func() string {
		seq++
		return fmt.Sprintf("ROOM%d", seq)
	}

	return &lobbyFixture{
		lobby:    lobby,
		rooms:    rooms,
		notifier: notifier,
		recorder: recorder,
	}
}

func guest(connID string) entity.Participant {
	return entity.Participant{ConnID: connID}
}

func user(connID, userID, name string) entity.Participant {
	return entity.Participant{ConnID: connID, UserID: userID, Username: name}
}
