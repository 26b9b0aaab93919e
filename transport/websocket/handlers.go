package websocket

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
	"github.com/rocketscienceinc/gameverse-backend/internal/usecase"
)

// event - everything the loop reacts to.
type event interface {
	isEvent()
}

type connected struct {
	client  *client
	authErr error
}

type received struct {
	client *client
	intent intent
}

type rejected struct {
	client *client
	action string
	err    error
}

type disconnected struct {
	client *client
}

type scheduled struct {
	fn func()
}

type unlocked struct {
	userID      string
	achievement entity.Achievement
}

func (connected) isEvent()    {}
func (received) isEvent()     {}
func (rejected) isEvent()     {}
func (disconnected) isEvent() {}
func (scheduled) isEvent()    {}
func (unlocked) isEvent()     {}

type AuthenticatedPayload struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// clientMessages - what a player sees for each failure; the first match wins.
var clientMessages = []struct {
	err     error
	message string
}{
	{apperror.ErrRoomNotFound, "Room not found"},
	{apperror.ErrNotYourTurn, "It's not your turn"},
	{apperror.ErrColumnFull, "This column is full"},
	{apperror.ErrCellOccupied, "This cell is already taken"},
	{apperror.ErrGameAlreadyOver, "The game is already over"},
	{apperror.ErrNotInRoom, "You are not in this room"},
	{apperror.ErrAlreadyQueued, "You are already looking for a match"},
	{apperror.ErrInvalidCredential, "Invalid token, playing as guest"},
	{apperror.ErrGameIsNotStarted, "Waiting for an opponent"},
	{apperror.ErrGameInProgress, "The game is still in progress"},
	{apperror.ErrInvalidCell, "Invalid move"},
	{apperror.ErrUnknownGameType, "Unknown game type"},
	{apperror.ErrUnknownAction, "Unknown action"},
	{apperror.ErrNoRematchRequest, "There is no rematch request to accept"},
	{apperror.ErrAlreadyPlaying, "Finish or leave your current game first"},
}

func clientMessage(err error) string {
	for _, known := range clientMessages {
		if errors.Is(err, known.err) {
			return known.message
		}
	}

	return "Something went wrong"
}

func (that *Server) handle(ev event) {
	switch ev := ev.(type) {
	case connected:
		that.handleConnected(ev)
	case received:
		if _, ok := that.clients[ev.client.id]; ok {
			that.dispatch(ev.client, ev.intent)
		}
	case rejected:
		that.reportError(ev.client, ev.action, ev.err)
	case disconnected:
		that.handleDisconnected(ev.client)
	case scheduled:
		ev.fn()
	case unlocked:
		for _, c := range that.clients {
			if c.participant.UserID == ev.userID {
				that.Send(c.id, usecase.EventAchievementUnlocked, usecase.AchievementPayload{Achievement: ev.achievement})
			}
		}
	}
}

func (that *Server) handleConnected(ev connected) {
	c := ev.client
	that.clients[c.id] = c

	if ev.authErr != nil {
		that.reportError(c, "", ev.authErr)
		return
	}

	if !c.participant.IsGuest() {
		that.Send(c.id, usecase.EventAuthenticated, AuthenticatedPayload{
			Message:  "Authenticated as " + c.participant.Username,
			Username: c.participant.Username,
		})
	}
}

// handleDisconnected - runs once per client: the queue entry goes first, then every room is left.
func (that *Server) handleDisconnected(c *client) {
	if _, ok := that.clients[c.id]; !ok {
		return
	}

	delete(that.clients, c.id)
	that.closeSend(c)

	that.matchmaker.Cancel(c.id)
	that.lobby.Leave(c.id)

	that.logger.Info("client disconnected", "connID", c.id)
}

func (that *Server) dispatch(c *client, in intent) {
	log := that.logger.With("method", "dispatch", "connID", c.id, "action", in.action())

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", "panic", r)
			that.reportError(c, in.action(), fmt.Errorf("panic: %v", r))
		}
	}()

	var err error
	switch in := in.(type) {
	case *createRoomIntent:
		err = that.handleCreateRoom(c, in)
	case *joinRoomIntent:
		err = that.handleJoinRoom(c, in)
	case *gameMoveIntent:
		err = that.lobby.Move(c.id, in.RoomID, *in.Move)
	case *resetGameIntent:
		err = that.lobby.Reset(c.id, in.RoomID)
	case *chatMessageIntent:
		err = that.lobby.Chat(c.id, in.RoomID, in.Message)
	case *typingIntent:
		err = that.lobby.Typing(c.id, in.RoomID)
	case *requestRematchIntent:
		err = that.lobby.RequestRematch(c.id, in.RoomID)
	case *acceptRematchIntent:
		err = that.lobby.AcceptRematch(c.id, in.RoomID)
	case *findQuickMatchIntent:
		err = that.handleFindQuickMatch(c, in)
	case *cancelMatchmakingIntent:
		that.matchmaker.Withdraw(c.id)
	default:
		err = fmt.Errorf("%w: %T", apperror.ErrUnknownAction, in)
	}

	if err != nil {
		that.reportError(c, in.action(), err)
	}
}

func (that *Server) handleCreateRoom(c *client, in *createRoomIntent) error {
	gameType, err := entity.ParseGameType(in.GameType)
	if err != nil {
		return err
	}

	that.leaveQueue(c)

	if _, err = that.lobby.CreateRoom(c.participant, gameType, in.Mode); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// handleJoinRoom - a missing room gets its own event so the client can go back to the lobby screen.
func (that *Server) handleJoinRoom(c *client, in *joinRoomIntent) error {
	room, err := that.lobby.JoinRoom(c.participant, in.RoomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.Send(c.id, usecase.EventJoinError, usecase.MessagePayload{Message: clientMessage(err)})
		return nil
	}
	if err != nil {
		return err
	}

	// watching is fine while queued, a seat is not
	if room.PlayerByConn(c.id) != nil {
		that.leaveQueue(c)
	}

	return nil
}

func (that *Server) handleFindQuickMatch(c *client, in *findQuickMatchIntent) error {
	gameType, err := entity.ParseGameType(in.GameType)
	if err != nil {
		return err
	}

	if that.lobby.IsPlaying(c.id) {
		return apperror.ErrAlreadyPlaying
	}

	return that.matchmaker.Enqueue(c.participant, gameType)
}

// leaveQueue - a client that takes a seat stops looking for a match.
func (that *Server) leaveQueue(c *client) {
	if that.matchmaker.IsQueued(c.id) {
		that.matchmaker.Withdraw(c.id)
	}
}

func (that *Server) reportError(c *client, action string, err error) {
	that.logger.Warn("request failed", "connID", c.id, "action", action, "error", err)
	that.Send(c.id, usecase.EventError, usecase.MessagePayload{Message: clientMessage(err)})
}
