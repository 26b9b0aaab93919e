package usecase

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
	"github.com/rocketscienceinc/gameverse-backend/internal/game"
	"github.com/rocketscienceinc/gameverse-backend/internal/pkg"
)

const maxRoomIDAttempts = 10

type roomRepo interface {
	Add(room *entity.Room) error
	GetByID(id string) (*entity.Room, error)
	Exists(id string) bool
	RemoveIfEmpty(id string) bool
	FindByConn(connID string) []*entity.Room
}

// notifier delivers one event to one connection. Delivery never blocks the caller.
type notifier interface {
	Send(connID, action string, payload any)
	IsConnected(connID string) bool
}

type outcomeRecorder interface {
	Record(result entity.GameResult)
}

// Lobby - owns room sessions: membership, turn order and the authoritative game state.
// It is not safe for concurrent use; every call must come from the same event loop.
type Lobby struct {
	logger   *slog.Logger
	rooms    roomRepo
	notifier notifier
	recorder outcomeRecorder
	rnd      *rand.Rand

	now       func() time.Time
	newRoomID func() string
}

func NewLobby(logger *slog.Logger, rooms roomRepo, notifier notifier, recorder outcomeRecorder, rnd *rand.Rand) *Lobby {
	return &Lobby{
		logger:   logger.With("component", "lobby"),
		rooms:    rooms,
		notifier: notifier,
		recorder: recorder,
		rnd:      rnd,

		now:       time.Now,
		newRoomID: pkg.GenerateRoomID,
	}
}

// CreateRoom - opens a room with the creator seated as X.
func (that *Lobby) CreateRoom(creator entity.Participant, gameType entity.GameType, mode string) (*entity.Room, error) {
	if mode == "" {
		mode = entity.ModeOnline
	}

	creator.Username = playerName(creator)

	room, err := that.openRoom(gameType, mode, &entity.Player{Participant: creator, Symbol: entity.PlayerX})
	if err != nil {
		return nil, err
	}

	room.Phase = entity.PhaseAwaitingOpponent

	that.notifier.Send(creator.ConnID, EventRoomCreated, RoomCreatedPayload{
		RoomID:       room.ID,
		GameType:     room.GameType,
		GameState:    room.State,
		Mode:         room.Mode,
		PlayerSymbol: entity.PlayerX,
		RoomName:     creator.Username + "'s game",
	})

	that.logger.Info("room created", "roomID", room.ID, "gameType", gameType)

	return room, nil
}

// JoinRoom - takes a free seat, or watches when both seats are taken.
func (that *Lobby) JoinRoom(participant entity.Participant, roomID string) (*entity.Room, error) {
	room, err := that.rooms.GetByID(roomID)
	if err != nil {
		return nil, err
	}

	if room.IsMember(participant.ConnID) {
		that.sendStart(room, participant.ConnID)
		return room, nil
	}

	if room.IsFull() {
		participant.Username = spectatorName(participant)
		room.Spectators = append(room.Spectators, &entity.Spectator{Participant: participant})

		that.sendStart(room, participant.ConnID)
		that.broadcast(room, EventSpectatorJoined, SpectatorPayload{
			Username: participant.Username,
			Count:    len(room.Spectators),
		})

		return room, nil
	}

	participant.Username = playerName(participant)
	room.Players = append(room.Players, &entity.Player{Participant: participant, Symbol: room.FreeSymbol()})

	if !room.IsFull() {
		room.Phase = entity.PhaseAwaitingOpponent
		that.sendStart(room, participant.ConnID)
		return room, nil
	}

	room.Phase = entity.PhaseInProgress
	if room.State.IsTerminal() {
		room.Phase = entity.PhaseConcluded
	}

	for _, connID := range room.ConnIDs() {
		that.sendStart(room, connID)
	}

	that.logger.Info("player joined", "roomID", room.ID)

	return room, nil
}

// StartMatch - a room for two matched participants, started right away.
func (that *Lobby) StartMatch(first, second entity.Participant, gameType entity.GameType) (*entity.Room, error) {
	first.Username = playerName(first)
	second.Username = playerName(second)

	room, err := that.openRoom(gameType, entity.ModeOnline,
		&entity.Player{Participant: first, Symbol: entity.PlayerX},
		&entity.Player{Participant: second, Symbol: entity.PlayerO},
	)
	if err != nil {
		return nil, err
	}

	room.Phase = entity.PhaseInProgress

	for _, connID := range room.ConnIDs() {
		that.sendStart(room, connID)
	}

	that.logger.Info("match started", "roomID", room.ID, "gameType", gameType)

	return room, nil
}

// Move - applies a move of the player behind connID and broadcasts the new snapshot.
func (that *Lobby) Move(connID, roomID string, move int) error {
	room, player, err := that.seatedPlayer(connID, roomID)
	if err != nil {
		return err
	}

	if !room.IsFull() {
		return apperror.ErrGameIsNotStarted
	}

	next, cell, err := game.Apply(room.GameType, room.State, player.Symbol, move)
	if err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	room.State = next

	that.broadcast(room, EventGameUpdate, GameUpdatePayload{
		GameState: room.State,
		Move:      cell,
		PlayerID:  player.Symbol,
		Winner:    room.State.Winner,
		Pattern:   room.State.WinningPattern,
		IsDraw:    room.State.IsDraw,
	})

	if room.State.IsTerminal() {
		room.Phase = entity.PhaseConcluded
		that.recordOutcome(room)
	}

	return nil
}

// Reset - starts the variant over for everyone in the room.
func (that *Lobby) Reset(connID, roomID string) error {
	room, _, err := that.seatedPlayer(connID, roomID)
	if err != nil {
		return err
	}

	return that.restart(room)
}

// RequestRematch - relays the proposal to the opponent.
func (that *Lobby) RequestRematch(connID, roomID string) error {
	room, player, err := that.seatedPlayer(connID, roomID)
	if err != nil {
		return err
	}

	if !room.State.IsTerminal() {
		return apperror.ErrGameInProgress
	}

	room.Phase = entity.PhaseAwaitingRematch
	room.RematchRequester = player.Symbol

	if opponent := room.Opponent(player); opponent != nil {
		that.notifier.Send(opponent.ConnID, EventRematchRequested, RematchPayload{From: player.Username})
	}

	return nil
}

// AcceptRematch - only the seat that did not ask can accept a pending request.
func (that *Lobby) AcceptRematch(connID, roomID string) error {
	room, player, err := that.seatedPlayer(connID, roomID)
	if err != nil {
		return err
	}

	if !room.State.IsTerminal() {
		return apperror.ErrGameInProgress
	}

	if room.Phase != entity.PhaseAwaitingRematch || room.RematchRequester == player.Symbol {
		return apperror.ErrNoRematchRequest
	}

	that.broadcast(room, EventRematchAccepted, RematchPayload{From: player.Username})

	return that.restart(room)
}

// Chat - relays a trimmed message to the whole room. Empty messages are dropped.
func (that *Lobby) Chat(connID, roomID, message string) error {
	room, name, err := that.member(connID, roomID)
	if err != nil {
		return err
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	that.broadcast(room, EventChatMessage, ChatPayload{
		Username:  name,
		Message:   message,
		Timestamp: that.now().UTC().Format(time.RFC3339),
	})

	return nil
}

// Typing - tells everybody but the sender that the sender is typing.
func (that *Lobby) Typing(connID, roomID string) error {
	room, name, err := that.member(connID, roomID)
	if err != nil {
		return err
	}

	for _, memberID := range room.ConnIDs() {
		if memberID == connID {
			continue
		}
		that.notifier.Send(memberID, EventTyping, TypingPayload{Username: name})
	}

	return nil
}

// IsPlaying - whether connID holds a seat in a game that is not over yet.
func (that *Lobby) IsPlaying(connID string) bool {
	for _, room := range that.rooms.FindByConn(connID) {
		if room.PlayerByConn(connID) != nil && !room.State.IsTerminal() {
			return true
		}
	}

	return false
}

// Leave - drops connID from every room it belongs to. An abandoned game is not scored.
func (that *Lobby) Leave(connID string) {
	for _, room := range that.rooms.FindByConn(connID) {
		if player := room.RemovePlayer(connID); player != nil {
			room.Phase = entity.PhaseAwaitingOpponent
			room.RematchRequester = ""

			that.broadcast(room, EventPlayerLeft, MessagePayload{
				Message: player.Username + " left the game",
			})
		}

		if spectator := room.RemoveSpectator(connID); spectator != nil {
			that.broadcast(room, EventSpectatorLeft, SpectatorPayload{
				Username: spectator.Username,
				Count:    len(room.Spectators),
			})
		}

		if that.rooms.RemoveIfEmpty(room.ID) {
			that.logger.Info("room closed", "roomID", room.ID)
		}
	}
}

func (that *Lobby) openRoom(gameType entity.GameType, mode string, players ...*entity.Player) (*entity.Room, error) {
	state, err := game.NewState(gameType, that.rnd)
	if err != nil {
		return nil, fmt.Errorf("failed to create game state: %w", err)
	}

	id, err := that.uniqueRoomID()
	if err != nil {
		return nil, err
	}

	room := &entity.Room{
		ID:        id,
		GameType:  gameType,
		Mode:      mode,
		Players:   players,
		State:     state,
		CreatedAt: that.now(),
	}

	if err = that.rooms.Add(room); err != nil {
		return nil, fmt.Errorf("failed to register room: %w", err)
	}

	return room, nil
}

func (that *Lobby) uniqueRoomID() (string, error) {
	for range maxRoomIDAttempts {
		if id := that.newRoomID(); !that.rooms.Exists(id) {
			return id, nil
		}
	}

	return "", fmt.Errorf("could not allocate room id after %d attempts", maxRoomIDAttempts)
}

func (that *Lobby) restart(room *entity.Room) error {
	state, err := game.NewState(room.GameType, that.rnd)
	if err != nil {
		return fmt.Errorf("failed to reset game state: %w", err)
	}

	room.State = state
	room.RematchRequester = ""
	room.Phase = entity.PhaseInProgress
	if !room.IsFull() {
		room.Phase = entity.PhaseAwaitingOpponent
	}

	that.broadcast(room, EventGameReset, GameResetPayload{GameState: room.State})

	return nil
}

// recordOutcome - hands the result of every identified player to the recorder. A win or loss only counts
// when both seats are identified; a draw goes to the history of each identified player.
func (that *Lobby) recordOutcome(room *entity.Room) {
	if room.State.HasWinner() && !bothIdentified(room) {
		that.logger.Info("outcome against a guest is not scored", "roomID", room.ID)
		return
	}

	for _, player := range room.Players {
		if player.IsGuest() {
			continue
		}

		opponentName := entity.GuestName
		if opponent := room.Opponent(player); opponent != nil {
			opponentName = opponent.Username
		}

		result := entity.ResultDraw
		switch {
		case room.State.Winner == player.Symbol:
			result = entity.ResultWin
		case room.State.HasWinner():
			result = entity.ResultLoss
		}

		that.recorder.Record(entity.GameResult{
			UserID:   player.UserID,
			GameType: room.GameType,
			Result:   result,
			Opponent: opponentName,
		})
	}
}

func bothIdentified(room *entity.Room) bool {
	if !room.IsFull() {
		return false
	}

	for _, player := range room.Players {
		if player.IsGuest() {
			return false
		}
	}

	return true
}

func (that *Lobby) seatedPlayer(connID, roomID string) (*entity.Room, *entity.Player, error) {
	room, err := that.rooms.GetByID(roomID)
	if err != nil {
		return nil, nil, err
	}

	player := room.PlayerByConn(connID)
	if player == nil {
		return nil, nil, apperror.ErrNotInRoom
	}

	return room, player, nil
}

func (that *Lobby) member(connID, roomID string) (*entity.Room, string, error) {
	room, err := that.rooms.GetByID(roomID)
	if err != nil {
		return nil, "", err
	}

	if player := room.PlayerByConn(connID); player != nil {
		return room, player.Username, nil
	}

	for _, spectator := range room.Spectators {
		if spectator.ConnID == connID {
			return room, spectator.Username, nil
		}
	}

	return nil, "", apperror.ErrNotInRoom
}

// sendStart - the full room snapshot from the point of view of connID.
func (that *Lobby) sendStart(room *entity.Room, connID string) {
	payload := GameStartPayload{
		RoomID:    room.ID,
		GameType:  room.GameType,
		GameState: room.State,
		Players:   playerViews(room),
	}

	if player := room.PlayerByConn(connID); player != nil {
		payload.PlayerSymbol = player.Symbol
		if opponent := room.Opponent(player); opponent != nil {
			payload.Opponent = opponent.Username
		}
	} else {
		payload.IsSpectator = true
	}

	that.notifier.Send(connID, EventGameStart, payload)
}

func (that *Lobby) broadcast(room *entity.Room, action string, payload any) {
	for _, connID := range room.ConnIDs() {
		that.notifier.Send(connID, action, payload)
	}
}

func playerName(participant entity.Participant) string {
	if participant.Username == "" {
		return entity.GuestName
	}
	return participant.Username
}

func spectatorName(participant entity.Participant) string {
	if participant.Username == "" {
		return entity.SpectatorName
	}
	return participant.Username
}
