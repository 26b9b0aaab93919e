package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
)

// Inbound actions.
const (
	ActionCreateRoom        = "createRoom"
	ActionJoinRoom          = "joinRoom"
	ActionGameMove          = "gameMove"
	ActionResetGame         = "resetGame"
	ActionChatMessage       = "chatMessage"
	ActionTyping            = "typing"
	ActionRequestRematch    = "requestRematch"
	ActionAcceptRematch     = "acceptRematch"
	ActionFindQuickMatch    = "findQuickMatch"
	ActionCancelMatchmaking = "cancelMatchmaking"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outgoing struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

// intent is a decoded client request. The set is closed: dispatch switches over every implementation.
type intent interface {
	action() string
}

type createRoomIntent struct {
	GameType string `json:"gameType"`
	Mode     string `json:"mode"`
}

type joinRoomIntent struct {
	RoomID string `json:"roomId"`
}

// gameMoveIntent - the symbol a client claims is ignored, the seat decides.
type gameMoveIntent struct {
	RoomID       string `json:"roomId"`
	Move         *int   `json:"move"`
	PlayerSymbol string `json:"playerSymbol"`
}

type resetGameIntent struct {
	RoomID string `json:"roomId"`
}

type chatMessageIntent struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type typingIntent struct {
	RoomID string `json:"roomId"`
}

type requestRematchIntent struct {
	RoomID string `json:"roomId"`
}

type acceptRematchIntent struct {
	RoomID string `json:"roomId"`
}

type findQuickMatchIntent struct {
	GameType string `json:"gameType"`
}

type cancelMatchmakingIntent struct{}

func (*createRoomIntent) action() string        { return ActionCreateRoom }
func (*joinRoomIntent) action() string          { return ActionJoinRoom }
func (*gameMoveIntent) action() string          { return ActionGameMove }
func (*resetGameIntent) action() string         { return ActionResetGame }
func (*chatMessageIntent) action() string       { return ActionChatMessage }
func (*typingIntent) action() string            { return ActionTyping }
func (*requestRematchIntent) action() string    { return ActionRequestRematch }
func (*acceptRematchIntent) action() string     { return ActionAcceptRematch }
func (*findQuickMatchIntent) action() string    { return ActionFindQuickMatch }
func (*cancelMatchmakingIntent) action() string { return ActionCancelMatchmaking }

// decodeIntent - parses a raw frame. The action is returned even when the payload is bad so the error can name it.
func decodeIntent(data []byte) (intent, string, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal message: %w", err)
	}

	var target intent
	switch msg.Action {
	case ActionCreateRoom:
		target = &createRoomIntent{}
	case ActionJoinRoom:
		target = &joinRoomIntent{}
	case ActionGameMove:
		target = &gameMoveIntent{}
	case ActionResetGame:
		target = &resetGameIntent{}
	case ActionChatMessage:
		target = &chatMessageIntent{}
	case ActionTyping:
		target = &typingIntent{}
	case ActionRequestRematch:
		target = &requestRematchIntent{}
	case ActionAcceptRematch:
		target = &acceptRematchIntent{}
	case ActionFindQuickMatch:
		target = &findQuickMatchIntent{}
	case ActionCancelMatchmaking:
		target = &cancelMatchmakingIntent{}
	default:
		return nil, msg.Action, fmt.Errorf("%w: %q", apperror.ErrUnknownAction, msg.Action)
	}

	if len(msg.Payload) > 0 && string(msg.Payload) != "null" {
		if err := json.Unmarshal(msg.Payload, target); err != nil {
			return nil, msg.Action, fmt.Errorf("failed to unmarshal %s payload: %w", msg.Action, err)
		}
	}

	if move, ok := target.(*gameMoveIntent); ok && move.Move == nil {
		return nil, msg.Action, fmt.Errorf("%w: move is required", apperror.ErrInvalidCell)
	}

	return target, msg.Action, nil
}

func encode(action string, payload any) ([]byte, error) {
	data, err := json.Marshal(outgoing{Action: action, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", action, err)
	}

	return data, nil
}
