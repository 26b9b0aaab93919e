package usecase

import "github.com/rocketscienceinc/gameverse-backend/internal/entity"

// Outbound event names.
const (
	EventRoomCreated          = "roomCreated"
	EventGameStart            = "gameStart"
	EventGameUpdate           = "gameUpdate"
	EventGameReset            = "gameReset"
	EventPlayerLeft           = "playerLeft"
	EventSpectatorJoined      = "spectatorJoined"
	EventSpectatorLeft        = "spectatorLeft"
	EventJoinError            = "joinError"
	EventError                = "error"
	EventRematchRequested     = "rematchRequested"
	EventRematchAccepted      = "rematchAccepted"
	EventAchievementUnlocked  = "achievementUnlocked"
	EventMatchmakingStarted   = "matchmakingStarted"
	EventMatchmakingCancelled = "matchmakingCancelled"
	EventChatMessage          = "chatMessage"
	EventTyping               = "typing"
	EventAuthenticated        = "authenticated"
)

type MessagePayload struct {
	Message string `json:"message"`
}

type RoomCreatedPayload struct {
	RoomID       string           `json:"roomId"`
	GameType     entity.GameType  `json:"gameType"`
	GameState    entity.GameState `json:"gameState"`
	Mode         string           `json:"mode"`
	PlayerSymbol string           `json:"playerSymbol"`
	RoomName     string           `json:"roomName"`
}

type PlayerView struct {
	Username string `json:"username"`
	Symbol   string `json:"symbol"`
}

// GameStartPayload - sent to every member on start; a spectator gets IsSpectator and no symbol.
type GameStartPayload struct {
	RoomID       string           `json:"roomId"`
	GameType     entity.GameType  `json:"gameType"`
	GameState    entity.GameState `json:"gameState"`
	PlayerSymbol string           `json:"playerSymbol,omitempty"`
	Opponent     string           `json:"opponent,omitempty"`
	IsSpectator  bool             `json:"isSpectator"`
	Players      []PlayerView     `json:"players"`
}

type GameUpdatePayload struct {
	GameState entity.GameState `json:"gameState"`
	Move      int              `json:"move"`
	PlayerID  string           `json:"playerId"`
	Winner    string           `json:"winner,omitempty"`
	Pattern   []int            `json:"pattern,omitempty"`
	IsDraw    bool             `json:"isDraw"`
}

type GameResetPayload struct {
	GameState entity.GameState `json:"gameState"`
}

type SpectatorPayload struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
}

type ChatPayload struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type TypingPayload struct {
	Username string `json:"username"`
}

type RematchPayload struct {
	From string `json:"from"`
}

type AchievementPayload struct {
	Achievement entity.Achievement `json:"achievement"`
}

func playerViews(room *entity.Room) []PlayerView {
	views := make([]PlayerView, 0, len(room.Players))
	for _, player := range room.Players {
		views = append(views, PlayerView{Username: player.Username, Symbol: player.Symbol})
	}
	return views
}
