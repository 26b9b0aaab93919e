package entity

import "time"

const (
	ModeOnline = "online"

	GuestName     = "Guest"
	SpectatorName = "Spectator"
)

type Phase string

const (
	PhaseAwaitingOpponent Phase = "awaiting_opponent"
	PhaseInProgress       Phase = "in_progress"
	PhaseConcluded        Phase = "concluded"
	PhaseAwaitingRematch  Phase = "awaiting_rematch"
)

// Participant - a connection together with the identity verified at handshake. UserID is empty for guests.
type Participant struct {
	ConnID   string `json:"-"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username"`
}

func (that Participant) IsGuest() bool {
	return that.UserID == ""
}

type Player struct {
	Participant
	Symbol string `json:"symbol"`
}

type Spectator struct {
	Participant
}

type Room struct {
	ID         string       `json:"id"`
	GameType   GameType     `json:"gameType"`
	Mode       string       `json:"mode"`
	Players    []*Player    `json:"players"`
	Spectators []*Spectator `json:"spectators"`
	State      GameState    `json:"gameState"`
	Phase      Phase        `json:"phase"`
	CreatedAt  time.Time    `json:"createdAt"`

	// RematchRequester - symbol of the seat that asked for a rematch, set only while AwaitingRematch.
	RematchRequester string `json:"rematchRequester,omitempty"`
}

func (that *Room) PlayerByConn(connID string) *Player {
	for _, player := range that.Players {
		if player.ConnID == connID {
			return player
		}
	}
	return nil
}

func (that *Room) PlayerBySymbol(symbol string) *Player {
	for _, player := range that.Players {
		if player.Symbol == symbol {
			return player
		}
	}
	return nil
}

// Opponent - the other seated player, nil when the seat is vacant.
func (that *Room) Opponent(player *Player) *Player {
	for _, other := range that.Players {
		if other != player {
			return other
		}
	}
	return nil
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= 2
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0 && len(that.Spectators) == 0
}

func (that *Room) IsMember(connID string) bool {
	if that.PlayerByConn(connID) != nil {
		return true
	}
	return that.spectatorIndex(connID) != -1
}

// FreeSymbol - first symbol not held by a seated player; X before O.
func (that *Room) FreeSymbol() string {
	if that.PlayerBySymbol(PlayerX) == nil {
		return PlayerX
	}
	return PlayerO
}

// ConnIDs - every member connection, players first.
func (that *Room) ConnIDs() []string {
	ids := make([]string, 0, len(that.Players)+len(that.Spectators))
	for _, player := range that.Players {
		ids = append(ids, player.ConnID)
	}
	for _, spectator := range that.Spectators {
		ids = append(ids, spectator.ConnID)
	}
	return ids
}

func (that *Room) RemovePlayer(connID string) *Player {
	for i, player := range that.Players {
		if player.ConnID == connID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return player
		}
	}
	return nil
}

func (that *Room) RemoveSpectator(connID string) *Spectator {
	i := that.spectatorIndex(connID)
	if i == -1 {
		return nil
	}

	spectator := that.Spectators[i]
	that.Spectators = append(that.Spectators[:i], that.Spectators[i+1:]...)
	return spectator
}

func (that *Room) spectatorIndex(connID string) int {
	for i, spectator := range that.Spectators {
		if spectator.ConnID == connID {
			return i
		}
	}
	return -1
}
