package entity

import "time"

const (
	ResultWin  = "win"
	ResultLoss = "lose"
	ResultDraw = "draw"

	maxLevel = 50
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Level - one level per ten games played plus one per five wins, capped at 50.
func (that Stats) Level() int {
	level := (that.Wins+that.Losses)/10 + 1 + that.Wins/5
	return min(level, maxLevel)
}

type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt,omitempty"`
}

type HistoryEntry struct {
	GameType GameType  `json:"gameType"`
	Result   string    `json:"result"`
	Opponent string    `json:"opponent"`
	PlayedAt time.Time `json:"playedAt"`
}

// GameResult - one participant's share of a concluded match, handed to the outcome recorder.
type GameResult struct {
	UserID   string
	GameType GameType
	Result   string
	Opponent string
}

// Profile - everything the profile page shows about one user.
type Profile struct {
	User         User           `json:"user"`
	Stats        Stats          `json:"stats"`
	Level        int            `json:"level"`
	Achievements []Achievement  `json:"achievements"`
	History      []HistoryEntry `json:"history"`
}
