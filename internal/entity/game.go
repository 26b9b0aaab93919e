package entity

import (
	"fmt"
	"maps"
	"slices"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

type GameType string

const (
	GameTicTacToe   GameType = "tic-tac-toe"
	GameConnectFour GameType = "connect-four"
	GameMemory      GameType = "memory"
)

// ParseGameType - maps a wire name to a known game type. "checkers" is what older clients send for the memory board.
func ParseGameType(name string) (GameType, error) {
	switch GameType(name) {
	case GameTicTacToe, GameConnectFour, GameMemory:
		return GameType(name), nil
	case "checkers":
		return GameMemory, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, name)
	}
}

// GameState is the broadcastable snapshot of a match. Memory-only fields stay nil for board games.
type GameState struct {
	Board          []string `json:"board"`
	CurrentPlayer  string   `json:"currentPlayer"`
	GameOver       bool     `json:"gameOver"`
	Winner         string   `json:"winner,omitempty"`
	IsDraw         bool     `json:"isDraw"`
	WinningPattern []int    `json:"winningPattern,omitempty"`

	Matched  []bool         `json:"matched,omitempty"`
	Flipped  []int          `json:"flipped,omitempty"`
	Revealed []int          `json:"revealed,omitempty"`
	Scores   map[string]int `json:"scores,omitempty"`
}

func (that GameState) IsTerminal() bool {
	return that.GameOver
}

func (that GameState) HasWinner() bool {
	return that.Winner != ""
}

// Clone - returns a deep copy so rule engines never alias the previous snapshot.
func (that GameState) Clone() GameState {
	clone := that
	clone.Board = slices.Clone(that.Board)
	clone.WinningPattern = slices.Clone(that.WinningPattern)
	clone.Matched = slices.Clone(that.Matched)
	clone.Flipped = slices.Clone(that.Flipped)
	clone.Revealed = slices.Clone(that.Revealed)
	clone.Scores = maps.Clone(that.Scores)

	return clone
}

func OtherSymbol(symbol string) string {
	if symbol == PlayerX {
		return PlayerO
	}
	return PlayerX
}
