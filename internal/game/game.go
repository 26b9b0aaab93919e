// Package game holds the rule engines. Every function is pure: it takes a snapshot and returns a new one.
package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

// NewState - the empty initial state of a variant. rnd only matters for memory; nil uses the global source.
func NewState(gameType entity.GameType, rnd *rand.Rand) (entity.GameState, error) {
	switch gameType {
	case entity.GameTicTacToe:
		return newBoardState(TicTacToeCells), nil
	case entity.GameConnectFour:
		return newBoardState(ConnectFourCells), nil
	case entity.GameMemory:
		return newMemoryState(rnd), nil
	default:
		return entity.GameState{}, fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, gameType)
	}
}

// Apply - validates and applies one move by symbol. It returns the next state and the cell that was written.
// On error the input state is returned untouched.
func Apply(gameType entity.GameType, state entity.GameState, symbol string, move int) (entity.GameState, int, error) {
	if state.IsTerminal() {
		return state, 0, apperror.ErrGameAlreadyOver
	}

	if state.CurrentPlayer != symbol {
		return state, 0, apperror.ErrNotYourTurn
	}

	switch gameType {
	case entity.GameTicTacToe:
		return applyTicTacToe(state, symbol, move)
	case entity.GameConnectFour:
		return applyConnectFour(state, symbol, move)
	case entity.GameMemory:
		return applyMemory(state, symbol, move)
	default:
		return state, 0, fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, gameType)
	}
}

func newBoardState(cells int) entity.GameState {
	board := make([]string, cells)
	for i := range board {
		board[i] = entity.EmptyCell
	}

	return entity.GameState{
		Board:         board,
		CurrentPlayer: entity.PlayerX,
	}
}

// settle - shared terminal check of the board games: win by line, draw on a full board, turn always passes.
func settle(state *entity.GameState, symbol string, line []int) {
	state.CurrentPlayer = entity.OtherSymbol(symbol)

	switch {
	case line != nil:
		state.Winner = symbol
		state.WinningPattern = line
		state.GameOver = true
	case isBoardFull(state.Board):
		state.IsDraw = true
		state.GameOver = true
	}
}

func isBoardFull(board []string) bool {
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return false
		}
	}
	return true
}

func checkCell(board []string, cell int) error {
	if cell < 0 || cell >= len(board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}
	return nil
}
