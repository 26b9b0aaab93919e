package game

import (
	"slices"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

const TicTacToeCells = 9

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func applyTicTacToe(state entity.GameState, symbol string, cell int) (entity.GameState, int, error) {
	if err := checkCell(state.Board, cell); err != nil {
		return state, 0, err
	}

	if state.Board[cell] != entity.EmptyCell {
		return state, 0, apperror.ErrCellOccupied
	}

	next := state.Clone()
	next.Board[cell] = symbol
	settle(&next, symbol, TicTacToeLine(next.Board, cell))

	return next, cell, nil
}

// TicTacToeLine - the winning triple through lastMove, or nil.
func TicTacToeLine(board []string, lastMove int) []int {
	if lastMove < 0 || lastMove >= len(board) || board[lastMove] == entity.EmptyCell {
		return nil
	}

	for _, combo := range WinCombos {
		if !slices.Contains(combo[:], lastMove) {
			continue
		}

		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return []int{combo[0], combo[1], combo[2]}
		}
	}

	return nil
}
