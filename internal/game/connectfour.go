package game

import (
	"fmt"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

const (
	ConnectFourColumns = 7
	ConnectFourRows    = 6
	ConnectFourCells   = ConnectFourColumns * ConnectFourRows

	connectLength = 4
)

// horizontal, vertical, diagonal down-right, diagonal down-left
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// applyConnectFour - move is reduced to its column, so both column numbers and cell indices are accepted.
func applyConnectFour(state entity.GameState, symbol string, move int) (entity.GameState, int, error) {
	if err := checkCell(state.Board, move); err != nil {
		return state, 0, err
	}

	cell, err := DropCell(state.Board, move%ConnectFourColumns)
	if err != nil {
		return state, 0, err
	}

	next := state.Clone()
	next.Board[cell] = symbol
	settle(&next, symbol, ConnectFourLine(next.Board, cell))

	return next, cell, nil
}

// DropCell - the lowest empty cell of a column, scanning from the bottom row upward.
func DropCell(board []string, column int) (int, error) {
	if column < 0 || column >= ConnectFourColumns {
		return 0, fmt.Errorf("%w: column %d", apperror.ErrInvalidCell, column)
	}

	for row := ConnectFourRows - 1; row >= 0; row-- {
		cell := row*ConnectFourColumns + column
		if board[cell] == entity.EmptyCell {
			return cell, nil
		}
	}

	return 0, apperror.ErrColumnFull
}

// ConnectFourLine - four equal symbols through lastMove in one of the four directions, or nil.
// Only windows that contain lastMove are inspected.
func ConnectFourLine(board []string, lastMove int) []int {
	if lastMove < 0 || lastMove >= len(board) {
		return nil
	}

	symbol := board[lastMove]
	if symbol == entity.EmptyCell {
		return nil
	}

	row, col := lastMove/ConnectFourColumns, lastMove%ConnectFourColumns

	for _, dir := range directions {
		for offset := range connectLength {
			startRow, startCol := row-offset*dir[0], col-offset*dir[1]
			if line := lineFrom(board, symbol, startRow, startCol, dir); line != nil {
				return line
			}
		}
	}

	return nil
}

func lineFrom(board []string, symbol string, row, col int, dir [2]int) []int {
	line := make([]int, 0, connectLength)

	for step := range connectLength {
		r, c := row+step*dir[0], col+step*dir[1]
		if r < 0 || r >= ConnectFourRows || c < 0 || c >= ConnectFourColumns {
			return nil
		}

		cell := r*ConnectFourColumns + c
		if board[cell] != symbol {
			return nil
		}
		line = append(line, cell)
	}

	return line
}
