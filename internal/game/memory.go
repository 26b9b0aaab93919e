package game

import (
	"math/rand/v2"
	"slices"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

const MemoryCells = 16

var memorySymbols = [MemoryCells / 2]string{"🍎", "🍌", "🍒", "🍓", "🍊", "🍋", "🍉", "🍇"}

func newMemoryState(rnd *rand.Rand) entity.GameState {
	deck := make([]string, 0, MemoryCells)
	for _, symbol := range memorySymbols {
		deck = append(deck, symbol, symbol)
	}

	shuffle := rand.Shuffle
	if rnd != nil {
		shuffle = rnd.Shuffle
	}
	shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return entity.GameState{
		Board:         deck,
		CurrentPlayer: entity.PlayerX,
		Matched:       make([]bool, MemoryCells),
		Scores:        map[string]int{entity.PlayerX: 0, entity.PlayerO: 0},
	}
}

// applyMemory - one flip. The first flip of a turn is only recorded; the second resolves the pair:
// a match scores and keeps the turn, a miss passes it.
func applyMemory(state entity.GameState, symbol string, cell int) (entity.GameState, int, error) {
	if err := checkCell(state.Board, cell); err != nil {
		return state, 0, err
	}

	if state.Matched[cell] || slices.Contains(state.Flipped, cell) {
		return state, 0, apperror.ErrCellOccupied
	}

	next := state.Clone()
	next.Revealed = nil

	if len(next.Flipped) == 0 {
		next.Flipped = []int{cell}
		return next, cell, nil
	}

	first := next.Flipped[0]
	next.Flipped = nil
	next.Revealed = []int{first, cell}

	if next.Board[first] != next.Board[cell] {
		next.CurrentPlayer = entity.OtherSymbol(symbol)
		return next, cell, nil
	}

	next.Matched[first] = true
	next.Matched[cell] = true
	next.Scores[symbol]++

	if !slices.Contains(next.Matched, false) {
		concludeMemory(&next)
	}

	return next, cell, nil
}

func concludeMemory(state *entity.GameState) {
	state.GameOver = true

	x, o := state.Scores[entity.PlayerX], state.Scores[entity.PlayerO]
	switch {
	case x > o:
		state.Winner = entity.PlayerX
	case o > x:
		state.Winner = entity.PlayerO
	default:
		state.IsDraw = true
	}
}
