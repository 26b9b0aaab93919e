package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrGameAlreadyOver   = errors.New("game is already over")
	ErrNotInRoom         = errors.New("you are not in this room")
	ErrAlreadyQueued     = errors.New("already waiting in the matchmaking queue")
	ErrInvalidCredential = errors.New("invalid credential")

	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameInProgress   = errors.New("game is still in progress")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrColumnFull       = fmt.Errorf("%w: column is full", ErrCellOccupied)
	ErrUnknownGameType  = errors.New("unknown game type")
	ErrUnknownAction    = errors.New("unknown action")
	ErrNotFound         = errors.New("not found")
	ErrNoRematchRequest = errors.New("no rematch request to accept")
	ErrAlreadyPlaying   = errors.New("already playing in another room")
)
