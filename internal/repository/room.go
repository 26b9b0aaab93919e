package repository

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

// RoomRepository - the registry of live rooms. Rooms are never persisted: a restart drops them.
type RoomRepository interface {
	Add(room *entity.Room) error
	GetByID(id string) (*entity.Room, error)
	Exists(id string) bool
	DeleteByID(id string)
	RemoveIfEmpty(id string) bool
	FindByConn(connID string) []*entity.Room
	Count() int
}

// memoryRooms is not safe for concurrent use; it is owned by the gateway event loop.
type memoryRooms struct {
	rooms map[string]*entity.Room
}

func NewRoomRepository() RoomRepository {
	return &memoryRooms{
		rooms: make(map[string]*entity.Room),
	}
}

func (that *memoryRooms) Add(room *entity.Room) error {
	if _, ok := that.rooms[room.ID]; ok {
		return fmt.Errorf("room %s already exists", room.ID)
	}

	that.rooms[room.ID] = room

	return nil
}

func (that *memoryRooms) GetByID(id string) (*entity.Room, error) {
	room, ok := that.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	return room, nil
}

func (that *memoryRooms) Exists(id string) bool {
	_, ok := that.rooms[id]
	return ok
}

func (that *memoryRooms) DeleteByID(id string) {
	delete(that.rooms, id)
}

// RemoveIfEmpty - deletes the room when nobody is left in it and reports whether it did.
func (that *memoryRooms) RemoveIfEmpty(id string) bool {
	room, ok := that.rooms[id]
	if !ok || !room.IsEmpty() {
		return false
	}

	delete(that.rooms, id)

	return true
}

// FindByConn - rooms where connID is a player or a spectator, oldest first.
func (that *memoryRooms) FindByConn(connID string) []*entity.Room {
	var found []*entity.Room

	for _, room := range that.rooms {
		if room.IsMember(connID) {
			found = append(found, room)
		}
	}

	slices.SortFunc(found, func(a, b *entity.Room) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return found
}

func (that *memoryRooms) Count() int {
	return len(that.rooms)
}
