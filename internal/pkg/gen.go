package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const roomIDLength = 8

// GenerateRoomID - short upper-case room code that players can share.
func GenerateRoomID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:roomIDLength])
}

// GenerateConnID - generates a new unique connection id.
func GenerateConnID() string {
	return uuid.NewString()
}
