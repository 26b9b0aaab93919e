package websocket

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
)

func TestDecodeIntent(t *testing.T) {
	t.Run("Every action decodes to its intent", func(t *testing.T) {
		move := 4

		tests := []struct {
			raw  string
			want intent
		}{
			{`{"action":"createRoom","payload":{"gameType":"memory","mode":"local"}}`, &createRoomIntent{GameType: "memory", Mode: "local"}},
			{`{"action":"joinRoom","payload":{"roomId":"AB12CD34"}}`, &joinRoomIntent{RoomID: "AB12CD34"}},
			{`{"action":"gameMove","payload":{"roomId":"R","move":4,"playerSymbol":"O"}}`, &gameMoveIntent{RoomID: "R", Move: &move, PlayerSymbol: "O"}},
			{`{"action":"resetGame","payload":{"roomId":"R"}}`, &resetGameIntent{RoomID: "R"}},
			{`{"action":"chatMessage","payload":{"roomId":"R","message":"gg"}}`, &chatMessageIntent{RoomID: "R", Message: "gg"}},
			{`{"action":"typing","payload":{"roomId":"R"}}`, &typingIntent{RoomID: "R"}},
			{`{"action":"requestRematch","payload":{"roomId":"R"}}`, &requestRematchIntent{RoomID: "R"}},
			{`{"action":"acceptRematch","payload":{"roomId":"R"}}`, &acceptRematchIntent{RoomID: "R"}},
			{`{"action":"findQuickMatch","payload":{"gameType":"connect-four"}}`, &findQuickMatchIntent{GameType: "connect-four"}},
			{`{"action":"cancelMatchmaking"}`, &cancelMatchmakingIntent{}},
		}

		for _, tt := range tests {
			got, action, err := decodeIntent([]byte(tt.raw))

			require.NoError(t, err, tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.action(), action)
		}
	})

	t.Run("Unknown action is rejected with its name", func(t *testing.T) {
		_, action, err := decodeIntent([]byte(`{"action":"fly"}`))

		assert.ErrorIs(t, err, apperror.ErrUnknownAction)
		assert.Equal(t, "fly", action)
	})

	t.Run("Malformed frame is rejected", func(t *testing.T) {
		_, _, err := decodeIntent([]byte(`not json`))

		assert.Error(t, err)
	})

	t.Run("Payload of the wrong shape is rejected", func(t *testing.T) {
		_, action, err := decodeIntent([]byte(`{"action":"gameMove","payload":{"roomId":"R","move":"four"}}`))

		assert.Error(t, err)
		assert.Equal(t, ActionGameMove, action)
	})

	t.Run("Move without a cell is invalid", func(t *testing.T) {
		_, _, err := decodeIntent([]byte(`{"action":"gameMove","payload":{"roomId":"R"}}`))

		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("Query parameter wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
		req.Header.Set("Authorization", "Bearer from-header")

		assert.Equal(t, "from-query", tokenFromRequest(req))
	})

	t.Run("Bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.Header.Set("Authorization", "Bearer from-header")

		assert.Equal(t, "from-header", tokenFromRequest(req))
	})

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: "from-cookie"})

		assert.Equal(t, "from-cookie", tokenFromRequest(req))
	})

	t.Run("Nothing means guest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.Header.Set("Authorization", "Basic abc")

		assert.Empty(t, tokenFromRequest(req))
	})
}

func TestClientMessage(t *testing.T) {
	assert.Equal(t, "This column is full", clientMessage(apperror.ErrColumnFull))
	assert.Equal(t, "This cell is already taken", clientMessage(apperror.ErrCellOccupied))
	assert.Equal(t, "There is no rematch request to accept", clientMessage(apperror.ErrNoRematchRequest))
	assert.Equal(t, "Something went wrong", clientMessage(assert.AnError))
}
