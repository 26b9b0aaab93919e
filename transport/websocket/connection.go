package websocket

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// client - one accepted socket. participant and sendClosed belong to the event loop,
// the pumps only touch conn and send.
type client struct {
	id          string
	conn        *websocket.Conn
	participant entity.Participant

	send       chan []byte
	sendClosed bool
}

func newClient(id string, conn *websocket.Conn, user entity.User, sendBuffer int) *client {
	return &client{
		id:   id,
		conn: conn,
		participant: entity.Participant{
			ConnID:   id,
			UserID:   user.ID,
			Username: user.Username,
		},
		send: make(chan []byte, max(sendBuffer, 1)),
	}
}

// readPump - decodes frames into intents and hands them to the loop. It reports the disconnect on exit.
func (that *client) readPump(server *Server) {
	log := server.logger.With("method", "readPump", "connID", that.id)

	defer func() {
		server.post(disconnected{client: that})
		_ = that.conn.Close()
	}()

	pongWait := server.opts.PingInterval + writeWait

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		in, action, err := decodeIntent(data)
		if err != nil {
			if !server.post(rejected{client: that, action: action, err: err}) {
				return
			}
			continue
		}

		if !server.post(received{client: that, intent: in}) {
			return
		}
	}
}

// writePump - the only writer of conn. Closing send ends it with a close frame.
func (that *client) writePump(server *Server) {
	log := server.logger.With("method", "writePump", "connID", that.id)

	ticker := time.NewTicker(server.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Warn("failed to write message", "error", err)
				}
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
