package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
	"github.com/rocketscienceinc/gameverse-backend/internal/pkg"
	"github.com/rocketscienceinc/gameverse-backend/internal/repository"
	"github.com/rocketscienceinc/gameverse-backend/internal/usecase"
)

const (
	inboxSize           = 256
	defaultPingInterval = 30 * time.Second
	tokenQueryParam     = "token"
	tokenCookieName     = "auth_token"
)

type authService interface {
	Verify(token string) (entity.User, error)
}

type outcomeRecorder interface {
	Record(result entity.GameResult)
}

type Options struct {
	SendBuffer    int
	PingInterval  time.Duration
	RetryInterval time.Duration
}

// Server - the connection gateway. Every room, queue and client mutation happens on the goroutine
// running Run; sockets, timers and the recorder only post events into the inbox.
type Server struct {
	logger   *slog.Logger
	auth     authService
	opts     Options
	upgrader websocket.Upgrader

	lobby      *usecase.Lobby
	matchmaker *usecase.Matchmaker
	clients    map[string]*client

	inbox chan event
	done  chan struct{}
}

func New(
	logger *slog.Logger,
	auth authService,
	rooms repository.RoomRepository,
	recorder outcomeRecorder,
	opts Options,
) *Server {
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}

	server := &Server{
		logger: logger.With("component", "gateway"),
		auth:   auth,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		clients: make(map[string]*client),

		inbox: make(chan event, inboxSize),
		done:  make(chan struct{}),
	}

	server.lobby = usecase.NewLobby(logger, rooms, server, recorder, nil)
	server.matchmaker = usecase.NewMatchmaker(logger, server.lobby, server, server, opts.RetryInterval)

	return server
}

// Router - the HTTP surface of the gateway.
func (that *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Get("/ws", that.ServeWS)

	return router
}

// Start - runs the event loop and serves WebSocket connections until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	go that.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Run - the event loop. It returns when ctx is cancelled and closes every client.
func (that *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, c := range that.clients {
				that.closeSend(c)
			}
			close(that.done)
			return
		case ev := <-that.inbox:
			that.handle(ev)
		}
	}
}

// ServeWS - upgrades the request. A bad credential does not refuse the socket, the client plays as a guest.
func (that *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeWS")

	var user entity.User
	var authErr error
	if token := tokenFromRequest(r); token != "" {
		user, authErr = that.auth.Verify(token)
		if authErr != nil {
			user = entity.User{}
		}
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(pkg.GenerateConnID(), conn, user, that.opts.SendBuffer)
	if !that.post(connected{client: c, authErr: authErr}) {
		_ = conn.Close()
		return
	}

	go c.writePump(that)
	go c.readPump(that)

	log.Info("WebSocket connection established", "connID", c.id, "userID", user.ID)
}

// Send - queues an event for one connection. Must be called from the loop.
// A client that cannot keep up is cut off instead of stalling everyone else.
func (that *Server) Send(connID, action string, payload any) {
	c, ok := that.clients[connID]
	if !ok || c.sendClosed {
		return
	}

	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		that.logger.Warn("send buffer is full, dropping connection", "connID", connID, "action", action)
		that.closeSend(c)
	}
}

func (that *Server) IsConnected(connID string) bool {
	c, ok := that.clients[connID]
	return ok && !c.sendClosed
}

// After - runs fn on the loop once d has passed.
func (that *Server) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		that.post(scheduled{fn: fn})
	})
}

// NotifyAchievement - safe to call from any goroutine.
func (that *Server) NotifyAchievement(userID string, achievement entity.Achievement) {
	that.post(unlocked{userID: userID, achievement: achievement})
}

// post - false once the loop has stopped.
func (that *Server) post(ev event) bool {
	select {
	case that.inbox <- ev:
		return true
	case <-that.done:
		return false
	}
}

func (that *Server) closeSend(c *client) {
	if c.sendClosed {
		return
	}

	c.sendClosed = true
	close(c.send)
}

func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get(tokenQueryParam); token != "" {
		return token
	}

	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(tokenCookieName); err == nil {
		return cookie.Value
	}

	return ""
}
