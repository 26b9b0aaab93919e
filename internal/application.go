package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gameverse-backend/internal/config"
	"github.com/rocketscienceinc/gameverse-backend/internal/repository"
	"github.com/rocketscienceinc/gameverse-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gameverse-backend/internal/service"
	"github.com/rocketscienceinc/gameverse-backend/transport/rest"
	"github.com/rocketscienceinc/gameverse-backend/transport/websocket"
)

var (
	ErrAddrNotFound      = errors.New("redis address string is empty")
	ErrDSNNotFound       = errors.New("postgres dsn is empty")
	ErrSecretNotFound    = errors.New("jwt secret key is empty")
	ErrUnknownStorageDrv = errors.New("unknown storage driver")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	if conf.JWTSecretKey == "" {
		return ErrSecretNotFound
	}

	profileRepo, closeStorage, err := openProfileRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	authService := service.NewAuthService(conf.JWTSecretKey)
	profileService := service.NewProfileService(profileRepo)

	recorder := service.NewRecorder(logger, profileService, conf.Recorder.Workers, conf.Recorder.QueueSize, conf.Recorder.Timeout)

	wsServer := websocket.New(logger, authService, repository.NewRoomRepository(), recorder, websocket.Options{
		SendBuffer:    conf.Websocket.SendBuffer,
		PingInterval:  conf.Websocket.PingInterval,
		RetryInterval: conf.Matchmaking.RetryInterval,
	})

	recorder.OnUnlock(wsServer.NotifyAchievement)
	recorder.Start(ctx)
	defer recorder.Stop()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		handlers := rest.NewHandlers(logger, authService, profileService)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, handlers); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// openProfileRepository - connects the configured profile store. The returned func closes it.
func openProfileRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.ProfileRepository, func(), error) {
	switch conf.Storage.Driver {
	case config.StorageRedis:
		addr := conf.Redis.GetRedisAddr()
		if addr == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, addr)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		closeFn := func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

		return repository.NewRedisProfileRepository(redisStorage.Connection), closeFn, nil
	case config.StoragePostgres:
		if conf.Postgres.DSN == "" {
			return nil, nil, ErrDSNNotFound
		}

		pgStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		if err = pgStorage.Init(ctx); err != nil {
			pgStorage.Close()
			return nil, nil, fmt.Errorf("could not init postgres storage: %w", err)
		}

		return repository.NewPostgresProfileRepository(pgStorage.Pool), pgStorage.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorageDrv, conf.Storage.Driver)
	}
}
