package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/transport/rest"
	"github.com/rocketscienceinc/tictactoe-web/transport/websocket"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownStorageDriver = errors.New("unknown storage driver")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return Run(ctx, logger, conf)
}

// Run - serves the page and the WebSocket endpoint until ctx is canceled or
// one of the servers fails. Storage is released after both have stopped.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	sessionRepo, closeStorage, err := NewSessionRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeStorage(); closeErr != nil {
			log.Error("could not close storage", "error", closeErr)
		}
	}()

	log.Info("Session storage ready", "driver", conf.Storage.Driver)

	sessionUseCase := usecase.NewSessionUseCase(logger, sessionRepo)

	// a failing server cancels gctx and brings the other one down
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(rest.NewHandlers(logger, sessionUseCase))
		if httpErr := rest.Start(gctx, conf.HTTPPort, router); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessionUseCase)
		if wsErr := wsServer.Start(gctx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// NewSessionRepository - opens the storage selected in the config.
// The returned func releases it.
func NewSessionRepository(ctx context.Context, conf *config.Config) (repository.SessionRepository, func() error, error) {
	switch conf.Storage.Driver {
	case config.StorageMemory, "":
		return repository.NewMemorySessionRepository(conf.Storage.SessionTTL), func() error { return nil }, nil

	case config.StorageRedis:
		addr := conf.Redis.GetRedisAddr()

		client, err := storage.NewRedisStorage(ctx, addr)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewRedisSessionRepository(client, conf.Redis.SessionTTL), client.Close, nil

	case config.StorageSQLite:
		st, err := storage.NewSQLiteStorage(conf.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = st.Init(ctx); err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteSessionRepository(st.Connection), st.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorageDriver, conf.Storage.Driver)
	}
}
