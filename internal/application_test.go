package application

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/testing/suite"
)

func TestNewSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		conf := &config.Config{Storage: config.Storage{Driver: config.StorageMemory}}

		repo, closeStorage, err := NewSessionRepository(ctx, conf)

		require.NoError(t, err)
		require.NotNil(t, repo)
		assert.NoError(t, closeStorage())
	})

	t.Run("SQLite", func(t *testing.T) {
		// Given: a sqlite path in a temp dir
		conf := &config.Config{Storage: config.Storage{
			Driver:     config.StorageSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "app.db"),
		}}

		// When: the repository is opened
		repo, closeStorage, err := NewSessionRepository(ctx, conf)
		require.NoError(t, err)
		defer func() { assert.NoError(t, closeStorage()) }()

		// Then: the sessions table is usable
		game := entity.NewGame()
		require.NoError(t, repo.Save(ctx, "s1", &game))
	})

	t.Run("Redis", func(t *testing.T) {
		// Given: a running redis
		redisCtx, rds := suite.NewRedis(t)
		host, port, err := net.SplitHostPort(rds.Addr)
		require.NoError(t, err)

		conf := &config.Config{
			Storage: config.Storage{Driver: config.StorageRedis},
			Redis:   config.Redis{Host: host, Port: port, SessionTTL: time.Minute},
		}

		// When: the repository is opened
		repo, closeStorage, err := NewSessionRepository(redisCtx, conf)
		require.NoError(t, err)
		defer func() { assert.NoError(t, closeStorage()) }()

		// Then: games round-trip through redis
		game := entity.NewGame()
		game.Board[0][2] = entity.MarkFirst
		require.NoError(t, repo.Save(redisCtx, "s1", &game))

		stored, err := repo.GetByID(redisCtx, "s1")
		require.NoError(t, err)
		assert.Equal(t, game, *stored)
	})

	t.Run("Unknown driver", func(t *testing.T) {
		conf := &config.Config{Storage: config.Storage{Driver: "etcd"}}

		_, _, err := NewSessionRepository(ctx, conf)

		require.ErrorIs(t, err, ErrUnknownStorageDriver)
	})
}

func freePort(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer listener.Close()

	_, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)

	return port
}

func TestRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Stops when the context is canceled", func(t *testing.T) {
		// Given: the app running on free ports
		conf := &config.Config{
			HTTPPort:   freePort(t),
			SocketPort: freePort(t),
			Storage:    config.Storage{Driver: config.StorageMemory},
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Run(ctx, logger, conf)
		}()

		// When: the context is canceled
		time.Sleep(50 * time.Millisecond)
		cancel()

		// Then: Run returns without an error
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("Run did not return")
		}
	})

	t.Run("A failing server stops the other one", func(t *testing.T) {
		// Given: the HTTP port is already taken
		busy, err := net.Listen("tcp", ":0")
		require.NoError(t, err)
		defer busy.Close()

		_, port, err := net.SplitHostPort(busy.Addr().String())
		require.NoError(t, err)

		conf := &config.Config{
			HTTPPort:   port,
			SocketPort: freePort(t),
			Storage:    config.Storage{Driver: config.StorageMemory},
		}

		// When: the app runs
		done := make(chan error, 1)
		go func() {
			done <- Run(context.Background(), logger, conf)
		}()

		// Then: Run returns the HTTP error once the WebSocket server has stopped too
		select {
		case err = <-done:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "HTTP server error")
		case <-time.After(10 * time.Second):
			t.Fatal("Run did not return")
		}
	})
}
