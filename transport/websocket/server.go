package websocket

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint: gosec // RFC 6455 requires the use of SHA-1 for WebSocket
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/pkg/handlers"
)

// Static GUID defined in RFC 6455 for WebSocket.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const (
	actionConnect  = "connect"
	actionActivate = "cell:activate"
	actionReset    = "game:reset"
	actionEnd      = "session:end"
	actionError    = "error"
)

type sessionUseCase interface {
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Game, error)
	Dispatch(ctx context.Context, sessionID string, intent tictactoe.Intent) (*entity.Game, bool, error)
	EndSession(ctx context.Context, sessionID string) error
}

type Server struct {
	logger         *slog.Logger
	sessionUseCase sessionUseCase

	handlers map[string]func(ctx context.Context, message *Message, writer *bufio.ReadWriter) error

	// hijacked connections, closed on shutdown
	connsMutex sync.Mutex
	conns      map[net.Conn]struct{}
	closed     bool
	active     sync.WaitGroup
}

func New(logger *slog.Logger, sessionUseCase sessionUseCase) *Server {
	server := &Server{
		logger:         logger.With("component", "websocket"),
		sessionUseCase: sessionUseCase,

		handlers: make(map[string]func(context.Context, *Message, *bufio.ReadWriter) error),
		conns:    make(map[net.Conn]struct{}),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionActivate] = server.handleActivate
	server.handlers[actionReset] = server.handleReset
	server.handlers[actionEnd] = server.handleEndSession

	return server
}

// Handler - serves the WebSocket endpoint at /ws and a /ping health check.
// Open connections are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	go func() {
		<-ctx.Done()
		that.closeConnections()
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", handlers.PingHandler)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// srv.Close does not reach hijacked connections
	that.closeConnections()

	return nil
}

// track - registers a hijacked connection. It returns false once the server is closing.
func (that *Server) track(conn net.Conn) bool {
	that.connsMutex.Lock()
	defer that.connsMutex.Unlock()

	if that.closed {
		return false
	}

	that.conns[conn] = struct{}{}
	that.active.Add(1)

	return true
}

func (that *Server) untrack(conn net.Conn) {
	that.connsMutex.Lock()
	delete(that.conns, conn)
	that.connsMutex.Unlock()

	that.active.Done()
}

// closeConnections - closes every hijacked connection and waits for their handlers to return.
func (that *Server) closeConnections() {
	that.connsMutex.Lock()
	that.closed = true
	for conn := range that.conns {
		_ = conn.Close()
	}
	that.connsMutex.Unlock()

	that.active.Wait()
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		http.Error(writer, "missing Sec-WebSocket-Key", http.StatusBadRequest)
		return
	}

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	if !that.track(conn) {
		_ = conn.Close()
		return
	}
	defer that.untrack(conn)
	defer conn.Close()

	// the connection is long lived, the server deadlines no longer apply
	_ = conn.SetDeadline(time.Time{})

	handshake := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + GenerateAcceptKey(key) + "\r\n\r\n"

	if _, err = bufrw.WriteString(handshake); err != nil {
		log.Error("failed to write handshake", "error", err)
		return
	}

	if err = bufrw.Flush(); err != nil {
		log.Error("failed to flush handshake", "error", err)
		return
	}

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, bufrw); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		reqBody, err := that.readRequest(bufrw)
		if errors.Is(err, errConnectionClosed) {
			log.Info("WebSocket connection closed")
			return nil
		}
		if err != nil && ctx.Err() != nil {
			log.Info("WebSocket connection closed on shutdown")
			return nil
		}
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = that.sendErrorResponse(bufrw, actionError, "malformed message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(bufrw, actionError, "unknown action: "+message.Action); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, &message, bufrw); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// GenerateAcceptKey - generates key for WebSocket handshake.
func GenerateAcceptKey(key string) string {
	h := sha1.New() //nolint: gosec // RFC 6455 requires the use of SHA-1 for WebSocket

	h.Write([]byte(key + websocketGUID))

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
