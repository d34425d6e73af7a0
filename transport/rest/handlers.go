package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
)

const sessionCookieName = "user_session"

type Handlers interface {
	IndexHandler(w http.ResponseWriter, r *http.Request)
	ActivateHandler(w http.ResponseWriter, r *http.Request)
	ResetHandler(w http.ResponseWriter, r *http.Request)

	StateHandler(w http.ResponseWriter, r *http.Request)
	APIActivateHandler(w http.ResponseWriter, r *http.Request)
	APIResetHandler(w http.ResponseWriter, r *http.Request)
	EndSessionHandler(w http.ResponseWriter, r *http.Request)
}

type sessionUseCase interface {
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Game, error)
	Dispatch(ctx context.Context, sessionID string, intent tictactoe.Intent) (*entity.Game, bool, error)
	EndSession(ctx context.Context, sessionID string) error
}

// stateResponse is the body of every JSON API response.
type stateResponse struct {
	Game   *view.Board `json:"game,omitempty"`
	Redraw bool        `json:"redraw"`
	Error  string      `json:"error,omitempty"`
}

type handlers struct {
	logger         *slog.Logger
	sessionUseCase sessionUseCase
}

func NewHandlers(logger *slog.Logger, sessionUseCase sessionUseCase) Handlers {
	return &handlers{
		logger:         logger.With("component", "rest"),
		sessionUseCase: sessionUseCase,
	}
}

func (that *handlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "IndexHandler")

	game, err := that.sessionUseCase.GetOrCreateSession(r.Context(), that.sessionID(w, r))
	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = pageTemplate.Execute(w, view.New(*game)); err != nil {
		log.Error("failed to render page", "error", err)
	}
}

func (that *handlers) ActivateHandler(w http.ResponseWriter, r *http.Request) {
	intent, err := activateIntent(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	that.dispatchAndRedirect(w, r, intent)
}

func (that *handlers) ResetHandler(w http.ResponseWriter, r *http.Request) {
	that.dispatchAndRedirect(w, r, tictactoe.Reset())
}

func (that *handlers) StateHandler(w http.ResponseWriter, r *http.Request) {
	game, err := that.sessionUseCase.GetOrCreateSession(r.Context(), that.sessionID(w, r))
	if err != nil {
		that.logger.Error("failed to get session", "method", "StateHandler", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, stateResponse{Error: "failed to get session"})
		return
	}

	board := view.New(*game)
	that.writeJSON(w, http.StatusOK, stateResponse{Game: &board})
}

func (that *handlers) APIActivateHandler(w http.ResponseWriter, r *http.Request) {
	intent, err := activateIntent(r)
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, stateResponse{Error: err.Error()})
		return
	}

	that.dispatchJSON(w, r, intent)
}

func (that *handlers) APIResetHandler(w http.ResponseWriter, r *http.Request) {
	that.dispatchJSON(w, r, tictactoe.Reset())
}

// EndSessionHandler - drops the session's game and clears the cookie.
func (that *handlers) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		that.writeJSON(w, http.StatusBadRequest, stateResponse{Error: "session cookie is required"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if err = that.sessionUseCase.EndSession(r.Context(), cookie.Value); err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			that.writeJSON(w, http.StatusNotFound, stateResponse{Error: "session not found"})
			return
		}

		that.logger.Error("failed to end session", "method", "EndSessionHandler", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, stateResponse{Error: "failed to end session"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) dispatchAndRedirect(w http.ResponseWriter, r *http.Request, intent tictactoe.Intent) {
	_, _, err := that.sessionUseCase.Dispatch(r.Context(), that.sessionID(w, r), intent)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCell) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		that.logger.Error("failed to dispatch intent", "intent", intent.Kind, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *handlers) dispatchJSON(w http.ResponseWriter, r *http.Request, intent tictactoe.Intent) {
	game, redraw, err := that.sessionUseCase.Dispatch(r.Context(), that.sessionID(w, r), intent)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCell) {
			that.writeJSON(w, http.StatusBadRequest, stateResponse{Error: err.Error()})
			return
		}

		that.logger.Error("failed to dispatch intent", "intent", intent.Kind, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, stateResponse{Error: "failed to apply intent"})
		return
	}

	board := view.New(*game)
	that.writeJSON(w, http.StatusOK, stateResponse{Game: &board, Redraw: redraw})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body stateResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

// sessionID - returns the session from the cookie, issuing a new one if needed.
func (that *handlers) sessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	cookie = &http.Cookie{
		Name:     sessionCookieName,
		Value:    uuid.NewString(),
		Expires:  time.Now().Add(24 * time.Hour),
		Path:     "/",
		HttpOnly: true,
	}
	http.SetCookie(w, cookie)

	that.logger.Debug("session cookie not found, new one created", "session", cookie.Value)

	return cookie.Value
}

// activateIntent - reads the coordinates from the path. Range checks are left to the engine.
func activateIntent(r *http.Request) (tictactoe.Intent, error) {
	row, err := strconv.Atoi(r.PathValue("row"))
	if err != nil {
		return tictactoe.Intent{}, errors.New("row must be a number")
	}

	col, err := strconv.Atoi(r.PathValue("col"))
	if err != nil {
		return tictactoe.Intent{}, errors.New("col must be a number")
	}

	return tictactoe.Activate(row, col), nil
}
