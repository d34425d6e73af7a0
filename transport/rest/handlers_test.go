package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionUseCase := usecase.NewSessionUseCase(logger, repository.NewMemorySessionRepository(time.Hour))

	return &testClient{
		t:       t,
		handler: NewRouter(NewHandlers(logger, sessionUseCase)),
	}
}

func (that *testClient) do(method, target string) *httptest.ResponseRecorder {
	that.t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if that.cookie != nil {
		req.AddCookie(that.cookie)
	}

	rec := httptest.NewRecorder()
	that.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			that.cookie = cookie
		}
	}

	return rec
}

func (that *testClient) state(method, target string) (int, stateResponse) {
	that.t.Helper()

	rec := that.do(method, target)

	var body stateResponse
	require.NoError(that.t, json.NewDecoder(rec.Body).Decode(&body))

	return rec.Code, body
}

func TestRouter_Ping(t *testing.T) {
	client := newTestClient(t)

	rec := client.do(http.MethodGet, "/ping")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestIndexHandler(t *testing.T) {
	// Given: a browser without a session
	client := newTestClient(t)

	// When: the page is opened
	rec := client.do(http.MethodGet, "/")

	// Then: a session cookie is issued and the grid is rendered
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, client.cookie)
	assert.Contains(t, rec.Body.String(), `action="/cell/2/2"`)
	assert.Contains(t, rec.Body.String(), `action="/reset"`)

	// When: a cell is clicked
	rec = client.do(http.MethodPost, "/cell/1/1")

	// Then: the browser is sent back to the page, which shows the mark
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = client.do(http.MethodGet, "/")
	assert.Contains(t, rec.Body.String(), `<button type="submit">X</button>`)
}

func TestIndexHandler_InvalidCell(t *testing.T) {
	client := newTestClient(t)

	assert.Equal(t, http.StatusBadRequest, client.do(http.MethodPost, "/cell/5/5").Code)
	assert.Equal(t, http.StatusBadRequest, client.do(http.MethodPost, "/cell/a/1").Code)
}

func TestAPI_Game(t *testing.T) {
	// Given: a fresh session
	client := newTestClient(t)

	code, body := client.state(http.MethodGet, "/api/state")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, body.Game)
	assert.Equal(t, "X", body.Game.Turn)

	// When: first takes the top row while second plays the middle row
	for _, target := range []string{"/api/cell/0/0", "/api/cell/1/1", "/api/cell/0/1", "/api/cell/1/0", "/api/cell/0/2"} {
		code, body = client.state(http.MethodPost, target)
		require.Equal(t, http.StatusOK, code, target)
		require.True(t, body.Redraw)
	}

	// Then: first is reported as the winner
	assert.True(t, body.Game.Finished)
	assert.Equal(t, "X wins the game!", body.Game.Message)

	// When: a cell is clicked after the win
	code, body = client.state(http.MethodPost, "/api/cell/2/2")

	// Then: the board is cleared
	require.Equal(t, http.StatusOK, code)
	assert.False(t, body.Game.Finished)
	assert.Equal(t, " ", body.Game.Rows[0][0].Symbol)
	assert.Equal(t, " ", body.Game.Rows[2][2].Symbol)
}

func TestAPI_InvalidCell(t *testing.T) {
	// Given: a session with one move
	client := newTestClient(t)
	client.state(http.MethodPost, "/api/cell/0/0")

	// When: a cell outside the board is activated
	code, body := client.state(http.MethodPost, "/api/cell/3/0")

	// Then: the request is rejected and the move is kept
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body.Error, "invalid cell")

	_, body = client.state(http.MethodGet, "/api/state")
	assert.Equal(t, "X", body.Game.Rows[0][0].Symbol)
}

func TestAPI_Reset(t *testing.T) {
	// Given: a session with a move
	client := newTestClient(t)
	client.state(http.MethodPost, "/api/cell/2/0")

	// When: reset is requested
	code, body := client.state(http.MethodPost, "/api/reset")

	// Then: the board is empty and first moves again
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Redraw)
	assert.Equal(t, " ", body.Game.Rows[2][0].Symbol)
	assert.Equal(t, "X", body.Game.Turn)
}

func TestAPI_SessionsAreIsolated(t *testing.T) {
	// Given: two browsers on the same server
	first := newTestClient(t)
	second := &testClient{t: t, handler: first.handler}

	// When: only the first one plays
	first.state(http.MethodPost, "/api/cell/1/1")

	// Then: the second one still sees an empty board
	_, body := second.state(http.MethodGet, "/api/state")
	assert.Equal(t, " ", body.Game.Rows[1][1].Symbol)
}

func TestAPI_EndSession(t *testing.T) {
	// Given: a session with a move
	client := newTestClient(t)
	client.state(http.MethodPost, "/api/cell/1/1")
	ended := client.cookie

	// When: the session is ended
	rec := client.do(http.MethodDelete, "/api/session")

	// Then: the cookie is cleared
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, client.cookie)
	assert.Empty(t, client.cookie.Value)
	assert.Negative(t, client.cookie.MaxAge)

	// Then: the next request starts a new session on an empty board
	_, body := client.state(http.MethodGet, "/api/state")
	assert.Equal(t, " ", body.Game.Rows[1][1].Symbol)
	assert.NotEqual(t, ended.Value, client.cookie.Value)

	// When: the old session is ended again
	stale := &testClient{t: t, handler: client.handler, cookie: ended}
	code, body := stale.state(http.MethodDelete, "/api/session")

	// Then: it is reported as unknown
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "session not found", body.Error)
}

func TestAPI_EndSessionWithoutCookie(t *testing.T) {
	client := newTestClient(t)

	code, body := client.state(http.MethodDelete, "/api/session")

	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body.Error)
}
