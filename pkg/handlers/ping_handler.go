// Package handlers holds HTTP handlers shared by the page server and the
// WebSocket server.
package handlers

import "net/http"

// PingHandler - health check, answers "pong".
func PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
