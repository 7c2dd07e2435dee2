package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/pongarena/api/internal/game"
	"github.com/pongarena/api/internal/hub"
	"github.com/pongarena/api/internal/wire"
)

// handleMatchSocket serves one participant's connection to a live match.
// Assignment and forfeit checks happen before the upgrade, so outsiders
// get a plain HTTP error and never a socket.
func handleMatchSocket(logger *slog.Logger, store Store, registry *hub.Registry, matches *game.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		matchID := chi.URLParam(r, "matchID")
		m, ok := matches.Get(matchID)
		if !ok {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		if !m.IsAssigned(userID) || m.IsBlocked(userID) {
			writeError(w, http.StatusForbidden, "not a participant")
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("match upgrade failed", "match_id", matchID, "error", err)
			return
		}
		conn := hub.NewConn(ws)
		registry.Register(userID, hub.MatchContext(matchID), conn)
		defer func() {
			// A replaced socket no longer owns the binding; reporting a
			// disconnect here would drop the live replacement's player.
			if registry.Unregister(userID, hub.MatchContext(matchID), conn) {
				m.Disconnect(userID)
			}
			conn.Close()
		}()

		m.Connect(userID)

		// Close the socket once the match is over so clients do not idle
		// on a dead stream.
		readerDone := make(chan struct{})
		defer close(readerDone)
		go func() {
			select {
			case <-m.Done():
				conn.CloseWithCode(websocket.CloseNormalClosure, "match over")
			case <-readerDone:
			}
		}()

		for {
			kind, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.TextMessage {
				conn.CloseWithCode(websocket.CloseUnsupportedData, "text messages only")
				return
			}

			req, err := wire.ParseMatchRequest(data)
			if err != nil {
				logger.Warn("malformed match message", "match_id", matchID, "user_id", userID, "error", err)
				conn.CloseWithCode(websocket.CloseInvalidFramePayloadData, "malformed message")
				return
			}
			switch in := req.(type) {
			case wire.PlayerInput:
				m.Input(userID, in.PlayerID, in.Direction)
			case nil:
				// Unknown type, ignored.
			}
		}
	}
}
