package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pongarena/api/internal/hub"
	"github.com/pongarena/api/internal/wire"
)

// The platform fronts this service; origin policy is enforced there.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleHubSocket serves the matchmaking socket: authenticate, register,
// then feed decoded requests to the hub until the peer goes away.
func handleHubSocket(logger *slog.Logger, store Store, registry *hub.Registry, h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("hub upgrade failed", "error", err)
			return
		}
		conn := hub.NewConn(ws)
		registry.Register(userID, hub.ContextHub, conn)
		defer func() {
			// A replaced socket no longer owns the binding; its teardown
			// must not touch the session the replacement now holds.
			if registry.Unregister(userID, hub.ContextHub, conn) {
				h.Disconnected(userID)
			}
			conn.Close()
		}()

		h.Connected(userID)

		for {
			kind, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.TextMessage {
				conn.CloseWithCode(websocket.CloseUnsupportedData, "text messages only")
				return
			}

			req, err := wire.ParseHubRequest(data)
			if err != nil {
				logger.Warn("malformed hub message", "user_id", userID, "error", err)
				conn.CloseWithCode(websocket.CloseInvalidFramePayloadData, "malformed message")
				return
			}
			if req == nil {
				continue
			}
			h.Dispatch(userID, req)
		}
	}
}
