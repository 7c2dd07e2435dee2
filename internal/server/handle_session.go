package server

import (
	"log/slog"
	"net/http"
)

// handleCreateSession mints a session token for a user id. The production
// platform provisions tokens itself; this endpoint exists for local
// development and is disabled unless DEV_SESSIONS is set.
func handleCreateSession(logger *slog.Logger, store Store) http.HandlerFunc {
	type request struct {
		UserID string `json:"user_id"`
	}
	type response struct {
		Token string `json:"token"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := readJSON(r, &req); err != nil || req.UserID == "" {
			writeError(w, http.StatusBadRequest, "user_id required")
			return
		}

		token, err := store.CreateSession(r.Context(), req.UserID)
		if err != nil {
			logger.Error("creating session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, response{Token: token})
	}
}
