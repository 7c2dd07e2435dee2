package server

import (
	"github.com/go-chi/chi/v5"
)

func addRoutes(r chi.Router, deps Deps) {
	r.Get("/healthz", handleHealth(deps.Logger, deps.DB, deps.Redis))

	r.Get("/ws/matchmaking", handleHubSocket(deps.Logger, deps.Store, deps.Registry, deps.Hub))
	r.Get("/ws/match/{matchID}", handleMatchSocket(deps.Logger, deps.Store, deps.Registry, deps.Matches))

	if deps.DevSessions {
		deps.Logger.Warn("dev session endpoint enabled")
		r.Post("/api/session", handleCreateSession(deps.Logger, deps.Store))
	}
}
