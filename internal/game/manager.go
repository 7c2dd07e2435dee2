package game

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/pongarena/api/internal/pong"
)

// Manager tracks every live match and enforces the one-match-per-user
// invariant the hub relies on for already_in_game checks.
type Manager struct {
	logger *slog.Logger
	bc     Broadcaster

	mu      sync.Mutex
	matches map[string]*Match
	byUser  map[string]*Match
}

func NewManager(logger *slog.Logger, bc Broadcaster) *Manager {
	return &Manager{
		logger:  logger,
		bc:      bc,
		matches: make(map[string]*Match),
		byUser:  make(map[string]*Match),
	}
}

// Create registers a new match and starts its session goroutine. users is
// the slot order; a local match has exactly one user driving both paddles.
// onFinished runs on the match goroutine after the match is removed from
// the manager, so completion observers never see a stale busy state.
func (mgr *Manager) Create(users []string, isLocal bool, tournamentID string, onFinished func(pong.MatchResult)) *Match {
	id := uuid.NewString()

	m := newMatch(id, users, isLocal, tournamentID, mgr.logger, mgr.bc, func(res pong.MatchResult) {
		mgr.remove(id)
		if onFinished != nil {
			onFinished(res)
		}
	})

	mgr.mu.Lock()
	mgr.matches[id] = m
	for _, u := range users {
		mgr.byUser[u] = m
	}
	mgr.mu.Unlock()

	mgr.logger.Info("match created", "match_id", id, "users", users, "local", isLocal)
	go m.run()
	return m
}

// Get returns a live match by id.
func (mgr *Manager) Get(id string) (*Match, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.matches[id]
	return m, ok
}

// ForUser returns the live match the user participates in, if any.
func (mgr *Manager) ForUser(userID string) (*Match, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.byUser[userID]
	return m, ok
}

// UserBusy reports whether the user is assigned to a live match.
func (mgr *Manager) UserBusy(userID string) bool {
	_, ok := mgr.ForUser(userID)
	return ok
}

func (mgr *Manager) remove(id string) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.matches[id]
	if !ok {
		return
	}
	delete(mgr.matches, id)
	for _, u := range m.users {
		if mgr.byUser[u] == m {
			delete(mgr.byUser, u)
		}
	}
}
