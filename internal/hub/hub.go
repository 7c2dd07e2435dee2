package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pongarena/api/internal/game"
	"github.com/pongarena/api/internal/pong"
	"github.com/pongarena/api/internal/wire"
)

// ResultRecorder accepts finished match results for persistence. Record
// must not block; the store layer queues writes internally.
type ResultRecorder interface {
	Record(res pong.MatchResult)
}

// Sender is the hub's view of the connection registry: targeted delivery
// to matchmaking sockets plus liveness queries.
type Sender interface {
	SendHub(userID string, event any)
	IsOnline(userID string) bool
	HubUsers() []string
}

// Hub owns matchmaking and tournament state. One mutex guards both the
// queue and the tournament map, so pairing, busy checks and bracket
// advancement are each a single atomic step.
type Hub struct {
	logger   *slog.Logger
	registry Sender
	matches  *game.Manager
	results  ResultRecorder
	presence Presence

	mu          sync.Mutex
	queue       []queueEntry
	tournaments map[string]*Tournament
	tabActive   map[string]bool
}

func New(logger *slog.Logger, registry Sender, matches *game.Manager, results ResultRecorder, presence Presence) *Hub {
	if presence == nil {
		presence = NopPresence{}
	}
	return &Hub{
		logger:      logger,
		registry:    registry,
		matches:     matches,
		results:     results,
		presence:    presence,
		tournaments: make(map[string]*Tournament),
		tabActive:   make(map[string]bool),
	}
}

// Dispatch routes one decoded hub-socket message to its operation.
func (h *Hub) Dispatch(userID string, req wire.HubRequest) {
	switch r := req.(type) {
	case *wire.QueueRegister:
		h.queueRegister(userID, r.Mode)
	case wire.QueueUnregister:
		h.queueUnregister(userID)
	case wire.LocalMatchCreate:
		h.localMatchCreate(userID)
	case *wire.TournamentCreate:
		h.tournamentCreate(userID, r.Name, r.MaxPlayers)
	case *wire.TournamentRegister:
		h.tournamentRegister(userID, r.TournamentID)
	case *wire.TournamentUnregister:
		h.tournamentUnregister(userID, r.TournamentID)
	case *wire.TournamentStart:
		h.tournamentStart(userID, r.TournamentID)
	case *wire.TournamentCancel:
		h.tournamentCancel(userID, r.TournamentID)
	case wire.TournamentGetOpen:
		h.sendOpenTournaments(userID)
	case *wire.TabActive:
		h.setTabActive(userID, r.Active)
	default:
		h.logger.Warn("unhandled hub request", "type", req)
	}
}

// Connected runs after a hub socket registers: the user gets the current
// open tournament list and, if a live match still wants them back, a
// match_in_progress offer.
func (h *Hub) Connected(userID string) {
	if m, ok := h.matches.ForUser(userID); ok && !m.IsBlocked(userID) {
		h.registry.SendHub(userID, wire.NewMatchInProgress(m.ID()))
	}
	h.mu.Lock()
	list := h.openListLocked(userID)
	h.mu.Unlock()
	h.registry.SendHub(userID, wire.NewOpenTournamentsList(list))
}

// Disconnected runs after a hub socket unregisters. The queue entry goes
// with the socket; tournament registrations survive, since a registrant
// may come back before their bracket match starts.
func (h *Hub) Disconnected(userID string) {
	h.mu.Lock()
	h.dequeueLocked(userID)
	delete(h.tabActive, userID)
	h.mu.Unlock()
}

func (h *Hub) setTabActive(userID string, active bool) {
	h.mu.Lock()
	h.tabActive[userID] = active
	h.mu.Unlock()
}

// TabActive reports the last advisory visibility signal from the user.
func (h *Hub) TabActive(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tabActive[userID]
}

// busyLocked is the single-activity check: a user who is queued, in a live
// match or registered in a tournament cannot enter anything else.
func (h *Hub) busyLocked(userID string) bool {
	if h.queuedLocked(userID) {
		return true
	}
	if h.matches.UserBusy(userID) {
		return true
	}
	for _, t := range h.tournaments {
		if t.hasPlayer(userID) {
			return true
		}
	}
	return false
}

// startMatchLocked creates the match and tells every participant where to
// connect. Presence flips to playing immediately so the rest of the
// platform sees them as taken.
func (h *Hub) startMatchLocked(users []string, isLocal bool, tournamentID string) *game.Match {
	m := h.matches.Create(users, isLocal, tournamentID, h.onMatchFinished)
	for _, u := range users {
		h.presence.Set(context.Background(), u, pong.StatusPlaying)
		h.registry.SendHub(u, wire.NewRemoteMatchReady(m.ID()))
	}
	return m
}

// onMatchFinished runs on the match goroutine, after the manager has
// already dropped the match, so busy checks here see the user as free.
func (h *Hub) onMatchFinished(res pong.MatchResult) {
	if h.results != nil {
		h.results.Record(res)
	}
	for _, u := range res.Participants {
		if res.Reason == pong.EndStartTimeout {
			h.registry.SendHub(u, wire.NewRegistrationTimeout())
		}
		if h.registry.IsOnline(u) {
			h.presence.Set(context.Background(), u, pong.StatusOnline)
		}
	}
	if res.TournamentID != "" {
		h.advanceTournament(res)
	}
}
