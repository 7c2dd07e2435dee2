package hub

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pongarena/api/internal/pong"
	"github.com/pongarena/api/internal/wire"
)

// Tournament is a single-elimination bracket. Players doubles as the seed
// list: registration order is seed order, and it never changes after
// start.
type Tournament struct {
	ID         string
	Name       string
	OwnerID    string
	MaxPlayers int
	Status     pong.TournamentStatus
	Players    []string
	Wins       map[string]int
	CreatedAt  time.Time

	round    []*bracketMatch
	roundNum int
}

func (t *Tournament) hasPlayer(userID string) bool {
	return slices.Contains(t.Players, userID)
}

func (h *Hub) tournamentCreate(userID, name string, maxPlayers int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.busyLocked(userID) {
		h.registry.SendHub(userID, wire.NewAlreadyInGame())
		return
	}
	if name == "" {
		h.registry.SendHub(userID, wire.NewRegistrationError("tournament name required"))
		return
	}
	if maxPlayers < 2 || maxPlayers > pong.MaxTournamentPlayers {
		h.registry.SendHub(userID, wire.NewRegistrationError("invalid max_players"))
		return
	}

	t := &Tournament{
		ID:         uuid.NewString(),
		Name:       name,
		OwnerID:    userID,
		MaxPlayers: maxPlayers,
		Status:     pong.TournamentOpen,
		Players:    []string{userID},
		Wins:       map[string]int{userID: 0},
		CreatedAt:  time.Now(),
	}
	h.tournaments[t.ID] = t
	h.logger.Info("tournament created", "tournament_id", t.ID, "name", name,
		"owner", userID, "max_players", maxPlayers)

	h.registry.SendHub(userID, wire.NewRegistered())
	h.broadcastOpenListLocked()
}

func (h *Hub) tournamentRegister(userID, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.tournaments[tournamentID]
	if !ok || t.Status != pong.TournamentOpen {
		h.registry.SendHub(userID, wire.NewRegistrationError("tournament not open"))
		return
	}
	if h.busyLocked(userID) {
		h.registry.SendHub(userID, wire.NewAlreadyInGame())
		return
	}
	if len(t.Players) >= t.MaxPlayers {
		h.registry.SendHub(userID, wire.NewRegistrationError("tournament full"))
		return
	}

	t.Players = append(t.Players, userID)
	t.Wins[userID] = 0
	h.logger.Info("tournament registration", "tournament_id", t.ID,
		"user_id", userID, "players", len(t.Players))

	h.registry.SendHub(userID, wire.NewRegistered())
	h.broadcastOpenListLocked()
}

func (h *Hub) tournamentUnregister(userID, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.tournaments[tournamentID]
	if !ok || t.Status != pong.TournamentOpen {
		h.registry.SendHub(userID, wire.NewRegistrationError("tournament not open"))
		return
	}
	if userID == t.OwnerID {
		h.registry.SendHub(userID, wire.NewRegistrationError("owner must cancel the tournament"))
		return
	}

	if i := slices.Index(t.Players, userID); i >= 0 {
		t.Players = slices.Delete(t.Players, i, i+1)
		delete(t.Wins, userID)
		h.logger.Info("tournament withdrawal", "tournament_id", t.ID, "user_id", userID)
		h.broadcastOpenListLocked()
	}
}

func (h *Hub) tournamentStart(userID, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.tournaments[tournamentID]
	if !ok {
		h.registry.SendHub(userID, wire.NewRegistrationError("tournament not found"))
		return
	}
	if userID != t.OwnerID {
		h.registry.SendHub(userID, wire.NewRegistrationError("only the owner can start"))
		return
	}
	if t.Status != pong.TournamentOpen {
		h.registry.SendHub(userID, wire.NewRegistrationError("tournament not open"))
		return
	}
	if len(t.Players) < 2 {
		h.registry.SendHub(userID, wire.NewRegistrationError("not enough players"))
		return
	}

	t.Status = pong.TournamentStarted
	h.logger.Info("tournament started", "tournament_id", t.ID, "players", len(t.Players))

	for _, u := range t.Players {
		h.registry.SendHub(u, wire.NewTournamentStarting())
	}
	h.broadcastOpenListLocked()
	h.startRoundLocked(t, t.Players)
}

func (h *Hub) tournamentCancel(userID, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.tournaments[tournamentID]
	if !ok {
		h.registry.SendHub(userID, wire.NewRegistrationError("tournament not found"))
		return
	}
	if userID != t.OwnerID {
		h.registry.SendHub(userID, wire.NewRegistrationError("only the owner can cancel"))
		return
	}

	// Flip status before aborting so the completion callbacks of aborted
	// matches find nothing to advance.
	t.Status = pong.TournamentCancelled
	for _, bm := range t.round {
		if bm.matchID == "" || bm.decided {
			continue
		}
		if m, ok := h.matches.Get(bm.matchID); ok {
			m.Abort()
		}
	}

	for _, u := range t.Players {
		h.registry.SendHub(u, wire.NewTournamentCanceled())
	}
	delete(h.tournaments, t.ID)
	h.logger.Info("tournament cancelled", "tournament_id", t.ID)
	h.broadcastOpenListLocked()
}

func (h *Hub) finishTournamentLocked(t *Tournament) {
	t.Status = pong.TournamentFinished

	scores := make(map[string]int, len(t.Players))
	for _, u := range t.Players {
		scores[u] = t.Wins[u]
	}
	finished := wire.NewTournamentFinished(t.Name, scores)
	for _, u := range t.Players {
		h.registry.SendHub(u, finished)
	}
	delete(h.tournaments, t.ID)
	h.logger.Info("tournament finished", "tournament_id", t.ID,
		"rounds", t.roundNum, "scores", scores)
}

// openListLocked snapshots the open tournaments for one recipient;
// IsOwner is the only per-recipient field.
func (h *Hub) openListLocked(recipient string) []wire.OpenTournament {
	var list []*Tournament
	for _, t := range h.tournaments {
		if t.Status == pong.TournamentOpen {
			list = append(list, t)
		}
	}
	slices.SortFunc(list, func(a, b *Tournament) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	out := make([]wire.OpenTournament, 0, len(list))
	for _, t := range list {
		out = append(out, wire.OpenTournament{
			ID:         t.ID,
			Name:       t.Name,
			MaxPlayers: t.MaxPlayers,
			Owner:      t.OwnerID,
			Users:      slices.Clone(t.Players),
			IsOwner:    t.OwnerID == recipient,
		})
	}
	return out
}

func (h *Hub) sendOpenTournaments(userID string) {
	h.mu.Lock()
	list := h.openListLocked(userID)
	h.mu.Unlock()
	h.registry.SendHub(userID, wire.NewOpenTournamentsList(list))
}

// broadcastOpenListLocked pushes the refreshed open list to every hub
// socket. This is the one broadcast in the hub; everything else targets
// individual users.
func (h *Hub) broadcastOpenListLocked() {
	for _, u := range h.registry.HubUsers() {
		h.registry.SendHub(u, wire.NewOpenTournamentsList(h.openListLocked(u)))
	}
}
