package hub

import (
	"github.com/pongarena/api/internal/pong"
	"github.com/pongarena/api/internal/wire"
)

// bracketMatch is one slot of the current round. An empty p2 is a bye:
// decided immediately, p1 advances without a tallied win.
type bracketMatch struct {
	p1, p2  string
	matchID string
	winner  string
	decided bool
}

// pairSeeds turns a seed list into round pairings in order. An odd
// trailing seed becomes a bye pair.
func pairSeeds(seeds []string) [][2]string {
	pairs := make([][2]string, 0, (len(seeds)+1)/2)
	for i := 0; i < len(seeds); i += 2 {
		p := [2]string{seeds[i], ""}
		if i+1 < len(seeds) {
			p[1] = seeds[i+1]
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// startRoundLocked builds the next round from seeds, announces the
// schedule to every registrant and spawns the real matches. Byes are
// decided on the spot, so a round that is all byes resolves immediately.
func (h *Hub) startRoundLocked(t *Tournament, seeds []string) {
	t.roundNum++
	pairs := pairSeeds(seeds)
	t.round = make([]*bracketMatch, 0, len(pairs))
	for _, p := range pairs {
		bm := &bracketMatch{p1: p[0], p2: p[1]}
		if bm.p2 == "" {
			bm.decided = true
			bm.winner = bm.p1
		}
		t.round = append(t.round, bm)
	}

	schedule := wire.NewTournamentSchedule(t.Name, pairs)
	for _, u := range t.Players {
		h.registry.SendHub(u, schedule)
	}
	h.logger.Info("tournament round started", "tournament_id", t.ID,
		"round", t.roundNum, "pairs", len(pairs))

	for _, bm := range t.round {
		if bm.p2 == "" {
			continue
		}
		m := h.startMatchLocked([]string{bm.p1, bm.p2}, false, t.ID)
		bm.matchID = m.ID()
	}

	h.maybeAdvanceLocked(t)
}

// maybeAdvanceLocked moves to the next round once every current pair is
// decided, or crowns the champion when one winner remains.
func (h *Hub) maybeAdvanceLocked(t *Tournament) {
	winners := make([]string, 0, len(t.round))
	for _, bm := range t.round {
		if !bm.decided {
			return
		}
		winners = append(winners, bm.winner)
	}
	if len(winners) <= 1 {
		h.finishTournamentLocked(t)
		return
	}
	h.startRoundLocked(t, winners)
}

// advanceTournament records one finished bracket match. A match that
// produced no winner advances the higher seed without a tallied win.
func (h *Hub) advanceTournament(res pong.MatchResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.tournaments[res.TournamentID]
	if !ok || t.Status != pong.TournamentStarted {
		return
	}
	for _, bm := range t.round {
		if bm.matchID != res.MatchID || bm.decided {
			continue
		}
		bm.decided = true
		if res.WinnerID != "" {
			bm.winner = res.WinnerID
			t.Wins[res.WinnerID]++
		} else {
			bm.winner = bm.p1
		}
		break
	}
	h.maybeAdvanceLocked(t)
}
