package game

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pongarena/api/internal/pong"
	"github.com/pongarena/api/internal/wire"
)

// Simulation and lifecycle constants.
const (
	tickRate         = 60 // physics ticks per second
	countdownSeconds = 3
	winningScore     = 3

	// maxDrops forfeits a participant who keeps dropping mid-match.
	maxDrops = 3
)

// Timeouts are variables so tests can shorten them.
var (
	// startTimeout bounds how long a new match waits for every participant
	// to open its match socket before it is abandoned.
	startTimeout = 10 * time.Second
	// gracePeriod bounds how long a dropped participant may reconnect
	// before forfeiting.
	gracePeriod = 10 * time.Second
)

// Broadcaster delivers events and binary frames to a participant's match
// socket. Absent sockets are a logged no-op; delivery order per connection
// follows call order.
type Broadcaster interface {
	SendMatchEvent(matchID, userID string, event any)
	SendMatchFrame(matchID, userID string, frame []byte)
}

type command struct {
	kind      cmdKind
	userID    string
	playerID  int
	direction int
}

type cmdKind int

const (
	cmdConnect cmdKind = iota
	cmdDisconnect
	cmdInput
	cmdAbort
)

// Match is one authoritative game session. All mutable state is owned by
// the run goroutine; the exported methods post commands to it, so they are
// safe to call from any goroutine and become no-ops once the match is done.
type Match struct {
	id           string
	users        []string // slot order: users[0] is paddle 1
	isLocal      bool
	tournamentID string

	logger     *slog.Logger
	bc         Broadcaster
	onFinished func(pong.MatchResult)

	cmds chan command
	done chan struct{}

	blockedMu sync.Mutex
	blocked   map[string]bool

	// Actor-owned state below; never touched outside run.
	eng           *engine
	state         pong.MatchState
	score         [2]int
	connected     map[string]bool
	dropCount     map[string]int
	graceUntil    map[string]time.Time
	startDeadline time.Time
	countdown     int
	nextTimerAt   time.Time
	result        pong.MatchResult
}

func newMatch(id string, users []string, isLocal bool, tournamentID string, logger *slog.Logger, bc Broadcaster, onFinished func(pong.MatchResult)) *Match {
	m := &Match{
		id:           id,
		users:        users,
		isLocal:      isLocal,
		tournamentID: tournamentID,
		logger:       logger.With("match_id", id),
		bc:           bc,
		onFinished:   onFinished,
		cmds:         make(chan command, 64),
		done:         make(chan struct{}),
		blocked:      make(map[string]bool),
		eng:          newEngine(),
		state:        pong.MatchWaiting,
		connected:    make(map[string]bool),
		dropCount:    make(map[string]int),
		graceUntil:   make(map[string]time.Time),
	}
	return m
}

// ID returns the match id.
func (m *Match) ID() string { return m.id }

// Users returns the participant user ids in slot order.
func (m *Match) Users() []string { return slices.Clone(m.users) }

// IsLocal reports whether one socket drives both paddles.
func (m *Match) IsLocal() bool { return m.isLocal }

// TournamentID returns the owning tournament id, or "".
func (m *Match) TournamentID() string { return m.tournamentID }

// IsAssigned reports whether the user is a participant.
func (m *Match) IsAssigned(userID string) bool {
	return slices.Contains(m.users, userID)
}

// IsBlocked reports whether the user forfeited their right to reconnect.
func (m *Match) IsBlocked(userID string) bool {
	m.blockedMu.Lock()
	defer m.blockedMu.Unlock()
	return m.blocked[userID]
}

// Connect tells the match a participant's socket is live.
func (m *Match) Connect(userID string) {
	m.post(command{kind: cmdConnect, userID: userID})
}

// Disconnect tells the match a participant's socket dropped.
func (m *Match) Disconnect(userID string) {
	m.post(command{kind: cmdDisconnect, userID: userID})
}

// Input applies a player_input message at the next tick, last write wins.
func (m *Match) Input(userID string, playerID, direction int) {
	m.post(command{kind: cmdInput, userID: userID, playerID: playerID, direction: direction})
}

// Abort force-finishes the match with no winner.
func (m *Match) Abort() {
	m.post(command{kind: cmdAbort})
}

// Done is closed when the match has finished and will send nothing more.
func (m *Match) Done() <-chan struct{} { return m.done }

func (m *Match) post(c command) {
	select {
	case m.cmds <- c:
	case <-m.done:
	}
}

func (m *Match) run() {
	m.startDeadline = time.Now().Add(startTimeout)

	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	for m.state != pong.MatchFinished {
		select {
		case c := <-m.cmds:
			m.handleCommand(c)
		case now := <-ticker.C:
			m.tick(now)
		}
	}

	// Close before the callback so posts from goroutines the callback may
	// wake (the hub holds its own lock there) can never block on cmds.
	close(m.done)
	if m.onFinished != nil {
		m.onFinished(m.result)
	}
}

func (m *Match) handleCommand(c command) {
	switch c.kind {
	case cmdConnect:
		m.handleConnect(c.userID)
	case cmdDisconnect:
		m.handleDisconnect(c.userID)
	case cmdInput:
		m.handleInput(c.userID, c.playerID, c.direction)
	case cmdAbort:
		m.finish(pong.EndAborted, "")
	}
}

func (m *Match) handleConnect(userID string) {
	if !m.IsAssigned(userID) || m.IsBlocked(userID) {
		return
	}
	m.connected[userID] = true
	delete(m.graceUntil, userID)
	m.logger.Debug("participant connected", "user_id", userID)

	// The opponent already ran out their grace period; the returning
	// player wins by forfeit.
	if m.anyBlocked() {
		m.finish(pong.EndForfeit, userID)
		return
	}

	if m.allConnected() {
		m.sendUserMapping()
		m.enterCountdown()
	}
}

func (m *Match) handleDisconnect(userID string) {
	if !m.IsAssigned(userID) || !m.connected[userID] {
		return
	}
	m.connected[userID] = false
	m.logger.Debug("participant disconnected", "user_id", userID)

	// A local match has exactly one driver; without it there is nothing
	// to resume.
	if m.isLocal {
		m.finish(pong.EndAborted, "")
		return
	}

	if m.state == pong.MatchWaiting {
		// Not started yet; the start deadline covers this.
		return
	}

	m.dropCount[userID]++
	if m.dropCount[userID] >= maxDrops {
		m.setBlocked(userID)
		m.resolveBlocked()
		return
	}

	m.graceUntil[userID] = time.Now().Add(gracePeriod)
	m.state = pong.MatchPaused
}

func (m *Match) handleInput(userID string, playerID, direction int) {
	if m.state != pong.MatchRunning && m.state != pong.MatchCountdown {
		return
	}
	if direction < -1 || direction > 1 || playerID < 0 || playerID > 1 {
		return
	}
	if !m.connected[userID] {
		return
	}
	if m.isLocal {
		m.eng.setDirection(playerID, direction)
		return
	}
	// Remote participants only ever drive their own slot.
	slot := slices.Index(m.users, userID)
	if slot < 0 {
		return
	}
	m.eng.setDirection(slot, direction)
}

func (m *Match) tick(now time.Time) {
	switch m.state {
	case pong.MatchWaiting:
		if now.After(m.startDeadline) {
			m.logger.Info("match start timeout, not all participants connected")
			m.finish(pong.EndStartTimeout, "")
		}

	case pong.MatchCountdown:
		if now.Before(m.nextTimerAt) {
			return
		}
		m.countdown--
		if m.countdown < 0 {
			m.state = pong.MatchRunning
			return
		}
		m.sendEventAll(wire.NewStartTimerUpdate(m.countdown))
		m.nextTimerAt = m.nextTimerAt.Add(time.Second)

	case pong.MatchRunning:
		if scorer := m.eng.step(1.0 / tickRate); scorer >= 0 {
			m.score[scorer]++
			m.sendEventAll(wire.NewPlayerScores(m.score[0], m.score[1]))
			if m.score[scorer] >= winningScore {
				m.finish(pong.EndScore, m.winnerForSlot(scorer))
				return
			}
		}
		m.sendFrameAll()

	case pong.MatchPaused:
		for userID, deadline := range m.graceUntil {
			if now.After(deadline) {
				delete(m.graceUntil, userID)
				m.setBlocked(userID)
			}
		}
		m.resolveBlocked()
	}
}

// resolveBlocked ends the match once blocked participants decide it:
// a lone remaining connected player wins; everyone blocked is a washout.
func (m *Match) resolveBlocked() {
	if !m.anyBlocked() {
		return
	}
	var remaining []string
	for _, u := range m.users {
		if !m.blocked[u] {
			remaining = append(remaining, u)
		}
	}
	switch {
	case len(remaining) == 0:
		m.finish(pong.EndAllDisconnected, "")
	case len(remaining) == 1 && m.connected[remaining[0]]:
		m.finish(pong.EndForfeit, remaining[0])
	}
	// A single remaining player who is themselves inside their grace
	// window wins the moment they reconnect (handleConnect).
}

func (m *Match) enterCountdown() {
	m.state = pong.MatchCountdown
	m.countdown = countdownSeconds
	m.sendEventAll(wire.NewStartTimerUpdate(m.countdown))
	m.nextTimerAt = time.Now().Add(time.Second)
}

// finish emits the terminal game_over event and records the result; the
// run loop exits right after, so no frame ever follows game_over.
func (m *Match) finish(reason pong.EndReason, winnerID string) {
	if m.state == pong.MatchFinished {
		return
	}
	m.sendEventAll(wire.NewGameOver(winnerID))
	m.state = pong.MatchFinished
	m.result = pong.MatchResult{
		MatchID:      m.id,
		Participants: slices.Clone(m.users),
		Score:        m.score,
		WinnerID:     winnerID,
		Reason:       reason,
		TournamentID: m.tournamentID,
		FinishedAt:   time.Now(),
	}
	m.logger.Info("match finished", "reason", reason, "winner", winnerID,
		"score_p1", m.score[0], "score_p2", m.score[1])
}

func (m *Match) winnerForSlot(slot int) string {
	if m.isLocal {
		// A local match has one driving user; report them either way.
		return m.users[0]
	}
	return m.users[slot]
}

func (m *Match) setBlocked(userID string) {
	m.blockedMu.Lock()
	m.blocked[userID] = true
	m.blockedMu.Unlock()
	m.logger.Info("participant forfeited", "user_id", userID)
}

func (m *Match) anyBlocked() bool {
	m.blockedMu.Lock()
	defer m.blockedMu.Unlock()
	return len(m.blocked) > 0
}

func (m *Match) allConnected() bool {
	for _, u := range m.users {
		if !m.connected[u] {
			return false
		}
	}
	return true
}

func (m *Match) sendUserMapping() {
	var p2 string
	if !m.isLocal {
		p2 = m.users[1]
	}
	m.sendEventAll(wire.NewUserMapping(m.isLocal, m.users[0], p2))
}

func (m *Match) sendEventAll(event any) {
	for _, u := range m.users {
		if m.connected[u] {
			m.bc.SendMatchEvent(m.id, u, event)
		}
	}
}

func (m *Match) sendFrameAll() {
	frame, err := m.eng.frame().MarshalBinary()
	if err != nil {
		return
	}
	for _, u := range m.users {
		if m.connected[u] {
			m.bc.SendMatchFrame(m.id, u, frame)
		}
	}
}
