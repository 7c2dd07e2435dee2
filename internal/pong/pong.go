// Package pong defines the core domain types shared across the hub, the
// match engine and the persistence layer. It has zero external
// dependencies.
package pong

import "time"

// Mode selects how a queue registration is satisfied.
type Mode string

const (
	// ModeOnline pairs the player with another queued stranger.
	ModeOnline Mode = "online"
	// ModeLocal spawns a two-paddle match driven by a single client.
	ModeLocal Mode = "local"
)

// MatchState is the lifecycle of one authoritative simulation.
type MatchState string

const (
	// MatchWaiting: created, participants have not all connected yet.
	MatchWaiting MatchState = "waiting"
	// MatchCountdown: all participants connected, start timer running.
	MatchCountdown MatchState = "countdown"
	// MatchRunning: physics loop active.
	MatchRunning MatchState = "running"
	// MatchPaused: a participant dropped, simulation frozen until the
	// grace period ends or they reconnect.
	MatchPaused MatchState = "paused"
	// MatchFinished: terminal.
	MatchFinished MatchState = "finished"
)

// EndReason records why a match reached MatchFinished.
type EndReason string

const (
	EndScore           EndReason = "score"
	EndForfeit         EndReason = "forfeit"
	EndStartTimeout    EndReason = "start_timeout"
	EndAborted         EndReason = "aborted"
	EndAllDisconnected EndReason = "all_disconnected"
)

// MatchResult is what the engine reports to the hub and the persistence
// collaborator when a match finishes. WinnerID is empty when the match
// produced no winner (start timeout, cancellation, double forfeit).
type MatchResult struct {
	MatchID      string
	Participants []string
	Score        [2]int
	WinnerID     string
	Reason       EndReason
	TournamentID string
	FinishedAt   time.Time
}

// TournamentStatus is the tournament lifecycle.
type TournamentStatus string

const (
	TournamentOpen      TournamentStatus = "open"
	TournamentStarted   TournamentStatus = "started"
	TournamentFinished  TournamentStatus = "finished"
	TournamentCancelled TournamentStatus = "cancelled"
)

// MaxTournamentPlayers is the hard capacity cap enforced at creation.
const MaxTournamentPlayers = 12

// UserStatus is the presence value mirrored for the surrounding platform.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusInQueue UserStatus = "in_queue"
	StatusPlaying UserStatus = "playing"
)
