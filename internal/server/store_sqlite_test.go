package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/pongarena/api/internal/database"
	"github.com/pongarena/api/internal/migrations"
	"github.com/pongarena/api/internal/pong"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSessionRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	token, err := store.CreateSession(ctx, "alice")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	userID, err := store.UserFromToken(ctx, token)
	if err != nil {
		t.Fatalf("looking up token: %v", err)
	}
	if userID != "alice" {
		t.Errorf("user = %q, want alice", userID)
	}

	if _, err := store.UserFromToken(ctx, "bogus"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown token error = %v, want ErrNotFound", err)
	}
}

func TestSaveMatchResult(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	res := pong.MatchResult{
		MatchID:      "m1",
		Participants: []string{"alice", "bob"},
		Score:        [2]int{3, 1},
		WinnerID:     "alice",
		Reason:       pong.EndScore,
		TournamentID: "t1",
		FinishedAt:   time.Now(),
	}
	if err := store.SaveMatchResult(ctx, res); err != nil {
		t.Fatalf("saving result: %v", err)
	}

	var (
		player2, winner, tournament sql.NullString
		score1, score2              int
		reason                      string
	)
	err := store.db.QueryRowContext(ctx, `
		SELECT player2, score1, score2, winner_id, reason, tournament_id
		FROM match_results WHERE id = ?
	`, "m1").Scan(&player2, &score1, &score2, &winner, &reason, &tournament)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if player2.String != "bob" || score1 != 3 || score2 != 1 {
		t.Errorf("row = %q %d %d", player2.String, score1, score2)
	}
	if winner.String != "alice" || reason != "score" || tournament.String != "t1" {
		t.Errorf("row = %q %q %q", winner.String, reason, tournament.String)
	}
}

func TestSaveLocalMatchResult(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	res := pong.MatchResult{
		MatchID:      "m2",
		Participants: []string{"alice"},
		Score:        [2]int{3, 0},
		WinnerID:     "alice",
		Reason:       pong.EndScore,
		FinishedAt:   time.Now(),
	}
	if err := store.SaveMatchResult(ctx, res); err != nil {
		t.Fatalf("saving result: %v", err)
	}

	var player2, tournament sql.NullString
	err := store.db.QueryRowContext(ctx, `
		SELECT player2, tournament_id FROM match_results WHERE id = ?
	`, "m2").Scan(&player2, &tournament)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if player2.Valid || tournament.Valid {
		t.Errorf("local match row not null: player2=%v tournament=%v", player2, tournament)
	}
}
