package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pongarena/api/internal/pong"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) UserFromToken(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM player_sessions WHERE token = ?
	`, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up session: %w", err)
	}
	return userID, nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_sessions (token, user_id) VALUES (?, ?)
	`, token, userID)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return token, nil
}

func (s *SQLiteStore) SaveMatchResult(ctx context.Context, res pong.MatchResult) error {
	var player2, winner, tournament sql.NullString
	if len(res.Participants) > 1 {
		player2 = sql.NullString{String: res.Participants[1], Valid: true}
	}
	if res.WinnerID != "" {
		winner = sql.NullString{String: res.WinnerID, Valid: true}
	}
	if res.TournamentID != "" {
		tournament = sql.NullString{String: res.TournamentID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_results
			(id, player1, player2, score1, score2, winner_id, reason, tournament_id, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, res.MatchID, res.Participants[0], player2,
		res.Score[0], res.Score[1], winner, string(res.Reason), tournament,
		res.FinishedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving match result: %w", err)
	}
	return nil
}
