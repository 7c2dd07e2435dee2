package server

import (
	"context"
	"errors"

	"github.com/pongarena/api/internal/pong"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence surface the platform needs: token
// authentication and the match result archive.
type Store interface {
	UserFromToken(ctx context.Context, token string) (string, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	SaveMatchResult(ctx context.Context, res pong.MatchResult) error
}
