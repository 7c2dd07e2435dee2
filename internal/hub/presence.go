package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pongarena/api/internal/pong"
)

const presenceTTL = time.Hour

// RedisPresence mirrors user status into redis so the rest of the platform
// can show who is queued or playing. Failures are logged and swallowed: the
// game never depends on the mirror.
type RedisPresence struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisPresence(client *redis.Client, logger *slog.Logger) *RedisPresence {
	return &RedisPresence{client: client, logger: logger}
}

func statusKey(userID string) string {
	return "user:status:" + userID
}

func (p *RedisPresence) Set(ctx context.Context, userID string, status pong.UserStatus) {
	if err := p.client.Set(ctx, statusKey(userID), string(status), presenceTTL).Err(); err != nil {
		p.logger.Warn("presence set failed", "user_id", userID, "error", err)
	}
}

func (p *RedisPresence) Clear(ctx context.Context, userID string) {
	if err := p.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		p.logger.Warn("presence clear failed", "user_id", userID, "error", err)
	}
}
