package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/pongarena/api/internal/pong"
)

const (
	resultQueueSize    = 256
	resultWriteRetries = 3
)

// ResultWriter persists match results off the hot path. Record never
// blocks a match goroutine; writes happen on a single worker with a small
// retry budget, since sqlite under WAL clears transient busy errors fast.
type ResultWriter struct {
	logger *slog.Logger
	store  Store
	queue  chan pong.MatchResult
}

func NewResultWriter(logger *slog.Logger, store Store) *ResultWriter {
	return &ResultWriter{
		logger: logger,
		store:  store,
		queue:  make(chan pong.MatchResult, resultQueueSize),
	}
}

// Record queues a result for persistence. A full queue drops the result
// rather than stall the caller.
func (w *ResultWriter) Record(res pong.MatchResult) {
	select {
	case w.queue <- res:
	default:
		w.logger.Error("result queue full, dropping result", "match_id", res.MatchID)
	}
}

// Run writes queued results until ctx is cancelled, then drains whatever
// is left so shutdown loses nothing already queued.
func (w *ResultWriter) Run(ctx context.Context) error {
	for {
		select {
		case res := <-w.queue:
			w.write(ctx, res)
		case <-ctx.Done():
			for {
				select {
				case res := <-w.queue:
					w.write(context.Background(), res)
				default:
					return nil
				}
			}
		}
	}
}

func (w *ResultWriter) write(ctx context.Context, res pong.MatchResult) {
	var err error
	for attempt := 1; attempt <= resultWriteRetries; attempt++ {
		if err = w.store.SaveMatchResult(ctx, res); err == nil {
			return
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	w.logger.Error("persisting match result failed", "match_id", res.MatchID, "error", err)
}
