package hub

import (
	"context"
	"time"

	"github.com/pongarena/api/internal/pong"
	"github.com/pongarena/api/internal/wire"
)

type queueEntry struct {
	userID     string
	enqueuedAt time.Time
}

func (h *Hub) queuedLocked(userID string) bool {
	for _, e := range h.queue {
		if e.userID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) dequeueLocked(userID string) bool {
	for i, e := range h.queue {
		if e.userID == userID {
			h.queue = append(h.queue[:i], h.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (h *Hub) queueRegister(userID string, mode pong.Mode) {
	if mode == pong.ModeLocal {
		h.localMatchCreate(userID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.busyLocked(userID) {
		h.registry.SendHub(userID, wire.NewAlreadyInGame())
		return
	}

	h.queue = append(h.queue, queueEntry{userID: userID, enqueuedAt: time.Now()})
	h.presence.Set(context.Background(), userID, pong.StatusInQueue)
	h.registry.SendHub(userID, wire.NewRegistered())
	h.logger.Info("user queued", "user_id", userID, "depth", len(h.queue))

	h.tryPairLocked()
}

// queueUnregister is idempotent; leaving a queue you are not in does
// nothing.
func (h *Hub) queueUnregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dequeueLocked(userID) {
		h.presence.Set(context.Background(), userID, pong.StatusOnline)
		h.logger.Info("user left queue", "user_id", userID, "depth", len(h.queue))
	}
}

func (h *Hub) localMatchCreate(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.busyLocked(userID) {
		h.registry.SendHub(userID, wire.NewAlreadyInGame())
		return
	}
	h.startMatchLocked([]string{userID}, true, "")
}

// tryPairLocked pops participants two at a time in arrival order. Popping
// and match creation happen under the one hub lock, so no concurrent
// register can ever pair the same entry twice.
func (h *Hub) tryPairLocked() {
	for len(h.queue) >= 2 {
		first, second := h.queue[0], h.queue[1]
		h.queue = h.queue[2:]
		h.logger.Info("queue paired", "user_1", first.userID, "user_2", second.userID,
			"waited", time.Since(first.enqueuedAt))
		h.startMatchLocked([]string{first.userID, second.userID}, false, "")
	}
}
