// Package hub implements the coordination service behind the matchmaking
// socket: the connection registry, the FIFO queue, the tournament
// coordinator and the message dispatcher that ties them together.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pongarena/api/internal/pong"
)

const writeWait = 10 * time.Second

// Conn wraps a websocket connection with a write lock so events and binary
// frames from different goroutines never interleave mid-message.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) SendBinary(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

// CloseWithCode sends a close frame with the given code, then closes.
func (c *Conn) CloseWithCode(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage, msg)
	c.ws.Close()
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.Close()
}

// ContextHub is the registry context for the matchmaking socket.
const ContextHub = "hub"

// MatchContext is the registry context for one match's socket.
func MatchContext(matchID string) string {
	return "match:" + matchID
}

type connKey struct {
	userID  string
	context string
}

// Registry is the single shared map of live sockets. Every component sends
// through it; nothing else holds socket references, which is what keeps
// reconnect-replace correct.
type Registry struct {
	logger   *slog.Logger
	presence Presence

	mu    sync.Mutex
	conns map[connKey]*Conn
}

func NewRegistry(logger *slog.Logger, presence Presence) *Registry {
	if presence == nil {
		presence = NopPresence{}
	}
	return &Registry{
		logger:   logger,
		presence: presence,
		conns:    make(map[connKey]*Conn),
	}
}

// Register binds (userID, scope) to conn. A live socket already bound to
// the same key is closed first: the newest connection always wins, so a
// duplicate tab replaces rather than ghosts.
func (r *Registry) Register(userID, scope string, conn *Conn) {
	r.mu.Lock()
	key := connKey{userID, scope}
	prev := r.conns[key]
	r.conns[key] = conn
	r.mu.Unlock()

	if prev != nil {
		r.logger.Info("replacing live connection", "user_id", userID, "scope", scope)
		prev.CloseWithCode(websocket.ClosePolicyViolation, "replaced by newer connection")
	}
	if scope == ContextHub {
		r.presence.Set(context.Background(), userID, pong.StatusOnline)
	}
}

// Unregister removes the binding only if conn still owns it, so the read
// loop of a replaced socket cannot evict its replacement. It reports
// whether the binding was removed; a socket that was already replaced gets
// false, and its caller must skip session teardown.
func (r *Registry) Unregister(userID, scope string, conn *Conn) bool {
	r.mu.Lock()
	key := connKey{userID, scope}
	owned := r.conns[key] == conn
	if owned {
		delete(r.conns, key)
	}
	r.mu.Unlock()

	if owned && scope == ContextHub {
		r.presence.Clear(context.Background(), userID)
	}
	return owned
}

func (r *Registry) get(userID, scope string) (*Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connKey{userID, scope}]
	return c, ok
}

// SendHub delivers an event to the user's matchmaking socket. An absent
// socket is a logged no-op.
func (r *Registry) SendHub(userID string, event any) {
	conn, ok := r.get(userID, ContextHub)
	if !ok {
		r.logger.Debug("hub send skipped, user offline", "user_id", userID)
		return
	}
	if err := conn.SendJSON(event); err != nil {
		r.logger.Warn("hub send failed", "user_id", userID, "error", err)
	}
}

// SendMatchEvent delivers a control event to a participant's match socket.
func (r *Registry) SendMatchEvent(matchID, userID string, event any) {
	conn, ok := r.get(userID, MatchContext(matchID))
	if !ok {
		return
	}
	if err := conn.SendJSON(event); err != nil {
		r.logger.Warn("match event send failed", "match_id", matchID, "user_id", userID, "error", err)
	}
}

// SendMatchFrame delivers one binary state frame to a participant.
func (r *Registry) SendMatchFrame(matchID, userID string, frame []byte) {
	conn, ok := r.get(userID, MatchContext(matchID))
	if !ok {
		return
	}
	if err := conn.SendBinary(frame); err != nil {
		r.logger.Warn("frame send failed", "match_id", matchID, "user_id", userID, "error", err)
	}
}

// IsOnline reports whether the user has a live matchmaking socket.
func (r *Registry) IsOnline(userID string) bool {
	_, ok := r.get(userID, ContextHub)
	return ok
}

// HubUsers lists every user with a live matchmaking socket.
func (r *Registry) HubUsers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]string, 0, len(r.conns))
	for key := range r.conns {
		if key.context == ContextHub {
			users = append(users, key.userID)
		}
	}
	return users
}

// Presence mirrors a user's game status for the surrounding platform.
// Implementations must be cheap and non-blocking from the caller's view.
type Presence interface {
	Set(ctx context.Context, userID string, status pong.UserStatus)
	Clear(ctx context.Context, userID string)
}

// NopPresence is used when no presence backend is configured, and in tests.
type NopPresence struct{}

func (NopPresence) Set(context.Context, string, pong.UserStatus) {}
func (NopPresence) Clear(context.Context, string)                {}
