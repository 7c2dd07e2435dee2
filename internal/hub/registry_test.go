package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pongarena/api/internal/wire"
)

// wsPair dials the test server once and returns both ends of the socket.
func wsPair(t *testing.T, srv *httptest.Server, accepted chan *websocket.Conn) (*Conn, *websocket.Conn) {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server := <-accepted:
		return NewConn(server), client
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the connection")
		return nil, nil
	}
}

func wsTestServer(t *testing.T) (*httptest.Server, chan *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- ws
	}))
	t.Cleanup(srv.Close)
	return srv, accepted
}

func TestRegistrySendHub(t *testing.T) {
	srv, accepted := wsTestServer(t)
	reg := NewRegistry(testLogger(), nil)

	server, client := wsPair(t, srv, accepted)
	reg.Register("alice", ContextHub, server)

	if !reg.IsOnline("alice") {
		t.Fatal("alice not online after register")
	}
	if reg.IsOnline("bob") {
		t.Fatal("bob online without a socket")
	}

	reg.SendHub("alice", wire.NewRegistered())

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", kind)
	}
	var got struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != wire.TypeRegistered {
		t.Fatalf("type = %q, want %q", got.Type, wire.TypeRegistered)
	}

	// No socket for this user: silently dropped.
	reg.SendHub("bob", wire.NewRegistered())
}

func TestRegistryNewestConnectionWins(t *testing.T) {
	srv, accepted := wsTestServer(t)
	reg := NewRegistry(testLogger(), nil)

	server1, client1 := wsPair(t, srv, accepted)
	reg.Register("alice", ContextHub, server1)

	server2, client2 := wsPair(t, srv, accepted)
	reg.Register("alice", ContextHub, server2)

	// The replaced socket gets a policy close frame.
	client1.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client1.ReadMessage()
	ce, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("first socket read = %v, want close error", err)
	}
	if ce.Code != websocket.ClosePolicyViolation {
		t.Fatalf("close code = %d, want %d", ce.Code, websocket.ClosePolicyViolation)
	}

	// The stale read loop's unregister must not evict the replacement,
	// and must report that it no longer owned the binding.
	if reg.Unregister("alice", ContextHub, server1) {
		t.Fatal("stale unregister reported ownership")
	}
	if !reg.IsOnline("alice") {
		t.Fatal("replacement socket evicted by stale unregister")
	}

	reg.SendHub("alice", wire.NewRegistered())
	client2.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := client2.ReadMessage(); err != nil {
		t.Fatalf("replacement socket read: %v", err)
	}

	if !reg.Unregister("alice", ContextHub, server2) {
		t.Fatal("owning unregister reported no ownership")
	}
	if reg.IsOnline("alice") {
		t.Fatal("alice online after unregister")
	}
}

func TestRegistryScopesAreIndependent(t *testing.T) {
	srv, accepted := wsTestServer(t)
	reg := NewRegistry(testLogger(), nil)

	hubSrv, _ := wsPair(t, srv, accepted)
	matchSrv, matchClient := wsPair(t, srv, accepted)

	reg.Register("alice", ContextHub, hubSrv)
	reg.Register("alice", MatchContext("m1"), matchSrv)

	frame := make([]byte, wire.FrameSize)
	reg.SendMatchFrame("m1", "alice", frame)

	matchClient.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := matchClient.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.BinaryMessage || len(data) != wire.FrameSize {
		t.Fatalf("got type %d len %d, want binary frame", kind, len(data))
	}

	// A frame for a different match goes nowhere.
	reg.SendMatchFrame("m2", "alice", frame)
	if users := reg.HubUsers(); len(users) != 1 || users[0] != "alice" {
		t.Fatalf("hub users = %v", users)
	}
}
