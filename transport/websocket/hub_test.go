package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/campus-quest/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func testState() *engine.GameState {
	return &engine.GameState{
		World:    "campus",
		Location: engine.LocationView{ID: 12, Name: "Robarts Library"},
		Score:    30,
		Turn:     14,
		MaxTurns: 67,
		Ongoing:  true,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels must be initialized")
	}
	if hub.logger == nil {
		t.Error("Hub logger must default to a discard logger")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "ab12")

	hub.registerClient(client)

	if !hub.sessions["ab12"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("AB12") != 1 {
		t.Errorf("Expected 1 client regardless of case, got %d", hub.ClientCount("AB12"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "ab12")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["ab12"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(nil)
	client1 := newTestClient(hub, "multi")
	client2 := newTestClient(hub, "multi")

	hub.registerClient(client1)
	hub.registerClient(client2)
	if hub.ClientCount("multi") != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount("multi"))
	}

	hub.unregisterClient(client1)
	if hub.ClientCount("multi") != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount("multi"))
	}
	if !hub.sessions["multi"][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "cast")
	other := newTestClient(hub, "other")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{SessionID: "CAST", GameState: testState(), Event: EventStateUpdate})

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %q, got %q", EventStateUpdate, message.Event)
		}
		if message.GameState.Location.ID != 12 || message.GameState.Score != 30 {
			t.Error("GameState not correctly transmitted")
		}
	default:
		t.Error("No message queued for the session client")
	}

	select {
	case <-other.send:
		t.Error("Clients of other sessions must not receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "ping"})

	if hub.ClientCount("slow") != 0 {
		t.Error("A client with a full send buffer should be dropped")
	}
}

func TestHubBroadcastQueues(t *testing.T) {
	hub := NewHub(nil)

	hub.BroadcastToSession("q1", testState())
	hub.BroadcastEvent("q1", "custom-event", "test-data")

	first := <-hub.broadcast
	if first.Event != EventStateUpdate || first.GameState == nil {
		t.Errorf("Unexpected first message: %+v", first)
	}
	second := <-hub.broadcast
	if second.Event != "custom-event" || second.Data != "test-data" {
		t.Errorf("Unexpected second message: %+v", second)
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			hub.BroadcastEvent("full", "tick", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked without a running hub")
	}
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws01"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("ws01") == 1 })

	hub.BroadcastToSession("ws01", testState())

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.SessionID != "ws01" || message.GameState.Turn != 14 {
		t.Errorf("Unexpected message: %+v", message)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("ws01") == 0 })
}

func TestHubRunStopsWithContext(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "stop")
	hub.registerClient(client)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if hub.ClientCount("stop") != 0 {
		t.Error("Clients should be closed when the hub stops")
	}
}
