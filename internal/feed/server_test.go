// ABOUTME: Tests for the WebSocket feed server
// ABOUTME: Tests handshake, tick delivery, and session lifecycle
package feed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harmonia-editor/preview-go/internal/notes"
	"github.com/harmonia-editor/preview-go/internal/protocol"
)

// recordingUpdater captures Update calls for assertions.
type recordingUpdater struct {
	mu      sync.Mutex
	updates []protocol.Tick
}

func (r *recordingUpdater) Update(positionMillis int64, ns notes.Notes) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, protocol.Tick{PositionMs: positionMillis, Notes: ns})
}

func (r *recordingUpdater) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func (r *recordingUpdater) last() protocol.Tick {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

func dialTestServer(t *testing.T, s *Server) (*websocket.Conn, func()) {
	t.Helper()

	ts := httptest.NewServer(s.Handler())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/preview"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("dial failed: %v", err)
	}

	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func handshake(t *testing.T, conn *websocket.Conn) protocol.PreviewHello {
	t.Helper()

	hello := protocol.Message{
		Type:    "editor/hello",
		Payload: protocol.EditorHello{Name: "test-editor", Version: ProtocolVersion},
	}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("failed to send hello: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply protocol.Message
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read reply: %v", err)
	}
	if reply.Type != "preview/hello" {
		t.Fatalf("expected preview/hello, got %s", reply.Type)
	}

	payload, _ := json.Marshal(reply.Payload)
	var ph protocol.PreviewHello
	if err := json.Unmarshal(payload, &ph); err != nil {
		t.Fatalf("failed to parse preview/hello: %v", err)
	}
	return ph
}

func TestNewServerRequiresUpdater(t *testing.T) {
	if _, err := NewServer(Config{}, nil); err == nil {
		t.Error("expected error for nil updater")
	}
}

func TestHandshakeAssignsSession(t *testing.T) {
	rec := &recordingUpdater{}
	s, err := NewServer(Config{Name: "test-preview"}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conn, cleanup := dialTestServer(t, s)
	defer cleanup()

	ph := handshake(t, conn)
	if ph.SessionID == "" {
		t.Error("expected a session ID")
	}
	if ph.Name != "test-preview" {
		t.Errorf("expected server name 'test-preview', got '%s'", ph.Name)
	}
}

func TestTickReachesUpdater(t *testing.T) {
	rec := &recordingUpdater{}
	s, err := NewServer(Config{}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conn, cleanup := dialTestServer(t, s)
	defer cleanup()
	handshake(t, conn)

	tick := protocol.Message{
		Type: "editor/tick",
		Payload: protocol.Tick{
			PositionMs: 1500,
			Notes: []notes.TimedNote{
				{Note: 26, Begin: 2.0, Length: 0.5},
				{Note: 24, Begin: 0.0, Length: 0.5},
			},
		},
	}
	if err := conn.WriteJSON(tick); err != nil {
		t.Fatalf("failed to send tick: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 update, got %d", rec.count())
	}

	got := rec.last()
	if got.PositionMs != 1500 {
		t.Errorf("expected position 1500, got %d", got.PositionMs)
	}
	if len(got.Notes) != 2 || got.Notes[0].Begin != 0.0 {
		t.Errorf("expected sorted notes, got %+v", got.Notes)
	}
}

func TestTickBeforeHelloRejected(t *testing.T) {
	rec := &recordingUpdater{}
	s, err := NewServer(Config{}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conn, cleanup := dialTestServer(t, s)
	defer cleanup()

	tick := protocol.Message{
		Type:    "editor/tick",
		Payload: protocol.Tick{PositionMs: 100},
	}
	if err := conn.WriteJSON(tick); err != nil {
		t.Fatalf("failed to send tick: %v", err)
	}

	// The server drops the connection without ever calling the updater.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to be closed")
	}
	if rec.count() != 0 {
		t.Errorf("expected no updates, got %d", rec.count())
	}
}

func TestGoodbyeClosesSession(t *testing.T) {
	rec := &recordingUpdater{}
	s, err := NewServer(Config{}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conn, cleanup := dialTestServer(t, s)
	defer cleanup()
	handshake(t, conn)

	deadline := time.Now().Add(time.Second)
	for len(s.Sessions()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(s.Sessions()) != 1 {
		t.Fatalf("expected 1 session, got %d", len(s.Sessions()))
	}

	bye := protocol.Message{Type: "editor/goodbye", Payload: protocol.Goodbye{Reason: "done"}}
	if err := conn.WriteJSON(bye); err != nil {
		t.Fatalf("failed to send goodbye: %v", err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for len(s.Sessions()) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := len(s.Sessions()); n != 0 {
		t.Errorf("expected 0 sessions after goodbye, got %d", n)
	}
}
