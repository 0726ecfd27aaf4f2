// ABOUTME: WebSocket feed server for remote editor ticks
// ABOUTME: Accepts editor sessions and forwards position/note updates
package feed

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/harmonia-editor/preview-go/internal/notes"
	"github.com/harmonia-editor/preview-go/internal/protocol"
)

// ProtocolVersion is the feed protocol version we implement.
const ProtocolVersion = 1

const helloTimeout = 5 * time.Second

// Updater receives position/note updates from the feed. The preview
// scheduler satisfies this.
type Updater interface {
	Update(positionMillis int64, ns notes.Notes)
}

// Config configures a feed server.
type Config struct {
	// Addr to listen on, e.g. ":8937".
	Addr string

	// Name of this preview player for the handshake.
	Name string
}

// Server accepts WebSocket connections from note editors and forwards
// their ticks to the scheduler. Sessions are independent; ticks from any
// session apply last-writer-wins, same as local updates.
type Server struct {
	config  Config
	updater Updater

	upgrader   websocket.Upgrader
	httpServer *http.Server
	mux        *http.ServeMux

	sessions   map[string]*session
	sessionsMu sync.Mutex

	stopOnce sync.Once
}

type session struct {
	ID   string
	Name string
	Conn *websocket.Conn
}

// NewServer creates a feed server delivering ticks to updater.
func NewServer(config Config, updater Updater) (*Server, error) {
	if updater == nil {
		return nil, fmt.Errorf("updater is required")
	}
	if config.Addr == "" {
		config.Addr = ":8937"
	}
	if config.Name == "" {
		config.Name = "preview-player"
	}

	s := &Server{
		config:  config,
		updater: updater,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux:      http.NewServeMux(),
		sessions: make(map[string]*session),
	}

	s.mux.HandleFunc("/preview", s.handleWebSocket)
	s.httpServer = &http.Server{Addr: config.Addr, Handler: s.mux}

	return s, nil
}

// Start begins listening. It returns once the listener goroutine is
// launched; use Stop to shut down.
func (s *Server) Start() error {
	log.Printf("Feed server listening on %s", s.config.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("Feed server error: %v", err)
		}
	}()

	return nil
}

// Handler returns the HTTP handler, for embedding in an existing server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Stop closes all sessions and shuts down the listener. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.sessionsMu.Lock()
		for _, sess := range s.sessions {
			sess.Conn.Close()
		}
		s.sessions = make(map[string]*session)
		s.sessionsMu.Unlock()

		s.httpServer.Close()
		log.Printf("Feed server stopped")
	})
}

// Sessions returns the IDs of connected editor sessions.
func (s *Server) Sessions() []string {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New editor connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection manages one editor session: handshake, then a tick
// loop until the editor says goodbye or the connection drops.
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}
	if msg.Type != "editor/hello" {
		log.Printf("Expected editor/hello, got %s", msg.Type)
		return
	}

	var hello protocol.EditorHello
	if err := decodePayload(msg.Payload, &hello); err != nil {
		log.Printf("Error parsing editor hello: %v", err)
		return
	}

	sess := &session{
		ID:   uuid.New().String(),
		Name: hello.Name,
		Conn: conn,
	}

	reply := protocol.Message{
		Type: "preview/hello",
		Payload: protocol.PreviewHello{
			SessionID: sess.ID,
			Name:      s.config.Name,
			Version:   ProtocolVersion,
		},
	}
	if err := conn.WriteJSON(reply); err != nil {
		log.Printf("Error sending preview/hello: %v", err)
		return
	}

	s.sessionsMu.Lock()
	s.sessions[sess.ID] = sess
	s.sessionsMu.Unlock()

	log.Printf("Editor session opened: %s (ID: %s)", sess.Name, sess.ID)

	defer func() {
		s.sessionsMu.Lock()
		delete(s.sessions, sess.ID)
		s.sessionsMu.Unlock()
		log.Printf("Editor session closed: %s", sess.ID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		switch msg.Type {
		case "editor/tick":
			var tick protocol.Tick
			if err := decodePayload(msg.Payload, &tick); err != nil {
				log.Printf("Error parsing tick: %v", err)
				continue
			}

			ns := notes.Notes(tick.Notes)
			ns.Sort()
			s.updater.Update(tick.PositionMs, ns)

		case "editor/goodbye":
			return

		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

// decodePayload re-marshals an interface{} payload into a typed struct.
func decodePayload(payload interface{}, dst interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
