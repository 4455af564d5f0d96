package socket

import (
	"context"
	"log"
	"sync"

	"pingou_server/models"
	"pingou_server/realtime"

	socketio "github.com/googollee/go-socket.io"
)

// Event names pushed to clients.
const (
	// EventConnectionNew carries the counterpart profile of one new connection.
	EventConnectionNew = "connection:new"
	// EventConnectionRefresh carries the authoritative full connection list.
	EventConnectionRefresh = "connection:refresh"
)

// Server wraps the socket.io server. A client joins with its user id and
// from then on receives connection-list updates for that user; behind each
// joined socket sits a realtime.Sync session that is torn down on
// disconnect.
type Server struct {
	IO *socketio.Server

	broker *realtime.Broker
	source realtime.ConnectionSource

	mu       sync.Mutex
	sessions map[string]*realtime.Sync
}

// NewServer initializes the Socket.IO server and its event handlers.
func NewServer(broker *realtime.Broker, source realtime.ConnectionSource) *Server {
	srv := &Server{
		IO:       socketio.NewServer(nil),
		broker:   broker,
		source:   source,
		sessions: make(map[string]*realtime.Sync),
	}

	srv.IO.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	srv.IO.OnEvent("/", "join", func(c socketio.Conn, userID string) {
		if userID == "" {
			log.Println("❌ Invalid user id in join request")
			return
		}
		log.Printf("👥 Socket %s joined as user %s", c.ID(), userID)
		c.Join(userRoom(userID))
		srv.startSession(c.ID(), userID)
	})

	srv.IO.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID())
		srv.closeSession(c.ID())
	})

	srv.IO.OnError("/", func(c socketio.Conn, err error) {
		log.Printf("Socket error: %v", err)
	})

	return srv
}

// Shutdown closes every live session and the underlying socket server.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*realtime.Sync)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
	return s.IO.Close()
}

func (s *Server) startSession(socketID, userID string) {
	session := realtime.NewSync(userID, s.source, s.broker, &roomEmitter{server: s.IO, userID: userID})
	session.Start(context.Background())

	s.mu.Lock()
	previous := s.sessions[socketID]
	s.sessions[socketID] = session
	s.mu.Unlock()

	// A socket re-joining as a different user replaces its session.
	if previous != nil {
		previous.Close()
	}
}

func (s *Server) closeSession(socketID string) {
	s.mu.Lock()
	session := s.sessions[socketID]
	delete(s.sessions, socketID)
	s.mu.Unlock()

	if session != nil {
		session.Close()
	}
}

// roomEmitter delivers one user's sync updates to that user's room.
type roomEmitter struct {
	server *socketio.Server
	userID string
}

func (e *roomEmitter) ConnectionAdded(profile models.UserProfile) {
	e.server.BroadcastToRoom("/", userRoom(e.userID), EventConnectionNew, profile)
}

func (e *roomEmitter) ConnectionsRefreshed(profiles []models.UserProfile) {
	e.server.BroadcastToRoom("/", userRoom(e.userID), EventConnectionRefresh, profiles)
}

func userRoom(userID string) string {
	return "user:" + userID
}
