// Package server holds the in-process model a session feeds: the login
// identity, the known rooms with their names, members, and a timeline tail.
// It is the consumer side of the dispatcher and deliberately small.
package server

import (
	"log/slog"
	"sync"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/alexjbarnes/matrix-sync/internal/matrix"
)

// timelineTail caps how many timeline events are retained per room.
const timelineTail = 100

// Room is the tracked state of one joined room.
type Room struct {
	ID       id.RoomID
	Name     string
	Members  map[id.UserID]string
	Timeline []*event.Event
	Restored bool
}

// Server is one configured homeserver session and its room model. The
// dispatcher mutates it sequentially; the lock exists for readers on other
// goroutines (registry lookups, the CLI).
type Server struct {
	name   string
	conn   *matrix.Connection
	logger *slog.Logger

	mu       sync.RWMutex
	userID   id.UserID
	deviceID id.DeviceID
	loggedIn bool
	rooms    map[id.RoomID]*Room
}

var _ matrix.EventHandler = (*Server)(nil)

func New(name string, conn *matrix.Connection, logger *slog.Logger) *Server {
	return &Server{
		name:   name,
		conn:   conn,
		logger: logger,
		rooms:  make(map[id.RoomID]*Room),
	}
}

// Name returns the configured server name.
func (s *Server) Name() string {
	return s.name
}

// Connection returns the session's connection, for issuing requests and
// the key import/export commands.
func (s *Server) Connection() *matrix.Connection {
	return s.conn
}

// UserID returns the authenticated user once login has been applied.
func (s *Server) UserID() (id.UserID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userID, s.loggedIn
}

// Room returns a snapshot reference for one room.
func (s *Server) Room(roomID id.RoomID) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	return room, ok
}

// RoomCount returns how many rooms are tracked.
func (s *Server) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}

func (s *Server) room(roomID id.RoomID) *Room {
	if room, ok := s.rooms[roomID]; ok {
		return room
	}

	room := &Room{
		ID:      roomID,
		Members: make(map[id.UserID]string),
	}
	s.rooms[roomID] = room

	return room
}

func (s *Server) HandleLoginResult(m matrix.LoginResult) {
	s.mu.Lock()
	s.userID = m.UserID
	s.deviceID = m.DeviceID
	s.loggedIn = true
	s.mu.Unlock()

	s.logger.Info("session established",
		"user_id", m.UserID,
		"device_id", m.DeviceID)
}

func (s *Server) HandleRestoredRoom(m matrix.RestoredRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.room(m.RoomID).Restored = true
}

func (s *Server) HandleRoomStateEvent(m matrix.RoomStateEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.room(m.RoomID)
	switch m.Event.Type {
	case event.StateRoomName:
		if content, ok := m.Event.Content.Parsed.(*event.RoomNameEventContent); ok {
			room.Name = content.Name
		}
	case event.StateMember:
		applyMember(room, m.Event)
	}
}

func (s *Server) HandleRoomTimelineEvent(m matrix.RoomTimelineEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.room(m.RoomID)
	room.Timeline = append(room.Timeline, m.Event)
	if len(room.Timeline) > timelineTail {
		room.Timeline = room.Timeline[len(room.Timeline)-timelineTail:]
	}
}

func (s *Server) HandleRoomMembers(m matrix.RoomMembers) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.room(m.RoomID)
	for _, evt := range m.Members {
		applyMember(room, evt)
	}
}

func (s *Server) HandleError(err error) {
	s.logger.Error("session ended", "error", err)
}

func applyMember(room *Room, evt *event.Event) {
	content, ok := evt.Content.Parsed.(*event.MemberEventContent)
	if !ok {
		return
	}

	userID := id.UserID(evt.GetStateKey())
	switch content.Membership {
	case event.MembershipJoin:
		room.Members[userID] = content.Displayname
	case event.MembershipLeave, event.MembershipBan:
		delete(room.Members, userID)
	}
}
