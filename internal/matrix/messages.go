package matrix

import (
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// ClientMessage is the closed set of payloads the sync loop pushes through
// the event channel. Every room-scoped variant carries its room ID
// explicitly; the dispatcher never infers room context from ordering.
type ClientMessage interface {
	clientMessage()
}

// LoginResult reports a successful login, including the device identity the
// server confirmed or issued.
type LoginResult struct {
	UserID   id.UserID
	DeviceID id.DeviceID
}

// RoomStateEvent carries one state event for a joined room.
type RoomStateEvent struct {
	RoomID id.RoomID
	Event  *event.Event
}

// RoomTimelineEvent carries one timeline event for a joined room.
type RoomTimelineEvent struct {
	RoomID id.RoomID
	Event  *event.Event
}

// RoomMembers carries the full membership list of a room, produced by an
// independently spawned fetch that may interleave with later sync output.
type RoomMembers struct {
	RoomID  id.RoomID
	Members []*event.Event
}

// RestoredRoom announces a room the account was already joined to before
// this session started, so the consumer can rebuild it ahead of the first
// sync response.
type RestoredRoom struct {
	RoomID id.RoomID
}

func (LoginResult) clientMessage()       {}
func (RoomStateEvent) clientMessage()    {}
func (RoomTimelineEvent) clientMessage() {}
func (RoomMembers) clientMessage()       {}
func (RestoredRoom) clientMessage()      {}

// item is what actually travels the event channel: a message, or a terminal
// error from the sync loop.
type item struct {
	msg ClientMessage
	err error
}
