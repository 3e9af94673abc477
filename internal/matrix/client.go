// Package matrix runs one authenticated session against a homeserver: a
// long-polling sync loop feeding an ordered event channel, a dispatcher
// applying those events to the owning server model, and a request bridge
// for user-initiated protocol calls.
package matrix

import (
	"context"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// protocolClient is the slice of the homeserver client API the session
// uses. *mautrix.Client satisfies it; tests substitute a mock.
type protocolClient interface {
	Login(ctx context.Context, req *mautrix.ReqLogin) (*mautrix.RespLogin, error)
	CreateFilter(ctx context.Context, filter *mautrix.Filter) (*mautrix.RespCreateFilter, error)
	SyncRequest(ctx context.Context, timeout int, since, filterID string, fullState bool, setPresence event.Presence) (*mautrix.RespSync, error)
	JoinedRooms(ctx context.Context) (*mautrix.RespJoinedRooms, error)
	Members(ctx context.Context, roomID id.RoomID, req ...mautrix.ReqMembers) (*mautrix.RespMembers, error)
	SendMessageEvent(ctx context.Context, roomID id.RoomID, eventType event.Type, contentJSON any, extra ...mautrix.ReqSendEvent) (*mautrix.RespSendEvent, error)
	Messages(ctx context.Context, roomID id.RoomID, from, to string, dir mautrix.Direction, filter *mautrix.FilterPart, limit int) (*mautrix.RespMessages, error)
	UserTyping(ctx context.Context, roomID id.RoomID, typing bool, timeout time.Duration) (*mautrix.RespTyping, error)
	GetDevicesInfo(ctx context.Context) (*mautrix.RespDevicesInfo, error)
	DeleteDevice(ctx context.Context, deviceID id.DeviceID, req *mautrix.ReqDeleteDevice) error
}

var _ protocolClient = (*mautrix.Client)(nil)
