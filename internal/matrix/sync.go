package matrix

import (
	"fmt"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	mxerrors "github.com/alexjbarnes/matrix-sync/internal/errors"
)

const (
	// syncTimeout is the server-side long-poll bound per sync request.
	syncTimeout = 30 * time.Second

	// syncRetryDelay is how long the loop waits after a failed poll
	// before trying again.
	syncRetryDelay = 5 * time.Second

	// stateEventLimit caps the state events returned per room in a sync
	// response; full membership arrives lazily via per-room fetches.
	stateEventLimit = 10
)

// syncLoop drives the session through its two phases: bootstrap
// (authenticate, persist the device identity, announce previously joined
// rooms) and streaming (perpetual long-polling). It exits only on teardown
// or a fatal local error, which it reports once through the event channel.
func (c *Connection) syncLoop() {
	defer close(c.loopDone)

	if !c.bootstrap() {
		return
	}

	c.stream()
}

func (c *Connection) bootstrap() bool {
	deviceID, err := c.cfg.Devices.Load(c.cfg.Username)
	if err != nil {
		c.emitErr(fmt.Errorf("loading device identity: %w", err))
		return false
	}
	firstLogin := deviceID == ""

	resp, err := c.client.Login(c.ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: c.cfg.Username,
		},
		Password:                 c.cfg.Password,
		DeviceID:                 id.DeviceID(deviceID),
		InitialDeviceDisplayName: clientDisplayName,
		StoreCredentials:         true,
	})
	if err != nil {
		if c.ctx.Err() != nil {
			return false
		}
		c.emitErr(fmt.Errorf("%w: %v", mxerrors.ErrLoginFailed, err))
		return false
	}

	// Without a durable identity a restart would look like a fresh login
	// and desynchronize state, so a failed write ends the session.
	if err := c.cfg.Devices.Save(c.cfg.Username, resp.DeviceID.String()); err != nil {
		c.emitErr(fmt.Errorf("saving device identity: %w", err))
		return false
	}

	c.mu.Lock()
	c.loggedInUser = resp.UserID
	c.loggedInValid = true
	c.mu.Unlock()

	c.logger.Info("logged in",
		"user_id", resp.UserID,
		"device_id", resp.DeviceID,
		"first_login", firstLogin)

	if !c.emit(LoginResult{UserID: resp.UserID, DeviceID: resp.DeviceID}) {
		return false
	}

	if !firstLogin && !c.restoreRooms() {
		return false
	}

	return true
}

// restoreRooms announces every room the account was already joined to, so
// the consumer can rebuild them before the first sync response lands.
func (c *Connection) restoreRooms() bool {
	resp, err := c.client.JoinedRooms(c.ctx)
	if err != nil {
		if c.ctx.Err() != nil {
			return false
		}
		c.logger.Warn("listing joined rooms failed", "error", err)
		return true
	}

	for _, roomID := range resp.JoinedRooms {
		if !c.emit(RestoredRoom{RoomID: roomID}) {
			return false
		}
	}

	return true
}

func (c *Connection) stream() {
	filterID := c.ensureFilter()
	since := c.cfg.State.SyncToken(c.cfg.Server, c.cfg.Username)

	for {
		resp, err := c.client.SyncRequest(
			c.ctx,
			int(syncTimeout.Milliseconds()),
			since,
			filterID,
			false,
			event.PresenceOnline,
		)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}

			c.logger.Warn("sync request failed", "error", err)
			if !c.sleep(syncRetryDelay) {
				return
			}
			continue
		}

		if !c.processSync(resp) {
			return
		}

		since = resp.NextBatch
		if err := c.cfg.State.SetSyncToken(c.cfg.Server, c.cfg.Username, since); err != nil {
			c.logger.Warn("persisting sync token failed", "error", err)
		}
	}
}

// ensureFilter reuses the previously negotiated sync filter, uploading a
// new one only when none is stored. The filter asks for lazily loaded
// membership and a small state page per room.
func (c *Connection) ensureFilter() string {
	if filterID := c.cfg.State.FilterID(c.cfg.Server, c.cfg.Username); filterID != "" {
		return filterID
	}

	resp, err := c.client.CreateFilter(c.ctx, &mautrix.Filter{
		Room: &mautrix.RoomFilter{
			State: &mautrix.FilterPart{
				LazyLoadMembers: true,
				Limit:           stateEventLimit,
			},
			Timeline: &mautrix.FilterPart{
				LazyLoadMembers: true,
			},
		},
	})
	if err != nil {
		c.logger.Warn("creating sync filter failed, syncing unfiltered", "error", err)
		return ""
	}

	if err := c.cfg.State.SetFilterID(c.cfg.Server, c.cfg.Username, resp.FilterID); err != nil {
		c.logger.Warn("persisting filter ID failed", "error", err)
	}

	return resp.FilterID
}

// processSync turns one sync response into channel messages, preserving the
// server's per-room ordering: state events first, then timeline events.
func (c *Connection) processSync(resp *mautrix.RespSync) bool {
	for roomID, room := range resp.Rooms.Join {
		for _, evt := range room.State.Events {
			if !c.emit(RoomStateEvent{RoomID: roomID, Event: evt}) {
				return false
			}
		}

		for _, evt := range room.Timeline.Events {
			if !c.emit(RoomTimelineEvent{RoomID: roomID, Event: evt}) {
				return false
			}
		}

		c.maybeFetchMembers(roomID)
	}

	return true
}

// maybeFetchMembers spawns a one-off membership fetch the first time a room
// appears. The fetch runs alongside continued polling; its RoomMembers
// message may interleave with later timeline events for the same room.
func (c *Connection) maybeFetchMembers(roomID id.RoomID) {
	c.mu.Lock()
	if c.membersKnown[roomID] {
		c.mu.Unlock()
		return
	}
	c.membersKnown[roomID] = true
	c.mu.Unlock()

	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()

		resp, err := c.client.Members(c.ctx, roomID)
		if err != nil {
			if c.ctx.Err() == nil {
				c.logger.Warn("fetching room members failed",
					"room_id", roomID,
					"error", err)
			}
			return
		}

		c.emit(RoomMembers{RoomID: roomID, Members: resp.Chunk})
	}()
}
