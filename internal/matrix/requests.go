package matrix

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/alexjbarnes/matrix-sync/internal/auth"
	"github.com/alexjbarnes/matrix-sync/internal/keys"
)

const (
	// typingTimeout is the server-side hint for how long a typing
	// indicator stays visible without a refresh.
	typingTimeout = 4 * time.Second

	// historyPageSize is the number of events fetched per backward
	// pagination request.
	historyPageSize = 20
)

// SendMessage sends a text message to a room. txnID is the idempotency
// token the server deduplicates retried sends by; pass empty to have one
// generated.
func (c *Connection) SendMessage(ctx context.Context, roomID id.RoomID, body, txnID string) (id.EventID, error) {
	if txnID == "" {
		txnID = uuid.NewString()
	}

	content := &event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    body,
	}

	resp, err := run(ctx, c, func(ctx context.Context) (*mautrix.RespSendEvent, error) {
		return c.client.SendMessageEvent(ctx, roomID, event.EventMessage, content,
			mautrix.ReqSendEvent{TransactionID: txnID})
	})
	if err != nil {
		return "", fmt.Errorf("sending message to %s: %w", roomID, err)
	}

	return resp.EventID, nil
}

// Devices lists the account's registered devices.
func (c *Connection) Devices(ctx context.Context) ([]mautrix.RespDeviceInfo, error) {
	resp, err := run(ctx, c, func(ctx context.Context) (*mautrix.RespDevicesInfo, error) {
		return c.client.GetDevicesInfo(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	return resp.Devices, nil
}

// DeleteDevices removes the given devices, proving identity through the
// interactive password stage. ia carries the continuation session when the
// server demanded a multi-stage flow with a prior 401; nil proves identity
// with the session's own credentials.
func (c *Connection) DeleteDevices(ctx context.Context, deviceIDs []id.DeviceID, ia *auth.Interactive) error {
	if ia == nil {
		ia = &auth.Interactive{
			User:     c.cfg.Username,
			Password: c.cfg.Password,
		}
	}
	authData := ia.AuthData()

	_, err := run(ctx, c, func(ctx context.Context) (struct{}, error) {
		for _, deviceID := range deviceIDs {
			err := c.client.DeleteDevice(ctx, deviceID, &mautrix.ReqDeleteDevice{Auth: authData})
			if err != nil {
				return struct{}{}, fmt.Errorf("deleting device %s: %w", deviceID, err)
			}
		}

		return struct{}{}, nil
	})

	return err
}

// History fetches one page of events strictly older than the given cursor.
func (c *Connection) History(ctx context.Context, roomID id.RoomID, from string) (*mautrix.RespMessages, error) {
	resp, err := run(ctx, c, func(ctx context.Context) (*mautrix.RespMessages, error) {
		return c.client.Messages(ctx, roomID, from, "", mautrix.DirectionBackward, nil, historyPageSize)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching history for %s: %w", roomID, err)
	}

	return resp, nil
}

// SendTyping sets or clears the typing indicator for a room. A set
// indicator expires server-side after the timeout hint unless refreshed.
func (c *Connection) SendTyping(ctx context.Context, roomID id.RoomID, typing bool) error {
	_, err := run(ctx, c, func(ctx context.Context) (*mautrix.RespTyping, error) {
		return c.client.UserTyping(ctx, roomID, typing, typingTimeout)
	})
	if err != nil {
		return fmt.Errorf("setting typing indicator for %s: %w", roomID, err)
	}

	return nil
}

// ImportKeys reads a passphrase-protected key export file and stores its
// sessions. Fire and forget: the work runs in the background under the
// connection's context and reports only through the log.
func (c *Connection) ImportKeys(path, passphrase string) {
	if c.ctx.Err() != nil {
		return
	}

	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()

		sessions, err := keys.ReadFile(path, passphrase)
		if err != nil {
			c.logger.Error("importing keys failed", "path", path, "error", err)
			return
		}

		for _, session := range sessions {
			err := c.cfg.State.SetRoomKey(c.cfg.Server, c.cfg.Username, session.SessionID, session.Raw)
			if err != nil {
				c.logger.Error("storing imported key failed",
					"session_id", session.SessionID,
					"error", err)
				return
			}
		}

		c.logger.Info("imported keys", "path", path, "count", len(sessions))
	}()
}

// ExportKeys writes every stored session to a passphrase-protected export
// file. Fire and forget, like ImportKeys.
func (c *Connection) ExportKeys(path, passphrase string) {
	if c.ctx.Err() != nil {
		return
	}

	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()

		stored, err := c.cfg.State.AllRoomKeys(c.cfg.Server, c.cfg.Username)
		if err != nil {
			c.logger.Error("loading stored keys failed", "error", err)
			return
		}

		sessions := make([]json.RawMessage, 0, len(stored))
		for _, raw := range stored {
			sessions = append(sessions, raw)
		}

		if err := keys.WriteFile(path, passphrase, sessions); err != nil {
			c.logger.Error("exporting keys failed", "path", path, "error", err)
			return
		}

		c.logger.Info("exported keys", "path", path, "count", len(sessions))
	}()
}
