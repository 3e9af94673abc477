package matrix

import (
	"context"
	"log/slog"
)

// EventHandler is the callback surface the dispatcher drives. All methods
// are invoked sequentially from a single goroutine, so implementations
// mutate their state without locking.
type EventHandler interface {
	HandleLoginResult(LoginResult)
	HandleRoomStateEvent(RoomStateEvent)
	HandleRoomTimelineEvent(RoomTimelineEvent)
	HandleRoomMembers(RoomMembers)
	HandleRestoredRoom(RestoredRoom)
	HandleError(error)
}

// HandlerRef resolves the owning handler before each message. The
// dispatcher does not own the handler's lifetime; a nil return means it is
// gone and the dispatcher stops rather than applying messages to nothing.
type HandlerRef func() EventHandler

// Dispatcher pulls messages off a connection's event channel and applies
// them, one at a time and in arrival order, to the owning handler.
type Dispatcher struct {
	conn   *Connection
	ref    HandlerRef
	logger *slog.Logger
}

func NewDispatcher(conn *Connection, ref HandlerRef, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		conn:   conn,
		ref:    ref,
		logger: logger,
	}
}

// Run consumes messages until the context is cancelled, the connection is
// torn down, the handler disappears, or a terminal error arrives. Terminal
// errors are surfaced to the handler once before the loop ends.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		// Once teardown has begun, buffered messages are dropped rather
		// than applied; without this check the select below could still
		// pick a buffered item over the closed context.
		if d.conn.ctx.Err() != nil {
			d.logger.Info("connection closed, stopping dispatcher")
			return nil
		}

		var it item

		select {
		case it = <-d.conn.events:
		case <-d.conn.ctx.Done():
			d.logger.Info("connection closed, stopping dispatcher")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

		handler := d.ref()
		if handler == nil {
			d.logger.Info("handler gone, stopping dispatcher")
			return nil
		}

		if it.err != nil {
			d.logger.Error("session failed", "error", it.err)
			handler.HandleError(it.err)
			return it.err
		}

		dispatch(handler, it.msg)
	}
}

func dispatch(handler EventHandler, msg ClientMessage) {
	switch m := msg.(type) {
	case LoginResult:
		handler.HandleLoginResult(m)
	case RoomStateEvent:
		handler.HandleRoomStateEvent(m)
	case RoomTimelineEvent:
		handler.HandleRoomTimelineEvent(m)
	case RoomMembers:
		handler.HandleRoomMembers(m)
	case RestoredRoom:
		handler.HandleRestoredRoom(m)
	}
}
