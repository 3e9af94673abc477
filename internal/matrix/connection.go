package matrix

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"github.com/alexjbarnes/matrix-sync/internal/device"
	mxerrors "github.com/alexjbarnes/matrix-sync/internal/errors"
	"github.com/alexjbarnes/matrix-sync/internal/state"
)

const (
	// eventChannelSize bounds the number of pending messages between the
	// sync loop and the dispatcher. A full channel suspends the producer;
	// it never drops.
	eventChannelSize = 1000

	// clientDisplayName is the device display name sent on login.
	clientDisplayName = "matrix-sync"
)

// Config describes one session to one homeserver.
type Config struct {
	// Server is the configured name of this homeserver, used for log and
	// storage scoping. Homeserver is its base URL.
	Server     string
	Homeserver string

	Username string
	Password string

	Devices *device.Store
	State   *state.State
	Logger  *slog.Logger
}

func (c Config) validate() error {
	if c.Server == "" {
		return fmt.Errorf("server name is required")
	}
	if c.Homeserver == "" {
		return fmt.Errorf("homeserver URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Devices == nil {
		return fmt.Errorf("device store is required")
	}
	if c.State == nil {
		return fmt.Errorf("state store is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Connection is one active session. It owns the network execution context:
// the sync loop and every request issued through the bridge run under it,
// and Close tears all of it down.
type Connection struct {
	client protocolClient
	cfg    Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	events   chan item
	loopDone chan struct{}
	tasks    sync.WaitGroup

	mu            sync.Mutex
	membersKnown  map[id.RoomID]bool
	loggedInUser  id.UserID
	loggedInValid bool
}

// Connect builds the protocol client for cfg and starts the session's sync
// loop. The returned Connection must be Closed to release the network
// context.
func Connect(cfg Config) (*Connection, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid connection config: %w", err)
	}

	client, err := mautrix.NewClient(cfg.Homeserver, "", "")
	if err != nil {
		return nil, fmt.Errorf("creating protocol client: %w", err)
	}

	return connect(cfg, client), nil
}

// connect wires an existing protocol client. Split from Connect so tests
// can substitute the client.
func connect(cfg Config, client protocolClient) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		client:       client,
		cfg:          cfg,
		logger:       cfg.Logger,
		ctx:          ctx,
		cancel:       cancel,
		events:       make(chan item, eventChannelSize),
		loopDone:     make(chan struct{}),
		membersKnown: make(map[id.RoomID]bool),
	}

	go c.syncLoop()

	return c
}

// Close tears down the network context. The sync loop and any in-flight
// request or membership fetch stop; pending bridge calls fail with
// ErrConnectionClosed. No further messages are produced after Close returns.
func (c *Connection) Close() {
	c.cancel()
	<-c.loopDone
	c.tasks.Wait()
}

// UserID returns the authenticated user, once login has completed.
func (c *Connection) UserID() (id.UserID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loggedInUser, c.loggedInValid
}

// emit pushes a message into the event channel, suspending while the
// channel is full. It reports false once the connection is torn down, which
// the sync loop treats as a terminal condition.
func (c *Connection) emit(msg ClientMessage) bool {
	select {
	case <-c.ctx.Done():
		c.logger.Info("event channel consumer gone, stopping sync loop")
		return false
	default:
	}

	select {
	case c.events <- item{msg: msg}:
		return true
	case <-c.ctx.Done():
		c.logger.Info("event channel consumer gone, stopping sync loop")
		return false
	}
}

// emitErr pushes a terminal error into the event channel.
func (c *Connection) emitErr(err error) {
	select {
	case <-c.ctx.Done():
		return
	default:
	}

	select {
	case c.events <- item{err: err}:
	case <-c.ctx.Done():
	}
}

// run executes fn on the connection's network context on behalf of a
// caller in the cooperative domain. Exactly one execution per call; if the
// connection is torn down before fn completes, the caller gets
// ErrConnectionClosed rather than hanging on a result that will never
// arrive.
func run[T any](ctx context.Context, c *Connection, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	select {
	case <-c.ctx.Done():
		return zero, mxerrors.ErrConnectionClosed
	default:
	}

	type outcome struct {
		value T
		err   error
	}

	// Buffered so the worker never blocks publishing after the caller
	// has given up.
	results := make(chan outcome, 1)

	go func() {
		value, err := fn(c.ctx)
		results <- outcome{value: value, err: err}
	}()

	select {
	case r := <-results:
		return r.value, r.err
	case <-c.ctx.Done():
		return zero, mxerrors.ErrConnectionClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// sleep waits for d or until teardown, whichever comes first. Reports false
// on teardown.
func (c *Connection) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}
