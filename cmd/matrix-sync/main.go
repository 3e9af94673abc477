package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/alexjbarnes/matrix-sync/internal/config"
	"github.com/alexjbarnes/matrix-sync/internal/device"
	"github.com/alexjbarnes/matrix-sync/internal/keys"
	"github.com/alexjbarnes/matrix-sync/internal/logging"
	"github.com/alexjbarnes/matrix-sync/internal/matrix"
	"github.com/alexjbarnes/matrix-sync/internal/server"
	"github.com/alexjbarnes/matrix-sync/internal/state"
)

var Version = "dev"

func main() {
	// Handle the keys subcommand before starting any session.
	if len(os.Args) > 1 && os.Args[1] == "keys" {
		if err := runKeys(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)

	sessions, err := cfg.Sessions()
	if err != nil {
		return fmt.Errorf("resolving sessions: %w", err)
	}

	logger.Info("matrix-sync starting",
		slog.String("version", Version),
		slog.Int("sessions", len(sessions)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := server.NewRegistry()

	g, gctx := errgroup.WithContext(ctx)
	for _, session := range sessions {
		g.Go(func() error {
			return runSession(gctx, session, registry, logger)
		})
	}

	return g.Wait()
}

// runSession drives one homeserver session: connection, server model, and
// dispatcher, until the context ends or the session fails terminally.
func runSession(ctx context.Context, session config.Session, registry *server.Registry, logger *slog.Logger) error {
	logger = logging.ForServer(logger, session.Name)

	st, err := state.Load(session.StorageDir)
	if err != nil {
		return fmt.Errorf("loading state for %s: %w", session.Name, err)
	}
	defer st.Close()

	conn, err := matrix.Connect(matrix.Config{
		Server:     session.Name,
		Homeserver: session.Homeserver,
		Username:   session.Username,
		Password:   session.Password,
		Devices:    device.NewStore(session.StorageDir),
		State:      st,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", session.Name, err)
	}
	defer conn.Close()

	registry.Add(server.New(session.Name, conn, logger))
	defer registry.Remove(session.Name)

	dispatcher := matrix.NewDispatcher(conn, func() matrix.EventHandler {
		if s, ok := registry.Find(session.Name); ok {
			return s
		}
		return nil
	}, logger)

	if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("session %s: %w", session.Name, err)
	}

	return nil
}

// runKeys handles `keys import <path> [server]` and
// `keys export <path> [server]`. These operate on the named session's
// stored keys directly; no network session is started.
func runKeys(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: matrix-sync keys import|export <path> [server]")
	}
	action, path := args[0], args[1]

	serverName := ""
	if len(args) > 2 {
		serverName = args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	session, err := findSession(cfg, serverName)
	if err != nil {
		return err
	}

	passphrase := cfg.KeysPassphrase
	if passphrase == "" {
		passphrase, err = promptPassphrase()
		if err != nil {
			return err
		}
	}

	st, err := state.Load(session.StorageDir)
	if err != nil {
		return fmt.Errorf("loading state for %s: %w", session.Name, err)
	}
	defer st.Close()

	switch action {
	case "import":
		return importKeys(st, session, path, passphrase)
	case "export":
		return exportKeys(st, session, path, passphrase)
	default:
		return fmt.Errorf("unknown keys action %q (want import or export)", action)
	}
}

func findSession(cfg *config.Config, name string) (config.Session, error) {
	sessions, err := cfg.Sessions()
	if err != nil {
		return config.Session{}, fmt.Errorf("resolving sessions: %w", err)
	}

	if name == "" {
		return sessions[0], nil
	}

	for _, session := range sessions {
		if session.Name == name {
			return session, nil
		}
	}

	return config.Session{}, fmt.Errorf("no configured server named %q", name)
}

func promptPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "Enter passphrase: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", fmt.Errorf("no passphrase input")
	}

	passphrase := scanner.Text()
	if passphrase == "" {
		return "", fmt.Errorf("empty passphrase")
	}

	return passphrase, nil
}

func importKeys(st *state.State, session config.Session, path, passphrase string) error {
	sessions, err := keys.ReadFile(path, passphrase)
	if err != nil {
		return fmt.Errorf("reading key export: %w", err)
	}

	for _, s := range sessions {
		if err := st.SetRoomKey(session.Name, session.Username, s.SessionID, s.Raw); err != nil {
			return fmt.Errorf("storing session %s: %w", s.SessionID, err)
		}
	}

	fmt.Printf("imported %d sessions from %s\n", len(sessions), path)

	return nil
}

func exportKeys(st *state.State, session config.Session, path, passphrase string) error {
	stored, err := st.AllRoomKeys(session.Name, session.Username)
	if err != nil {
		return fmt.Errorf("loading stored keys: %w", err)
	}

	raw := make([]json.RawMessage, 0, len(stored))
	for _, data := range stored {
		raw = append(raw, data)
	}

	if err := keys.WriteFile(path, passphrase, raw); err != nil {
		return fmt.Errorf("writing key export: %w", err)
	}

	fmt.Printf("exported %d sessions to %s\n", len(raw), path)

	return nil
}
