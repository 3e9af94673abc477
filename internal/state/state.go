// Package state persists per-session sync progress so a restart resumes the
// event stream instead of replaying it: the server-issued resumption token,
// the negotiated filter ID, and imported room keys.
package state

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// stateDirPerm is the permission mode for the storage directory.
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the state database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second
)

var (
	syncTokenKey = []byte("next_batch")
	filterIDKey  = []byte("filter_id")
)

func sessionBucket(server, username string) []byte {
	return []byte("session:" + server + ":" + username)
}

func roomKeysBucket(server, username string) []byte {
	return []byte("keys:" + server + ":" + username)
}

// State wraps a bbolt database for all persistent session state.
type State struct {
	db *bolt.DB
}

// Load opens the state database inside the given storage directory,
// creating it if it does not exist.
func Load(dir string) (*State, error) {
	return LoadAt(filepath.Join(dir, "state.db"))
}

// LoadAt opens a state database at the given path, creating it if it does
// not exist. Useful for tests that need an isolated database.
func LoadAt(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	return &State{db: db}, nil
}

// Close closes the database.
func (s *State) Close() error {
	return s.db.Close()
}

// SyncToken returns the persisted resumption token for a session, or empty
// string when the session has never synced.
func (s *State) SyncToken(server, username string) string {
	return s.sessionValue(server, username, syncTokenKey)
}

// SetSyncToken persists the resumption token for a session. Called after
// every sync response so a restart picks up exactly where the stream left off.
func (s *State) SetSyncToken(server, username, token string) error {
	return s.setSessionValue(server, username, syncTokenKey, token)
}

// FilterID returns the previously negotiated sync filter ID, or empty string
// when no filter has been uploaded yet.
func (s *State) FilterID(server, username string) string {
	return s.sessionValue(server, username, filterIDKey)
}

// SetFilterID persists the negotiated sync filter ID so later sessions reuse
// it instead of re-uploading the filter.
func (s *State) SetFilterID(server, username, filterID string) error {
	return s.setSessionValue(server, username, filterIDKey, filterID)
}

func (s *State) sessionValue(server, username string, key []byte) string {
	var value string

	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket(server, username))
		if b == nil {
			return nil
		}

		v := b.Get(key)
		if v != nil {
			value = string(v)
		}

		return nil
	})

	return value
}

func (s *State) setSessionValue(server, username string, key []byte, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(sessionBucket(server, username))
		if err != nil {
			return err
		}

		return b.Put(key, []byte(value))
	})
}

// SetRoomKey stores one imported room key session, keyed by its session ID.
// Re-importing a session overwrites the previous copy.
func (s *State) SetRoomKey(server, username, sessionID string, data json.RawMessage) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(roomKeysBucket(server, username))
		if err != nil {
			return err
		}

		return b.Put([]byte(sessionID), data)
	})
}

// AllRoomKeys returns every stored room key session for a session, keyed by
// session ID.
func (s *State) AllRoomKeys(server, username string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(roomKeysBucket(server, username))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			data := make(json.RawMessage, len(v))
			copy(data, v)
			result[string(k)] = data

			return nil
		})
	})

	return result, err
}
