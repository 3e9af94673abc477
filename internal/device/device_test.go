package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

// --- Load ---

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	s := testStore(t)

	id, err := s.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestLoad_EmptyFileMeansNoIdentity(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.WriteFile(s.Path("alice"), []byte(""), 0o600))

	id, err := s.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestLoad_TrimsTrailingNewline(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.WriteFile(s.Path("alice"), []byte("DEVICEID123\n"), 0o600))

	id, err := s.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, "DEVICEID123", id)
}

func TestLoad_UnreadableDirPropagatesError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Save("alice", "DEVICEID123"))
	require.NoError(t, os.Chmod(s.Path("alice"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(s.Path("alice"), 0o600) })

	_, err := s.Load("alice")
	assert.Error(t, err)
}

// --- Save ---

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Save("alice", "DEVICEID123"))

	id, err := s.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, "DEVICEID123", id)
}

func TestSave_OverwritesPreviousIdentity(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Save("alice", "OLD"))
	require.NoError(t, s.Save("alice", "NEW"))

	id, err := s.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, "NEW", id)
}

func TestSave_CreatesStorageDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "servers", "matrix.org")
	s := NewStore(dir)

	require.NoError(t, s.Save("alice", "DEVICEID123"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSave_UsersDoNotCollide(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Save("alice", "AAA"))
	require.NoError(t, s.Save("bob", "BBB"))

	a, err := s.Load("alice")
	require.NoError(t, err)
	b, err := s.Load("bob")
	require.NoError(t, err)
	assert.Equal(t, "AAA", a)
	assert.Equal(t, "BBB", b)
}

func TestPath_UsesFixedExtension(t *testing.T) {
	s := NewStore("/srv/matrix.org")
	assert.Equal(t, filepath.Join("/srv/matrix.org", "alice.device_id"), s.Path("alice"))
}
