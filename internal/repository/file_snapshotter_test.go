package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityevents/pkg/logger"
)

func newTestFileSnapshotter(t *testing.T) *FileSnapshotter {
	t.Helper()
	snap, err := NewFileSnapshotter(filepath.Join(t.TempDir(), "data"), logger.Nop())
	require.NoError(t, err)
	return snap
}

func TestFileSnapshotterReadMissing(t *testing.T) {
	snap := newTestFileSnapshotter(t)

	data, err := snap.Read("users.json")
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileSnapshotterWriteReplacesWholeFile(t *testing.T) {
	snap := newTestFileSnapshotter(t)

	require.NoError(t, snap.Write("users.json", []byte(`["a much longer first version"]`)))
	require.NoError(t, snap.Write("users.json", []byte(`[]`)))

	data, err := snap.Read("users.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(snap.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileSnapshotterBackup(t *testing.T) {
	snap := newTestFileSnapshotter(t)
	snap.now = func() time.Time { return time.UnixMilli(1700000000000) }

	require.NoError(t, snap.Write("events.json", []byte("garbage")))

	path, err := snap.Backup("events.json")
	require.NoError(t, err)
	assert.Equal(t, snap.Path("events.json.backup.1700000000000"), path)

	copied, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(copied))

	_, err = snap.Backup("missing.json")
	assert.Error(t, err)
}
