package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	snap := newTestFileSnapshotter(t)
	repo := NewUserRepository(snap, "users.json", logger.Nop())

	users, err := repo.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, users)

	saved := []domain.User{
		{Name: "Ana", Email: "ana@x.com", Phone: "11999999999", City: "SP", Age: 30},
		{Name: "Bia", Email: "bia@x.com", Phone: "21988887777", City: "RJ", Age: 61},
	}
	require.NoError(t, repo.SaveAll(saved))

	loaded, err := NewUserRepository(snap, "users.json", logger.Nop()).LoadAll()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestUserRepositoryEmptyFile(t *testing.T) {
	snap := newTestFileSnapshotter(t)
	require.NoError(t, os.WriteFile(snap.Path("users.json"), []byte("  \n"), 0o644))

	users, err := NewUserRepository(snap, "users.json", logger.Nop()).LoadAll()
	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepositoryCorruptFileIsBackedUp(t *testing.T) {
	snap := newTestFileSnapshotter(t)
	snap.now = func() time.Time { return time.UnixMilli(42) }
	require.NoError(t, os.WriteFile(snap.Path("users.json"), []byte("{not json"), 0o644))

	users, err := NewUserRepository(snap, "users.json", logger.Nop()).LoadAll()
	assert.True(t, errors.Is(err, domain.ErrCorruptSnapshot))
	assert.NotNil(t, users)
	assert.Empty(t, users)

	backup, readErr := os.ReadFile(snap.Path("users.json.backup.42"))
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(backup))
}

func TestEventRepositoryRoundTripKeepsParticipants(t *testing.T) {
	snap := newTestFileSnapshotter(t)
	repo := NewEventRepository(snap, "events.json", logger.Nop())

	startsAt := time.Date(2026, 12, 24, 19, 30, 0, 0, time.UTC)
	e := domain.NewEvent("Christmas party", "Square 1", domain.CategoryParty, startsAt, "Bring snacks")
	e.ID = 3
	e.AddParticipant(domain.User{Name: "Ana", Email: "ana@x.com", Phone: "11999999999", City: "SP", Age: 30})

	empty := domain.NewEvent("Quiet talk", "Library", domain.CategoryTalk, startsAt.Add(time.Hour), "Books")
	empty.ID = 5

	require.NoError(t, repo.Save(domain.EventSnapshot{NextID: 9, Events: []domain.Event{e, empty}}))

	loaded, err := NewEventRepository(snap, "events.json", logger.Nop()).Load()
	require.NoError(t, err)

	assert.Equal(t, int64(9), loaded.NextID)
	require.Len(t, loaded.Events, 2)
	assert.Equal(t, int64(3), loaded.Events[0].ID)
	assert.True(t, loaded.Events[0].StartsAt.Equal(startsAt))
	assert.Equal(t, domain.CategoryParty, loaded.Events[0].Category)
	assert.Equal(t, e.Participants, loaded.Events[0].Participants)
	assert.NotNil(t, loaded.Events[1].Participants)
	assert.Empty(t, loaded.Events[1].Participants)
}

func TestEventRepositoryCorruptSnapshot(t *testing.T) {
	snap := newTestFileSnapshotter(t)
	require.NoError(t, os.WriteFile(filepath.Join(snap.dir, "events.json"), []byte(`{"events": 12}`), 0o644))

	loaded, err := NewEventRepository(snap, "events.json", logger.Nop()).Load()
	assert.True(t, errors.Is(err, domain.ErrCorruptSnapshot))
	assert.Empty(t, loaded.Events)

	matches, globErr := filepath.Glob(filepath.Join(snap.dir, "events.json.backup.*"))
	require.NoError(t, globErr)
	assert.Len(t, matches, 1)
}

type failingSnapshotter struct {
	FileSnapshotter
}

func (f *failingSnapshotter) Write(name string, data []byte) error {
	return errors.New("disk full")
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	snap := &failingSnapshotter{FileSnapshotter: *newTestFileSnapshotter(t)}

	err := NewUserRepository(snap, "users.json", logger.Nop()).SaveAll(nil)
	assert.True(t, errors.Is(err, domain.ErrPersistence))

	err = NewEventRepository(snap, "events.json", logger.Nop()).Save(domain.EventSnapshot{})
	assert.True(t, errors.Is(err, domain.ErrPersistence))
}
