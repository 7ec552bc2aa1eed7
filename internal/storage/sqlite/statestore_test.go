package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *StateStore {
	t.Helper()
	store, err := NewStateStore(filepath.Join(t.TempDir(), "state", "briefcast.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSeenAndMarkSeen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "gmail://messages/1/attachments/a")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkSeen(ctx, "gmail://messages/1/attachments/a", time.Now()))

	seen, err = store.Seen(ctx, "gmail://messages/1/attachments/a")
	require.NoError(t, err)
	assert.True(t, seen)

	// Other keys stay unseen.
	seen, err = store.Seen(ctx, "gmail://messages/2/attachments/b")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMarkSeen_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkSeen(ctx, "https://example.com/story", time.Now()))
	require.NoError(t, store.MarkSeen(ctx, "https://example.com/story", time.Now()))

	seen, err := store.Seen(ctx, "https://example.com/story")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkSeen(ctx, "old", time.Now().Add(-72*time.Hour)))
	require.NoError(t, store.MarkSeen(ctx, "fresh", time.Now()))

	removed, err := store.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	seen, err := store.Seen(ctx, "old")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = store.Seen(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestStatePersistsAcrossOpens(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "briefcast.db")
	ctx := context.Background()

	first, err := NewStateStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.MarkSeen(ctx, "gcal://primary/events/e1", time.Now()))
	require.NoError(t, first.Close())

	second, err := NewStateStore(dbPath)
	require.NoError(t, err)
	defer second.Close()

	seen, err := second.Seen(ctx, "gcal://primary/events/e1")
	require.NoError(t, err)
	assert.True(t, seen)
}
