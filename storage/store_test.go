package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testSnapshot struct {
	Height  uint64            `json:"height"`
	Entries map[string]string `json:"entries"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadSnapshotEmpty(t *testing.T) {
	store := openTestStore(t)
	var snap testSnapshot
	require.ErrorIs(t, store.LoadSnapshot(&snap), ErrNoSnapshot)
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	store := openTestStore(t)
	want := testSnapshot{Height: 42, Entries: map[string]string{"a": "1", "b": "2"}}
	require.NoError(t, store.SaveSnapshot(want))

	var got testSnapshot
	require.NoError(t, store.LoadSnapshot(&got))
	require.Equal(t, want, got)

	// Saving again replaces the previous image.
	want.Height = 43
	require.NoError(t, store.SaveSnapshot(want))
	require.NoError(t, store.LoadSnapshot(&got))
	require.Equal(t, uint64(43), got.Height)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("   ")
	require.Error(t, err)
}
