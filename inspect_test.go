package hma

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInspectMissingHmaFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "missing.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("db"), 0644))

	_, err := Inspect(dbPath, testOpts()...)
	require.Error(t, err)
	require.True(t, IsCantOpen(err))
}

func TestInspectLiveConnection(t *testing.T) {
	t.Parallel()

	dbPath, pager := newTestDB(t)

	a, err := Connect(pager, testOpts()...)
	require.NoError(t, err)
	defer a.Disconnect(nil)

	require.NoError(t, a.Lock(3, true, true))

	word, readers, writer, err := InspectPage(dbPath, 3, testOpts()...)
	require.NoError(t, err)
	require.Equal(t, a.clientID, writer)
	require.Contains(t, readers, a.clientID)
	require.NotEqual(t, uint32(0), word)
}
