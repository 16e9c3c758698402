package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_GetMissingKey(t *testing.T) {
	s := openTestDB(t)

	_, ok, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_SetGet(t *testing.T) {
	s := openTestDB(t)

	require.NoError(t, s.Set("k", "v1"))

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestSQLite_Set_Overwrites(t *testing.T) {
	s := openTestDB(t)

	require.NoError(t, s.Set("k", "v1"))
	require.NoError(t, s.Set("k", "v2"))

	v, _, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestSQLite_Delete(t *testing.T) {
	s := openTestDB(t)

	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Delete("k"))

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting a missing key is fine
	assert.NoError(t, s.Delete("k"))
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("cart.session", "sess-1"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get("cart.session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sess-1", v)
}
