package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()

	_, err := s.Get("missing")
	assert.Equal(t, ErrNotFound, err)

	require.NoError(t, s.Set("k", "v1"))
	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Set("k", "v2"))
	v, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete("k"))
	_, err = s.Get("k")
	assert.Equal(t, ErrNotFound, err)

	// Deleting an absent key is fine.
	require.NoError(t, s.Delete("k"))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	testStore(t, s)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyUserToken, "tok"))
	require.NoError(t, s.Set(KeyUserData, `{"_id":"u1"}`))
	require.NoError(t, s.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	tok, err := s2.Get(KeyUserToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	data, err := s2.Get(KeyUserData)
	require.NoError(t, err)
	assert.Equal(t, `{"_id":"u1"}`, data)
}
