package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_GetSetDelete(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := t.Context()

	_, err := store.Get(ctx, KeyAccountID)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyAccountID, "76561198000000000"))
	v, err := store.Get(ctx, KeyAccountID)
	require.NoError(t, err)
	assert.Equal(t, "76561198000000000", v)

	require.NoError(t, store.Set(ctx, KeyAccountID, "other"))
	v, err = store.Get(ctx, KeyAccountID)
	require.NoError(t, err)
	assert.Equal(t, "other", v)

	require.NoError(t, store.Delete(ctx, KeyAccountID))
	require.NoError(t, store.Delete(ctx, KeyAccountID))
	_, err = store.Get(ctx, KeyAccountID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "session.db")
	ctx := t.Context()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetMany(ctx, map[string]string{
		KeyAccountID:       "76561198000000000",
		KeyPrimaryAPIKey:   "ABC123",
		KeySecondaryAPIKey: "XYZ789",
	}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	creds, ok, err := Load(ctx, reopened)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "76561198000000000", creds.AccountID)
	assert.Equal(t, "ABC123", creds.PrimaryAPIKey)
	assert.Equal(t, "XYZ789", creds.SecondaryAPIKey)
}
