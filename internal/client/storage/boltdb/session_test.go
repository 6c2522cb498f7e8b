package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/bingosync/internal/client/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "testdb.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

// TestSaveSession_GetSession проверяет сохранение и чтение сессии
func TestSaveSession_GetSession(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	session := &storage.Session{
		UserID:    "user-123",
		Username:  "bingoplayer",
		Token:     "jwt-token",
		NodeID:    "node-abc",
		ExpiresAt: 1767225600,
	}

	err := store.SaveSession(ctx, session)
	require.NoError(t, err)

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

// TestGetSession_NotFound проверяет ошибку при отсутствии сессии
func TestGetSession_NotFound(t *testing.T) {
	store := newTestStorage(t)

	got, err := store.GetSession(context.Background())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.Nil(t, got)
}

// TestSaveSession_Overwrite проверяет, что новая сессия затирает старую
func TestSaveSession_Overwrite(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, &storage.Session{UserID: "old"}))
	require.NoError(t, store.SaveSession(ctx, &storage.Session{UserID: "new"}))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", got.UserID)
}

// TestDeleteSession проверяет удаление сессии при logout
func TestDeleteSession(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, &storage.Session{UserID: "user-123"}))
	require.NoError(t, store.DeleteSession(ctx))

	_, err := store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	// Повторное удаление не должно быть ошибкой
	assert.NoError(t, store.DeleteSession(ctx))
}

// TestSession_StorageClosed проверяет sentinel ошибку после Close
func TestSession_StorageClosed(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Close())
	ctx := context.Background()

	err := store.SaveSession(ctx, &storage.Session{})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = store.DeleteSession(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
