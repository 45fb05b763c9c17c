package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/jpender/fermata/internal/domain/session"
	"github.com/jpender/fermata/internal/memstore"
	"github.com/jpender/fermata/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewSessionStore()

	_, err := store.Get(ctx, "s1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	sess := &session.Session{ID: "s1", ProjectID: "p1", CreatedAt: time.Now()}
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Same(t, sess, got)

	require.NoError(t, store.Delete(ctx, "s1"))
	require.ErrorIs(t, store.Delete(ctx, "s1"), repository.ErrNotFound)
}

func TestSessionStore_ListOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewSessionStore()

	base := time.Now()
	require.NoError(t, store.Put(ctx, &session.Session{ID: "later", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Put(ctx, &session.Session{ID: "earlier", CreatedAt: base}))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "earlier", sessions[0].ID)
	require.Equal(t, "later", sessions[1].ID)
}

func TestBackupStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewBackupStore()

	_, err := store.Get(ctx, "b1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	backup := &session.Backup{ID: "b1", ProjectID: "p1", Raw: []byte{0x4d, 0x54, 0x68, 0x64}}
	require.NoError(t, store.Put(ctx, backup))

	got, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	require.Same(t, backup, got)
}
