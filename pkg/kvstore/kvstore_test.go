package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`)))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":2}`)))
	got, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), got, "set must overwrite")
}

func TestMemoryMissingKey(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	_, err := store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryValuesAreCopied(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	payload := []byte("original")
	require.NoError(t, store.Set(ctx, "k", payload))
	payload[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestMemoryDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "k"), "deleting absent key is silent")
}

func TestDirRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewDir(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "formwizard.transfer", []byte(`{"id":"x"}`)))

	got, err := store.Get(ctx, "formwizard.transfer")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"x"}`), got)

	require.NoError(t, store.Delete(ctx, "formwizard.transfer"))
	_, err = store.Get(ctx, "formwizard.transfer")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirEscapesKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewDir(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "weird/key:with spaces", []byte("v")))
	got, err := store.Get(ctx, "weird/key:with spaces")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemory()
	_, err := store.Get(ctx, "k")
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
