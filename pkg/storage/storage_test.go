package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir())

	ok, err := d.Exists(ctx, "reconcile/latest.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Put(ctx, "reconcile/latest.json", []byte(`{"updated":2}`)))

	ok, err = d.Exists(ctx, "reconcile/latest.json")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := d.Get(ctx, "reconcile/latest.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"updated":2}`, string(got))
}

func TestLocalDiskMissingFile(t *testing.T) {
	_, err := NewLocalDisk(t.TempDir()).Get(context.Background(), "seed/products.json")
	assert.True(t, errors.Is(err, ErrNotExist), "got %v", err)
}

func TestLocalDiskRejectsEscapes(t *testing.T) {
	err := NewLocalDisk(t.TempDir()).Put(context.Background(), "../outside.json", []byte("x"))
	assert.Error(t, err)
}

func TestUseUnknownDisk(t *testing.T) {
	_, err := Use("ftp")
	assert.Error(t, err)

	RegisterDisk("mem-test", NewLocalDisk(t.TempDir()))
	d, err := Use("mem-test")
	require.NoError(t, err)
	assert.NotNil(t, d)
}
