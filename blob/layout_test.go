// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-core/errkind"
)

func TestNewLayoutStore(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "store")
	store, err := NewLayoutStore(root)
	require.NoError(t, err)
	assert.Equal(t, root, store.Root())

	// OCI Image Layout structure must exist.
	for _, name := range []string{"blobs", "oci-layout", "index.json"} {
		_, err := os.Stat(filepath.Join(root, name))
		assert.NoError(t, err, "%s should exist", name)
	}
}

func TestLayoutStore_PutGet(t *testing.T) {
	t.Parallel()

	store, err := NewLayoutStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	content := []byte("layout blob content")

	res, err := store.Put(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, Digest(content), res.Digest)
	assert.Equal(t, "sha256:"+res.Digest, res.Key)

	got, err := store.Get(ctx, res.Key)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLayoutStore_Put_Deduplicates(t *testing.T) {
	t.Parallel()

	store, err := NewLayoutStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	content := []byte("same layout bytes")

	first, err := store.Put(ctx, content)
	require.NoError(t, err)
	second, err := store.Put(ctx, content)
	require.NoError(t, err)

	assert.Equal(t, first.Key, second.Key)
	assert.True(t, second.AlreadyExisted)
}

func TestLayoutStore_Get_NotFound(t *testing.T) {
	t.Parallel()

	store, err := NewLayoutStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), store.Key(Digest([]byte("nope"))))
	require.Error(t, err)
	assert.Equal(t, errkind.NotFound, errkind.Of(err))
}

func TestLayoutStore_Exists(t *testing.T) {
	t.Parallel()

	store, err := NewLayoutStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	res, err := store.Put(ctx, []byte("present"))
	require.NoError(t, err)

	ok, err := store.Exists(ctx, res.Digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, Digest([]byte("absent")))
	require.NoError(t, err)
	assert.False(t, ok)
}
