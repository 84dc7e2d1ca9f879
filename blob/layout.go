// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/errdef"

	"github.com/skillforge/skillforge-core/errkind"
)

// LayoutStore implements Store backed by an OCI Image Layout directory
// (blobs/, oci-layout, index.json). The layout's blobs/sha256/<hex> scheme is
// itself content-addressed, so deduplication falls out of the format.
type LayoutStore struct {
	root  string
	inner *oci.Store
}

// Compile-time assertion that LayoutStore implements Store.
var _ Store = (*LayoutStore)(nil)

// NewLayoutStore creates an OCI-layout blob store at the given root directory,
// initializing the layout structure if absent.
func NewLayoutStore(root string) (*LayoutStore, error) {
	inner, err := oci.New(root)
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("creating OCI layout at %s: %w", root, err), errkind.Storage)
	}
	return &LayoutStore{root: root, inner: inner}, nil
}

// Root returns the store root directory.
func (s *LayoutStore) Root() string {
	return s.root
}

// Key returns the storage key for a digest in <algorithm>:<hex> form.
func (s *LayoutStore) Key(dgst string) string {
	return digest.NewDigestFromEncoded(digest.SHA256, dgst).String()
}

// Put pushes the blob into the layout. The underlying store's push is
// idempotent; ErrAlreadyExists is the dedup signal, not a failure.
func (s *LayoutStore) Put(ctx context.Context, data []byte) (PutResult, error) {
	d := digest.FromBytes(data)
	desc := ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Digest:    d,
		Size:      int64(len(data)),
	}

	if err := s.inner.Push(ctx, desc, bytes.NewReader(data)); err != nil {
		if errors.Is(err, errdef.ErrAlreadyExists) {
			return PutResult{Digest: d.Encoded(), Key: d.String(), AlreadyExisted: true}, nil
		}
		return PutResult{}, errkind.WithKind(fmt.Errorf("writing blob: %w", err), errkind.Storage)
	}

	return PutResult{Digest: d.Encoded(), Key: d.String()}, nil
}

// Get retrieves a blob by its <algorithm>:<hex> storage key.
func (s *LayoutStore) Get(ctx context.Context, key string) ([]byte, error) {
	d, err := digest.Parse(key)
	if err != nil {
		return nil, errkind.Newf(errkind.NotFound, "blob not found: invalid key %q", key)
	}

	// oci.Store's Fetch only uses the Digest field to locate blobs.
	rc, err := s.inner.Fetch(ctx, ocispec.Descriptor{Digest: d})
	if err != nil {
		if errors.Is(err, errdef.ErrNotFound) {
			return nil, errkind.Newf(errkind.NotFound, "blob not found: %s", key)
		}
		return nil, errkind.WithKind(fmt.Errorf("fetching blob %s: %w", key, err), errkind.Storage)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("reading blob %s: %w", key, err), errkind.Storage)
	}

	return data, nil
}

// Exists checks whether a blob with the given digest is present in the layout.
func (s *LayoutStore) Exists(ctx context.Context, dgst string) (bool, error) {
	d := digest.NewDigestFromEncoded(digest.SHA256, dgst)
	ok, err := s.inner.Exists(ctx, ocispec.Descriptor{Digest: d})
	if err != nil {
		return false, errkind.WithKind(fmt.Errorf("checking blob %s: %w", dgst, err), errkind.Storage)
	}
	return ok, nil
}

// Delete removes a blob from the layout by storage key. Deleting a missing
// blob is not an error.
func (s *LayoutStore) Delete(ctx context.Context, key string) error {
	d, err := digest.Parse(key)
	if err != nil {
		return nil
	}
	if err := s.inner.Delete(ctx, ocispec.Descriptor{Digest: d}); err != nil {
		if errors.Is(err, errdef.ErrNotFound) {
			return nil
		}
		return errkind.WithKind(fmt.Errorf("deleting blob %s: %w", key, err), errkind.Storage)
	}
	return nil
}
