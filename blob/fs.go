// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/skillforge/skillforge-core/errkind"
)

// FSStore implements Store on the local filesystem. Blobs are stored one file
// per digest at <root>/skills/<digest>.zip with owner-only permissions.
type FSStore struct {
	root string
}

// Compile-time assertion that FSStore implements Store.
var _ Store = (*FSStore)(nil)

// DefaultRoot returns the default blob store root using XDG base directory
// conventions.
func DefaultRoot() string {
	return filepath.Join(xdg.DataHome, "skillforge", "artifacts")
}

// NewFSStore creates a filesystem blob store rooted at the given directory.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "skills"), 0o700); err != nil {
		return nil, errkind.WithKind(fmt.Errorf("creating blob store directory: %w", err), errkind.Storage)
	}
	return &FSStore{root: root}, nil
}

// Root returns the store root directory.
func (s *FSStore) Root() string {
	return s.root
}

// Key returns the relative storage path for a digest: skills/<digest>.zip.
func (s *FSStore) Key(dgst string) string {
	return filepath.Join("skills", dgst+".zip")
}

// Put writes the blob unless a copy with the same digest already exists.
// Files are written 0600 so artifacts are readable by the owner only.
func (s *FSStore) Put(ctx context.Context, data []byte) (PutResult, error) {
	dgst := Digest(data)
	key := s.Key(dgst)

	exists, err := s.Exists(ctx, dgst)
	if err != nil {
		return PutResult{}, err
	}
	if exists {
		return PutResult{Digest: dgst, Key: key, AlreadyExisted: true}, nil
	}

	path := filepath.Join(s.root, key)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return PutResult{}, errkind.WithKind(fmt.Errorf("writing blob %s: %w", dgst, err), errkind.Storage)
	}

	return PutResult{Digest: dgst, Key: key}, nil
}

// Get reads a blob by its storage key.
func (s *FSStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, key)) //#nosec G304 -- key is derived from a digest, not caller input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errkind.Newf(errkind.NotFound, "blob not found: %s", key)
		}
		return nil, errkind.WithKind(fmt.Errorf("reading blob %s: %w", key, err), errkind.Storage)
	}
	return data, nil
}

// Exists checks whether a blob with the given digest is present.
func (s *FSStore) Exists(_ context.Context, dgst string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.root, s.Key(dgst)))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errkind.WithKind(fmt.Errorf("checking blob %s: %w", dgst, err), errkind.Storage)
}

// Delete removes a blob by storage key. Deleting a missing blob is not an error.
func (s *FSStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !os.IsNotExist(err) {
		return errkind.WithKind(fmt.Errorf("deleting blob %s: %w", key, err), errkind.Storage)
	}
	return nil
}
