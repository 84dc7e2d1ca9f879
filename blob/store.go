// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package blob

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks Store

import (
	"context"

	"github.com/opencontainers/go-digest"
)

// Store is the hash-addressed blob store capability. Implementations map a
// SHA-256 digest to immutable bytes: Put is idempotent on identical content,
// and the digest is the sole source of truth for identity. Stores never
// execute or interpret the bytes they hold.
type Store interface {
	// Put stores the given bytes under their SHA-256 digest. If a blob with
	// the same digest already exists, nothing is written and AlreadyExisted
	// is true. This is the deduplication point.
	Put(ctx context.Context, data []byte) (PutResult, error)

	// Get retrieves a blob by its storage key, as returned by Put or Key.
	// Missing blobs return a NotFound-kinded error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists checks whether a blob with the given digest is already stored.
	Exists(ctx context.Context, dgst string) (bool, error)

	// Delete removes a blob by storage key. It is best-effort cleanup, used
	// only by explicit purges, never automatically on dedup.
	Delete(ctx context.Context, key string) error

	// Key returns the storage key a blob with the given digest would have,
	// without storing anything.
	Key(dgst string) string
}

// PutResult describes the outcome of a Put.
type PutResult struct {
	// Digest is the SHA-256 of the stored bytes, 64 lowercase hex characters.
	Digest string

	// Key is the storage key under which the bytes live.
	Key string

	// AlreadyExisted is true when the blob was deduplicated against an
	// existing copy. Functionally irrelevant, useful for observability.
	AlreadyExisted bool
}

// Digest computes the canonical SHA-256 hex digest of the given bytes.
func Digest(data []byte) string {
	return digest.SHA256.FromBytes(data).Encoded()
}
