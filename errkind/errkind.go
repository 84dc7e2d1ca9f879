// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package errkind provides error classification for the skill storage engine.
package errkind

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the engine's failure categories.
// Callers branch on the kind rather than on error message contents.
type Kind int

const (
	// Unknown is the zero kind, reported for errors that carry no classification.
	Unknown Kind = iota

	// Validation marks a malformed request (missing name, empty archive, bad scope).
	Validation

	// MissingEntry marks an archive that lacks the required description document.
	MissingEntry

	// ArchiveTooLarge marks an archive rejected by size or compression-ratio limits.
	ArchiveTooLarge

	// TooManyEntries marks an archive rejected by the entry-count limit.
	TooManyEntries

	// UnsafePath marks an archive entry whose path would escape the extraction root.
	UnsafePath

	// NotFound marks a missing skill, version, record, or blob.
	NotFound

	// Storage marks an underlying blob or record store I/O failure. These may
	// be transient; the surrounding operation is safe to retry.
	Storage

	// ArtifactUnavailable marks a delivery-time fetch or extraction failure.
	// It is absorbed by the delivery pipeline rather than propagated.
	ArtifactUnavailable
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case MissingEntry:
		return "missing-entry"
	case ArchiveTooLarge:
		return "archive-too-large"
	case TooManyEntries:
		return "too-many-entries"
	case UnsafePath:
		return "unsafe-path"
	case NotFound:
		return "not-found"
	case Storage:
		return "storage"
	case ArtifactUnavailable:
		return "artifact-unavailable"
	default:
		return "unknown"
	}
}

// KindedError wraps an error with a Kind so the classification survives
// wrapping with fmt.Errorf("...: %w", err) across package boundaries.
type KindedError struct {
	err  error
	kind Kind
}

// Error implements the error interface.
func (e *KindedError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As() compatibility.
func (e *KindedError) Unwrap() error {
	return e.err
}

// Kind returns the classification attached to this error.
func (e *KindedError) Kind() Kind {
	return e.kind
}

// WithKind wraps an error with a Kind. If err is nil, WithKind returns nil.
func WithKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	return &KindedError{err: err, kind: kind}
}

// New creates a new classified error from a message.
func New(kind Kind, message string) error {
	return &KindedError{err: errors.New(message), kind: kind}
}

// Newf creates a new classified error from a format string.
func Newf(kind Kind, format string, args ...any) error {
	return &KindedError{err: fmt.Errorf(format, args...), kind: kind}
}

// Of extracts the Kind from an error chain. It returns Unknown when no
// KindedError is present.
func Of(err error) Kind {
	var kinded *KindedError
	if errors.As(err, &kinded) {
		return kinded.kind
	}
	return Unknown
}

// Is reports whether the error chain carries the given kind.
func Is(err error, kind Kind) bool {
	return Of(err) == kind
}
