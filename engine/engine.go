// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillforge/skillforge-core/archive"
	"github.com/skillforge/skillforge-core/blob"
	"github.com/skillforge/skillforge-core/errkind"
	"github.com/skillforge/skillforge-core/logger"
	"github.com/skillforge/skillforge-core/record"
	"github.com/skillforge/skillforge-core/skill"
)

// ErrSkillNotFound is returned when no skill identity exists for a reference.
var ErrSkillNotFound = errkind.New(errkind.NotFound, "skill not found")

// ErrVersionNotFound is returned when the skill identity exists but no current
// or historical record matches the requested version selector.
var ErrVersionNotFound = errkind.New(errkind.NotFound, "skill version not found")

// Engine orchestrates the push pipeline, version resolution, artifact
// retrieval and deletion over a blob store and a record store.
type Engine struct {
	blobs   blob.Store
	records *record.Store
	limits  archive.Limits
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits overrides the archive resource limits used during push.
func WithLimits(limits archive.Limits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine over the given stores.
func New(blobs blob.Store, records *record.Store, opts ...Option) *Engine {
	e := &Engine{
		blobs:   blobs,
		records: records,
		limits:  archive.DefaultLimits(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchArtifact retrieves the raw archive bytes behind a storage key. The key
// itself is the access capability: callers can only hold one obtained from a
// resolved version record.
func (e *Engine) FetchArtifact(ctx context.Context, storageKey string) ([]byte, error) {
	data, err := e.blobs.Get(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}
	return data, nil
}

// Delete removes a skill identity: every historical snapshot first, then the
// current record. Blobs are left in place; identical content may be shared
// with other identities, so removal would require reference counting across
// all versions.
func (e *Engine) Delete(ctx context.Context, id string) (*skill.Identity, error) {
	current, err := e.records.GetCurrentByID(ctx, id)
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, id)
		}
		return nil, fmt.Errorf("delete: loading current record: %w", err)
	}

	deleted, archived, err := e.records.DeleteIdentity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete: removing records: %w", err)
	}

	logger.Infow("deleted skill identity",
		"skill_id", id,
		"current_deleted", deleted,
		"history_deleted", archived,
	)
	return &current.Identity, nil
}

// List returns the current version records visible in the given scope,
// ordered by slug.
func (e *Engine) List(ctx context.Context, scope skill.Scope, org string) ([]*skill.VersionRecord, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	records, err := e.records.ListCurrent(ctx, scope, org)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return records, nil
}

// History returns every archived version of a skill identity, newest first.
// Because each push archives its record before persisting it as current, the
// history includes the version that is current right now.
func (e *Engine) History(ctx context.Context, id string) ([]*skill.VersionRecord, error) {
	if _, err := e.records.GetCurrentByID(ctx, id); err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, id)
		}
		return nil, fmt.Errorf("history: %w", err)
	}

	records, err := e.records.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return records, nil
}
