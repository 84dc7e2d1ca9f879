// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillforge/skillforge-core/archive"
	"github.com/skillforge/skillforge-core/errkind"
	"github.com/skillforge/skillforge-core/logger"
	"github.com/skillforge/skillforge-core/record"
	"github.com/skillforge/skillforge-core/skill"
)

// DefaultTag is assigned to pushes that carry no explicit tag.
const DefaultTag = "latest"

// PushRequest carries one skill archive upload.
type PushRequest struct {
	// Name is the human-chosen skill name. The identity slug is derived
	// from it on first push.
	Name string

	Scope skill.Scope

	// Org is the owning organization. Required for organization scope,
	// ignored for platform scope.
	Org string

	// Tag is the optional version label; defaults to DefaultTag.
	Tag string

	// Archive is the complete ZIP archive bytes.
	Archive []byte
}

func (r *PushRequest) validate() error {
	if r.Name == "" {
		return errkind.New(errkind.Validation, "name is required")
	}
	if err := r.Scope.Validate(); err != nil {
		return err
	}
	if r.Scope == skill.ScopeOrganization && r.Org == "" {
		return errkind.New(errkind.Validation, "org is required for organization-scoped skills")
	}
	if len(r.Archive) == 0 {
		return errkind.New(errkind.Validation, "archive is required")
	}
	return nil
}

func (r *PushRequest) org() string {
	if r.Scope == skill.ScopePlatform {
		return ""
	}
	return r.Org
}

// Push runs the push pipeline: validate, extract the description document and
// hash the archive, deduplicate-or-store the blob, resolve the skill identity,
// populate the version record, archive it to history and persist it as
// current. Each step's failure aborts the pipeline; a rejected archive leaves
// no stored state behind.
//
// The new record is archived before it becomes current, so history can always
// answer "what was current as of time T" including the final state, and tag or
// digest lookups hit history immediately without waiting for a later push.
func (e *Engine) Push(ctx context.Context, req PushRequest) (*skill.VersionRecord, error) {
	// Step 1: structural validation.
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}

	// Step 2: extract the description document and reject bad archives
	// before anything is written.
	doc, err := archive.ReadEntry(req.Archive, archive.DocumentName, e.limits)
	if err != nil {
		return nil, fmt.Errorf("push: reading %s: %w", archive.DocumentName, err)
	}

	slug := skill.Slugify(req.Name)
	if slug == "" {
		return nil, errkind.Newf(errkind.Validation, "push: name %q yields an empty slug", req.Name)
	}

	// Step 3: deduplicate-or-store. Put hashes the exact archive bytes and
	// writes only when the digest is unseen.
	stored, err := e.blobs.Put(ctx, req.Archive)
	if err != nil {
		return nil, fmt.Errorf("push: storing artifact: %w", err)
	}
	logger.Infow("stored skill artifact",
		"digest", stored.Digest,
		"storage_key", stored.Key,
		"already_existed", stored.AlreadyExisted,
	)

	// Step 4: resolve the identity by (scope, org, slug), reusing it when
	// the skill has been pushed before.
	now := e.now()
	prior, err := e.records.GetCurrent(ctx, req.Scope, req.org(), slug)
	if err != nil && !errors.Is(err, record.ErrRecordNotFound) {
		return nil, fmt.Errorf("push: resolving identity: %w", err)
	}

	// Step 5: populate the version record. The creation timestamp survives
	// from the prior current record when updating.
	rec := &skill.VersionRecord{
		Description: string(doc),
		Tag:         req.Tag,
		Digest:      stored.Digest,
		StorageKey:  stored.Key,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rec.Tag == "" {
		rec.Tag = DefaultTag
	}
	if prior != nil {
		rec.Identity = prior.Identity
		rec.CreatedAt = prior.CreatedAt
	} else {
		rec.Identity = skill.Identity{
			ID:    skill.IdentityID(req.Scope, req.org(), slug),
			Name:  req.Name,
			Slug:  slug,
			Scope: req.Scope,
			Org:   req.org(),
		}
	}

	// Step 6: archive the new record before it becomes current.
	if err := e.records.Archive(ctx, rec, now); err != nil {
		return nil, fmt.Errorf("push: archiving record: %w", err)
	}

	// Step 7: persist as current.
	if err := e.records.SaveCurrent(ctx, rec); err != nil {
		return nil, fmt.Errorf("push: persisting current record: %w", err)
	}

	logger.Infow("pushed skill version",
		"skill_id", rec.Identity.ID,
		"tag", rec.Tag,
		"digest", rec.Digest,
	)
	return rec, nil
}
