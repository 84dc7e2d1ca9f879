// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skillforge/skillforge-core/record"
	"github.com/skillforge/skillforge-core/skill"
)

// Resolve returns the version record matching the reference. An empty version
// or "latest" (case-insensitive) resolves to the current record. Anything else
// is matched against the current record's tag and digest first, then against
// the historical snapshots: digest selectors match exactly, tag selectors
// resolve to the most recently archived record carrying that tag.
//
// A missing identity fails with ErrSkillNotFound; an identity whose history
// never saw the requested version fails with ErrVersionNotFound.
func (e *Engine) Resolve(ctx context.Context, ref skill.Reference) (*skill.VersionRecord, error) {
	if ref.Slug == "" {
		return nil, fmt.Errorf("%w: empty slug", ErrSkillNotFound)
	}
	if err := ref.Scope.Validate(); err != nil {
		return nil, err
	}

	org := ref.Org
	if ref.Scope == skill.ScopePlatform {
		org = ""
	}

	current, err := e.records.GetCurrent(ctx, ref.Scope, org, ref.Slug)
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, skill.IdentityID(ref.Scope, org, ref.Slug))
		}
		return nil, fmt.Errorf("resolve: %w", err)
	}

	version := ref.Version
	if version == "" || strings.EqualFold(version, DefaultTag) {
		return current, nil
	}

	// Fast path: the requested version is still current.
	if current.Tag == version || current.Digest == version {
		return current, nil
	}

	var historical *skill.VersionRecord
	if skill.IsDigest(version) {
		historical, err = e.records.FindHistoricalByDigest(ctx, current.Identity.ID, version)
	} else {
		historical, err = e.records.FindHistoricalByTag(ctx, current.Identity.ID, version)
	}
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s@%s", ErrVersionNotFound, current.Identity.ID, version)
		}
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return historical, nil
}
