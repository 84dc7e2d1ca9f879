// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package skill

import (
	"fmt"
	"regexp"
	"time"

	"github.com/skillforge/skillforge-core/errkind"
)

// Scope is the ownership scope of a skill identity.
type Scope string

const (
	// ScopePlatform marks a platform-wide skill, visible to all organizations.
	ScopePlatform Scope = "platform"

	// ScopeOrganization marks a skill owned by a single organization.
	ScopeOrganization Scope = "organization"
)

// Validate checks that the scope is one of the known values.
func (s Scope) Validate() error {
	switch s {
	case ScopePlatform, ScopeOrganization:
		return nil
	default:
		return errkind.Newf(errkind.Validation, "invalid scope: %q", string(s))
	}
}

// Identity is the stable identifier of a skill. It is created on first push
// and never changes afterwards.
type Identity struct {
	// ID is the canonical resource identifier, e.g. "platform/skill/aws-debug"
	// or "org/acme/skill/aws-debug".
	ID string

	// Name is the human-chosen name as supplied on first push.
	Name string

	// Slug is the normalized, URL-safe form of the name, unique within
	// (Scope, Org).
	Slug string

	Scope Scope

	// Org is the owning organization; empty for platform-scoped skills.
	Org string
}

// IdentityID derives the canonical resource identifier for a skill.
func IdentityID(scope Scope, org, slug string) string {
	if scope == ScopeOrganization {
		return fmt.Sprintf("org/%s/skill/%s", org, slug)
	}
	return fmt.Sprintf("platform/skill/%s", slug)
}

// VersionRecord is the versioned payload associated with an Identity at a
// point in time. The digest is the canonical, immutable version key; the tag
// is a mutable label that may point at different digests over time.
type VersionRecord struct {
	Identity Identity

	// Description is the text of the description document packaged inside
	// the archive whose digest matches Digest. It is extracted once at push
	// time and never re-derived.
	Description string

	// Tag is the free-form version label, "latest" by default.
	Tag string

	// Digest is the SHA-256 of the exact archive bytes, 64 lowercase hex
	// characters.
	Digest string

	// StorageKey locates the archive blob in the blob store.
	StorageKey string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reference identifies a skill version to resolve: a slug within a scope,
// plus an optional version selector (empty or "latest", a tag, or a digest).
type Reference struct {
	Slug    string
	Scope   Scope
	Org     string
	Version string
}

// digestPattern matches a 64-character lowercase hex string (a SHA-256 digest).
var digestPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// IsDigest reports whether the version selector looks like a content digest
// rather than a tag.
func IsDigest(version string) bool {
	return digestPattern.MatchString(version)
}
