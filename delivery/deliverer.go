// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

//go:generate mockgen -source=deliverer.go -destination=mocks/mock_deliverer.go -package=mocks Resolver,ArtifactFetcher

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/skillforge/skillforge-core/archive"
	"github.com/skillforge/skillforge-core/errkind"
	"github.com/skillforge/skillforge-core/logger"
	"github.com/skillforge/skillforge-core/skill"
)

// Resolver resolves a skill reference to a version record.
type Resolver interface {
	Resolve(ctx context.Context, ref skill.Reference) (*skill.VersionRecord, error)
}

// ArtifactFetcher retrieves archive bytes by storage key. The key acts as the
// access capability: it can only be obtained from a resolved version record.
type ArtifactFetcher interface {
	FetchArtifact(ctx context.Context, storageKey string) ([]byte, error)
}

// scriptExtensions are marked executable after extraction.
var scriptExtensions = map[string]bool{
	".sh":   true,
	".bash": true,
	".py":   true,
	".js":   true,
	".ts":   true,
	".rb":   true,
	".pl":   true,
}

// Mount describes one delivered skill.
type Mount struct {
	// Record is the resolved version record.
	Record *skill.VersionRecord

	// Path is the sandbox directory holding the extracted artifact. Empty
	// when the artifact could not be delivered.
	Path string

	// ToolsAvailable is true when the artifact was extracted and its files
	// are usable from the sandbox.
	ToolsAvailable bool
}

// Result is the outcome of delivering a set of skills.
type Result struct {
	Mounts []Mount
}

// Deliverer extracts resolved skill artifacts into a sandbox.
type Deliverer struct {
	resolver Resolver
	fetcher  ArtifactFetcher
	sandbox  Sandbox
	limits   archive.Limits
}

// Option configures a Deliverer.
type Option func(*Deliverer)

// WithLimits overrides the archive resource limits applied during extraction.
// Deployments that push with non-default limits must deliver with the same
// ones, or artifacts accepted at push time degrade at delivery.
func WithLimits(limits archive.Limits) Option {
	return func(d *Deliverer) {
		d.limits = limits
	}
}

// NewDeliverer creates a Deliverer writing into the given sandbox.
func NewDeliverer(resolver Resolver, fetcher ArtifactFetcher, sandbox Sandbox, opts ...Option) *Deliverer {
	d := &Deliverer{
		resolver: resolver,
		fetcher:  fetcher,
		sandbox:  sandbox,
		limits:   archive.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver resolves each reference and extracts its artifact into the sandbox
// under skills/<digest>/. Resolution failures abort the whole request: a
// reference that cannot be resolved is a caller error. Fetch and extraction
// failures degrade gracefully instead: the skill is still mounted with its
// description only, and the execution proceeds without its tools.
//
// The digest-named target directory makes delivery idempotent; a directory
// already holding the description document is not extracted again.
func (d *Deliverer) Deliver(ctx context.Context, refs []skill.Reference) (*Result, error) {
	result := &Result{Mounts: make([]Mount, 0, len(refs))}

	for _, ref := range refs {
		rec, err := d.resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("deliver: resolving %s: %w", ref.Slug, err)
		}

		mount := Mount{Record: rec}
		dir, err := d.mount(ctx, rec)
		if err != nil {
			logger.Warnw("skill artifact unavailable, delivering description only",
				"skill_id", rec.Identity.ID,
				"digest", rec.Digest,
				"error", err,
			)
		} else {
			mount.Path = dir
			mount.ToolsAvailable = true
		}
		result.Mounts = append(result.Mounts, mount)
	}

	return result, nil
}

// mount fetches and extracts one artifact, returning the sandbox directory it
// lives in.
func (d *Deliverer) mount(ctx context.Context, rec *skill.VersionRecord) (string, error) {
	dir := d.sandbox.Join("skills", rec.Digest)

	// The description document is present in every valid artifact, so its
	// existence marks the directory as already populated.
	populated, err := d.sandbox.Exists(d.sandbox.Join("skills", rec.Digest, archive.DocumentName))
	if err != nil {
		return "", fmt.Errorf("checking target directory: %w", err)
	}
	if populated {
		return dir, nil
	}

	data, err := d.fetcher.FetchArtifact(ctx, rec.StorageKey)
	if err != nil {
		return "", errkind.WithKind(fmt.Errorf("fetching artifact: %w", err), errkind.ArtifactUnavailable)
	}

	entries, err := archive.Entries(data, d.limits)
	if err != nil {
		return "", errkind.WithKind(fmt.Errorf("reading artifact: %w", err), errkind.ArtifactUnavailable)
	}

	if err := d.sandbox.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating target directory: %w", err)
	}
	for _, entry := range entries {
		mode := os.FileMode(0644)
		if scriptExtensions[path.Ext(entry.Path)] {
			mode = 0755
		}
		target := d.sandbox.Join("skills", rec.Digest, entry.Path)
		if err := d.sandbox.WriteFile(target, entry.Content, mode); err != nil {
			return "", fmt.Errorf("writing %s: %w", entry.Path, err)
		}
	}

	return dir, nil
}
