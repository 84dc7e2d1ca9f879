// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	stdzip "archive/zip"
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge-core/archive"
	"github.com/skillforge/skillforge-core/blob"
	"github.com/skillforge/skillforge-core/errkind"
	"github.com/skillforge/skillforge-core/record"
	"github.com/skillforge/skillforge-core/skill"
)

// fakeClock hands out strictly increasing timestamps one second apart.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestEngine(t *testing.T) (*Engine, blob.Store) {
	t.Helper()

	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	records, err := record.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = records.Close() })

	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	return New(blobs, records, WithClock(clock.Now)), blobs
}

func buildSkillZip(t *testing.T, doc string, extra map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := stdzip.NewWriter(&buf)
	if doc != "" {
		f, err := w.Create(archive.DocumentName)
		require.NoError(t, err)
		_, err = f.Write([]byte(doc))
		require.NoError(t, err)
	}
	for name, content := range extra {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestPush(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	data := buildSkillZip(t, "# AWS Debug\n\nHow to debug AWS issues.\n", nil)

	rec, err := eng.Push(ctx, PushRequest{
		Name:    "AWS Debug",
		Scope:   skill.ScopeOrganization,
		Org:     "acme",
		Archive: data,
	})
	require.NoError(t, err)

	assert.Equal(t, "org/acme/skill/aws-debug", rec.Identity.ID)
	assert.Equal(t, "AWS Debug", rec.Identity.Name)
	assert.Equal(t, "aws-debug", rec.Identity.Slug)
	assert.Equal(t, DefaultTag, rec.Tag, "tag must default to latest")
	assert.Equal(t, blob.Digest(data), rec.Digest)
	assert.Contains(t, rec.Description, "How to debug AWS issues")
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestPush_Validation(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()
	data := buildSkillZip(t, "# Doc", nil)

	tests := []struct {
		name string
		req  PushRequest
	}{
		{"empty name", PushRequest{Scope: skill.ScopePlatform, Archive: data}},
		{"invalid scope", PushRequest{Name: "x", Scope: "global", Archive: data}},
		{"org scope without org", PushRequest{Name: "x", Scope: skill.ScopeOrganization, Archive: data}},
		{"empty archive", PushRequest{Name: "x", Scope: skill.ScopePlatform}},
		{"name slugs to nothing", PushRequest{Name: "!!!", Scope: skill.ScopePlatform, Archive: data}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := eng.Push(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, errkind.Validation, errkind.Of(err))
		})
	}
}

func TestPush_RejectedArchiveLeavesNoState(t *testing.T) {
	t.Parallel()

	eng, blobs := newTestEngine(t)
	ctx := context.Background()

	data := buildSkillZip(t, "", map[string]string{"scripts/run.sh": "#!/bin/sh\n"})

	_, err := eng.Push(ctx, PushRequest{
		Name:    "Broken",
		Scope:   skill.ScopePlatform,
		Archive: data,
	})
	require.Error(t, err)
	assert.Equal(t, errkind.MissingEntry, errkind.Of(err))

	exists, err := blobs.Exists(ctx, blob.Digest(data))
	require.NoError(t, err)
	assert.False(t, exists, "a rejected push must not store the blob")

	_, err = eng.Resolve(ctx, skill.Reference{Slug: "broken", Scope: skill.ScopePlatform})
	assert.ErrorIs(t, err, ErrSkillNotFound)
}

func TestPush_PreservesCreatedAt(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopePlatform,
		Archive: buildSkillZip(t, "# v1", nil),
	})
	require.NoError(t, err)

	second, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopePlatform,
		Archive: buildSkillZip(t, "# v2", nil),
	})
	require.NoError(t, err)

	assert.Equal(t, first.Identity, second.Identity, "identity is minted once and reused")
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestPush_DeduplicatesAcrossIdentities(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	data := buildSkillZip(t, "# Shared content", nil)

	a, err := eng.Push(ctx, PushRequest{Name: "Alpha", Scope: skill.ScopePlatform, Archive: data})
	require.NoError(t, err)
	b, err := eng.Push(ctx, PushRequest{Name: "Beta", Scope: skill.ScopePlatform, Archive: data})
	require.NoError(t, err)

	assert.Equal(t, a.Digest, b.Digest)
	assert.Equal(t, a.StorageKey, b.StorageKey, "identical bytes share one blob")
}

func TestResolve_LatestAndFastPath(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopePlatform, Tag: "v1",
		Archive: buildSkillZip(t, "# v1", nil),
	})
	require.NoError(t, err)

	ref := skill.Reference{Slug: "deploy", Scope: skill.ScopePlatform}

	for _, version := range []string{"", "latest", "LATEST", "v1", rec.Digest} {
		ref.Version = version
		got, err := eng.Resolve(ctx, ref)
		require.NoError(t, err, "version %q", version)
		assert.Equal(t, rec.Digest, got.Digest, "version %q", version)
	}
}

func TestResolve_TagRehomesToNewestPush(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	p1 := buildSkillZip(t, "# first build", nil)
	p2 := buildSkillZip(t, "# second build", nil)

	first, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopePlatform, Tag: "v1", Archive: p1,
	})
	require.NoError(t, err)
	second, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopePlatform, Tag: "v1", Archive: p2,
	})
	require.NoError(t, err)
	require.NotEqual(t, first.Digest, second.Digest)

	ref := skill.Reference{Slug: "deploy", Scope: skill.ScopePlatform}

	// The tag is a mutable label: it follows the newest push.
	ref.Version = "v1"
	got, err := eng.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, second.Digest, got.Digest)

	// The digest pins the first push forever.
	ref.Version = first.Digest
	got, err = eng.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, got.Digest)
	assert.Contains(t, got.Description, "first build")
}

func TestResolve_NotFoundDistinctions(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopePlatform,
		Archive: buildSkillZip(t, "# Doc", nil),
	})
	require.NoError(t, err)

	_, err = eng.Resolve(ctx, skill.Reference{Slug: "unknown", Scope: skill.ScopePlatform})
	assert.ErrorIs(t, err, ErrSkillNotFound)

	_, err = eng.Resolve(ctx, skill.Reference{Slug: "deploy", Scope: skill.ScopePlatform, Version: "v99"})
	assert.ErrorIs(t, err, ErrVersionNotFound)
	assert.NotErrorIs(t, err, ErrSkillNotFound)
	assert.Equal(t, errkind.NotFound, errkind.Of(err))
}

func TestResolve_ScopeIsolation(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopeOrganization, Org: "acme",
		Archive: buildSkillZip(t, "# Doc", nil),
	})
	require.NoError(t, err)

	// Another org cannot see acme's skill.
	_, err = eng.Resolve(ctx, skill.Reference{Slug: "deploy", Scope: skill.ScopeOrganization, Org: "globex"})
	assert.ErrorIs(t, err, ErrSkillNotFound)

	// Neither can the platform scope.
	_, err = eng.Resolve(ctx, skill.Reference{Slug: "deploy", Scope: skill.ScopePlatform})
	assert.ErrorIs(t, err, ErrSkillNotFound)
}

func TestFetchArtifact(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	data := buildSkillZip(t, "# Doc", nil)
	rec, err := eng.Push(ctx, PushRequest{Name: "Deploy", Scope: skill.ScopePlatform, Archive: data})
	require.NoError(t, err)

	got, err := eng.FetchArtifact(ctx, rec.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = eng.FetchArtifact(ctx, "skills/nonexistent.zip")
	require.Error(t, err)
	assert.Equal(t, errkind.NotFound, errkind.Of(err))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	data := buildSkillZip(t, "# Shared", nil)

	kept, err := eng.Push(ctx, PushRequest{Name: "Keeper", Scope: skill.ScopePlatform, Archive: data})
	require.NoError(t, err)
	doomedV1, err := eng.Push(ctx, PushRequest{Name: "Doomed", Scope: skill.ScopePlatform, Tag: "v1", Archive: data})
	require.NoError(t, err)
	doomed, err := eng.Push(ctx, PushRequest{
		Name: "Doomed", Scope: skill.ScopePlatform, Tag: "v2",
		Archive: buildSkillZip(t, "# Doomed v2", nil),
	})
	require.NoError(t, err)

	identity, err := eng.Delete(ctx, doomed.Identity.ID)
	require.NoError(t, err)
	assert.Equal(t, doomed.Identity, *identity)

	// Every selector form stops resolving: latest, both tags, both digests.
	for _, version := range []string{"", "v1", "v2", doomedV1.Digest, doomed.Digest} {
		_, err = eng.Resolve(ctx, skill.Reference{Slug: "doomed", Scope: skill.ScopePlatform, Version: version})
		assert.ErrorIs(t, err, ErrSkillNotFound, "version %q", version)
	}

	// The shared blob survives for the other identity.
	got, err := eng.FetchArtifact(ctx, kept.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = eng.Delete(ctx, doomed.Identity.ID)
	assert.ErrorIs(t, err, ErrSkillNotFound)
}

func TestList(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha"} {
		_, err := eng.Push(ctx, PushRequest{
			Name: name, Scope: skill.ScopePlatform,
			Archive: buildSkillZip(t, "# "+name, nil),
		})
		require.NoError(t, err)
	}

	records, err := eng.List(ctx, skill.ScopePlatform, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alpha", records[0].Identity.Slug)
	assert.Equal(t, "zeta", records[1].Identity.Slug)

	_, err = eng.List(ctx, "bogus", "")
	require.Error(t, err)
	assert.Equal(t, errkind.Validation, errkind.Of(err))
}

func TestHistory(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopePlatform, Tag: "v1",
		Archive: buildSkillZip(t, "# v1", nil),
	})
	require.NoError(t, err)
	second, err := eng.Push(ctx, PushRequest{
		Name: "Deploy", Scope: skill.ScopePlatform, Tag: "v2",
		Archive: buildSkillZip(t, "# v2", nil),
	})
	require.NoError(t, err)

	records, err := eng.History(ctx, second.Identity.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first, with the current version at the head.
	assert.Equal(t, second.Digest, records[0].Digest)
	assert.Equal(t, "v2", records[0].Tag)
	assert.Equal(t, first.Digest, records[1].Digest)
	assert.Equal(t, "v1", records[1].Tag)

	_, err = eng.History(ctx, "platform/skill/unknown")
	assert.ErrorIs(t, err, ErrSkillNotFound)
}
