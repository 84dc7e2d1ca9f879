// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "aws-debug", "aws-debug"},
		{"spaces", "AWS Troubleshooting Guide", "aws-troubleshooting-guide"},
		{"special chars", "My Skill! (v2)", "my-skill-v2"},
		{"repeated hyphens", "a --- b", "a-b"},
		{"leading and trailing", "--edge--", "edge"},
		{"only invalid chars", "!!!", ""},
		{"unicode dropped", "héllo wörld", "hllo-wrld"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestScope_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ScopePlatform.Validate())
	assert.NoError(t, ScopeOrganization.Validate())
	assert.Error(t, Scope("").Validate())
	assert.Error(t, Scope("global").Validate())
}

func TestIdentityID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "platform/skill/demo", IdentityID(ScopePlatform, "", "demo"))
	assert.Equal(t, "org/acme/skill/demo", IdentityID(ScopeOrganization, "acme", "demo"))
}

func TestIsDigest(t *testing.T) {
	t.Parallel()

	valid := "a3f5b8c2d1e4f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1"
	assert.True(t, IsDigest(valid))
	assert.False(t, IsDigest("latest"))
	assert.False(t, IsDigest("v1.2.3"))
	assert.False(t, IsDigest(valid[:63]), "too short")
	assert.False(t, IsDigest(valid+"0"), "too long")
	assert.False(t, IsDigest("A3F5B8C2D1E4F6A7B8C9D0E1F2A3B4C5D6E7F8A9B0C1D2E3F4A5B6C7D8E9F0A1"),
		"digests are lowercase only")
}

func TestParseFrontmatter(t *testing.T) {
	t.Parallel()

	doc := []byte(`---
name: aws-debug
description: Debug AWS deployments
version: "1.2.0"
metadata:
  team: infra
---

# AWS Debug

Instructions here.
`)

	fm, err := ParseFrontmatter(doc)
	require.NoError(t, err)
	require.NotNil(t, fm)
	assert.Equal(t, "aws-debug", fm.Name)
	assert.Equal(t, "Debug AWS deployments", fm.Description)
	assert.Equal(t, "1.2.0", fm.Version)
	assert.Equal(t, "infra", fm.Metadata["team"])
}

func TestParseFrontmatter_None(t *testing.T) {
	t.Parallel()

	fm, err := ParseFrontmatter([]byte("# Plain document\n\nNo header."))
	require.NoError(t, err)
	assert.Nil(t, fm)
}

func TestParseFrontmatter_Unclosed(t *testing.T) {
	t.Parallel()

	_, err := ParseFrontmatter([]byte("---\nname: broken\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closing delimiter")
}

func TestParseFrontmatter_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := ParseFrontmatter([]byte("---\nname: [unterminated\n---\n"))
	require.Error(t, err)
}
