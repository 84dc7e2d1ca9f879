// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package skill defines the core data model of the skill storage engine.

A skill is identified by an [Identity] (stable, created on first push) and
versioned through [VersionRecord] values. The content digest, a SHA-256 over
the exact archive bytes, is the immutable version key; tags are mutable
labels that may move between digests over time. Callers address versions with
a [Reference].

The package also carries the helpers shared by the write and read paths:
[Slugify] for name normalization and [ParseFrontmatter] for the optional YAML
header of the description document.
*/
package skill
