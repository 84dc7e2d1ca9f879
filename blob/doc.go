// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package blob implements the hash-addressed blob store that holds skill
artifact archives.

Blobs are addressed by the SHA-256 digest of their exact bytes. [Store.Put]
checks for an existing copy before writing, so re-pushing byte-identical
content never stores a second copy and is safe from unsynchronized concurrent
writers. Blobs are immutable once stored.

Three backends implement the [Store] capability, selected by [Config]:

  - [FSStore]: one file per digest under a local directory, owner-only
    permissions.
  - [LayoutStore]: an OCI Image Layout directory, for interoperability with
    OCI tooling.
  - [S3Store]: an S3-compatible bucket (AWS S3, MinIO).
*/
package blob
