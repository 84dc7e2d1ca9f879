// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package archive validates and extracts untrusted ZIP-format skill artifacts.

The package exposes two deliberately separate trust contexts:

  - [ReadEntry] pulls one named entry into memory and never touches disk. It
    is the only operation the storage tier uses, so executables packaged in an
    artifact can never land on the storage host's filesystem.
  - [ExtractAll] (and its in-memory form [Entries]) unpacks the whole archive
    beneath a destination root. It is used only inside a per-execution
    sandbox on the delivery path.

Every operation enforces [Limits] before reading or writing anything:
compressed and uncompressed size ceilings, per-entry compression ratio (the
decompression-bomb defense), entry count, and path safety (absolute paths,
".." segments, and symlink entries are rejected). Each rule failure carries a
distinct errkind classification. The hardened safearchive reader runs
underneath the explicit checks as defense in depth.
*/
package archive
