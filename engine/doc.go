// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine ties the blob store, archive validation and the record store
// into the write and read paths of the skill registry: pushing new versions,
// resolving references to version records, fetching artifact bytes and
// deleting identities.
package engine
