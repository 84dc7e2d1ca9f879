// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package record stores skill version records in SQLite. Each skill identity
// has at most one current record and an append-only set of historical
// snapshots; version resolution consults the current record first and falls
// back to history.
package record
