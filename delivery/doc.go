// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package delivery moves resolved skill artifacts into a per-execution
// sandbox filesystem and renders the prompt section that tells an agent what
// it received. Artifact failures never abort an execution; the affected skill
// degrades to its description document.
package delivery
