// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"fmt"
	"strings"

	"github.com/skillforge/skillforge-core/skill"
)

// PromptSection renders a markdown section describing the delivered skills,
// suitable for appending to an agent's system prompt. Skills whose artifact
// could not be delivered are described without a filesystem location. An
// empty result renders to an empty string.
func (r *Result) PromptSection() string {
	if len(r.Mounts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n## Available Skills\n\n")
	b.WriteString("You have access to the following skills (reusable workflows and best practices).\n\n")

	for _, mount := range r.Mounts {
		fmt.Fprintf(&b, "### %s\n", displayName(mount.Record))
		if mount.ToolsAvailable {
			fmt.Fprintf(&b, "**Location**: `%s/`\n\n", mount.Path)
		} else {
			b.WriteString("No executable tools are available for this skill; rely on the description below.\n\n")
		}
		b.WriteString(strings.TrimRight(mount.Record.Description, "\n"))
		b.WriteString("\n\n")
	}

	return b.String()
}

// displayName prefers the name declared in the description document's
// frontmatter over the push-time identity name.
func displayName(rec *skill.VersionRecord) string {
	if fm, err := skill.ParseFrontmatter([]byte(rec.Description)); err == nil && fm != nil && fm.Name != "" {
		return fm.Name
	}
	return rec.Identity.Name
}
