// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package skill

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the optional YAML frontmatter of a description document.
// All fields are optional; the engine imposes no structure on the document
// beyond this best-effort header.
type Frontmatter struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Version     string            `yaml:"version,omitempty"`
	License     string            `yaml:"license,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// maxFrontmatterSize limits frontmatter to prevent YAML parsing attacks.
const maxFrontmatterSize = 64 * 1024

// ParseFrontmatter extracts the YAML frontmatter from a description document.
// Documents without a frontmatter block return (nil, nil); a block that is
// present but malformed is an error.
func ParseFrontmatter(doc []byte) (*Frontmatter, error) {
	content := bytes.TrimSpace(doc)

	delimiter := []byte("---")
	if !bytes.HasPrefix(content, delimiter) {
		return nil, nil
	}

	rest := content[len(delimiter):]
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	endIdx := bytes.Index(rest, delimiter)
	if endIdx == -1 {
		return nil, fmt.Errorf("frontmatter missing closing delimiter (---)")
	}

	fmBytes := rest[:endIdx]

	if len(fmBytes) > maxFrontmatterSize {
		return nil, fmt.Errorf("frontmatter exceeds maximum size of %d bytes", maxFrontmatterSize)
	}

	var fm Frontmatter
	if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
		return nil, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}

	return &fm, nil
}
