// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

//go:generate mockgen -source=sandbox.go -destination=mocks/mock_sandbox.go -package=mocks Sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillforge/skillforge-core/errkind"
)

// Sandbox is the filesystem boundary artifacts are delivered into. It is a
// per-execution namespace, never the storage tier's own filesystem.
// Implementations may be local directories or remote execution environments.
type Sandbox interface {
	// Join builds a sandbox path from the given elements.
	Join(elem ...string) string

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string, mode os.FileMode) error

	// WriteFile writes a file, creating or truncating it.
	WriteFile(path string, data []byte, mode os.FileMode) error

	// Exists reports whether a path exists in the sandbox.
	Exists(path string) (bool, error)
}

// DirSandbox is a Sandbox rooted at a local directory. All paths it hands out
// stay inside the root; writes to paths outside it are rejected.
type DirSandbox struct {
	root string
}

// NewDirSandbox creates a sandbox rooted at the given directory, creating it
// if needed.
func NewDirSandbox(root string) (*DirSandbox, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create sandbox root: %w", err)
	}
	return &DirSandbox{root: abs}, nil
}

// Root returns the sandbox root directory.
func (s *DirSandbox) Root() string {
	return s.root
}

// Join builds an absolute path under the sandbox root.
func (s *DirSandbox) Join(elem ...string) string {
	return filepath.Join(append([]string{s.root}, elem...)...)
}

// MkdirAll creates a directory inside the sandbox.
func (s *DirSandbox) MkdirAll(path string, mode os.FileMode) error {
	if err := s.contain(path); err != nil {
		return err
	}
	return os.MkdirAll(path, mode)
}

// WriteFile writes a file inside the sandbox.
func (s *DirSandbox) WriteFile(path string, data []byte, mode os.FileMode) error {
	if err := s.contain(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	return os.WriteFile(path, data, mode)
}

// Exists reports whether the path exists.
func (s *DirSandbox) Exists(path string) (bool, error) {
	if err := s.contain(path); err != nil {
		return false, err
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// contain rejects paths that resolve outside the sandbox root.
func (s *DirSandbox) contain(path string) error {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errkind.Newf(errkind.UnsafePath, "path escapes sandbox root: %s", path)
	}
	return nil
}
