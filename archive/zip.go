// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	stdzip "archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/safearchive/zip"

	"github.com/skillforge/skillforge-core/errkind"
)

// DocumentName is the required description-document entry, case-sensitive,
// at the archive root.
const DocumentName = "SKILL.md"

// Limits bounds the resources an untrusted archive may consume. The limits
// substitute for wall-clock timeouts: an oversized or malicious archive is
// rejected by these checks before it can consume unbounded time or memory.
type Limits struct {
	// MaxArchiveBytes caps the compressed archive size.
	MaxArchiveBytes int64

	// MaxUncompressedBytes caps the total declared uncompressed size.
	MaxUncompressedBytes int64

	// MaxCompressionRatio caps the per-entry uncompressed:compressed ratio.
	MaxCompressionRatio uint64

	// MaxEntries caps the number of entries.
	MaxEntries int

	// MaxDocumentBytes caps the size of the required description document.
	MaxDocumentBytes int64
}

// DefaultLimits returns the standard resource ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxArchiveBytes:      100 * 1024 * 1024,
		MaxUncompressedBytes: 500 * 1024 * 1024,
		MaxCompressionRatio:  100,
		MaxEntries:           10000,
		MaxDocumentBytes:     1 * 1024 * 1024,
	}
}

// Entry is one extracted archive member, held in memory.
type Entry struct {
	// Path is the slash-separated path within the archive.
	Path string

	// Content is the uncompressed entry bytes.
	Content []byte

	// Mode is the entry's permission bits.
	Mode os.FileMode
}

// checkSize rejects empty or oversized archive byte streams before parsing.
func checkSize(data []byte, limits Limits) error {
	if len(data) == 0 {
		return errkind.New(errkind.Validation, "archive is empty")
	}
	if int64(len(data)) > limits.MaxArchiveBytes {
		return errkind.Newf(errkind.ArchiveTooLarge,
			"archive too large: %d bytes (max: %d)", len(data), limits.MaxArchiveBytes)
	}
	return nil
}

// parseRaw opens the archive with the standard reader. Validation must see
// the raw, unsanitized entry names so that unsafe paths are rejected loudly
// instead of silently rewritten.
func parseRaw(data []byte, limits Limits) (*stdzip.Reader, error) {
	if err := checkSize(data, limits); err != nil {
		return nil, err
	}
	reader, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errkind.Newf(errkind.Validation, "invalid archive: %v", err)
	}
	return reader, nil
}

// openHardened opens the archive with the safearchive reader in its maximum
// security mode. All content reads go through this reader; it backstops the
// explicit checks in validate against traversal and symlink tricks.
func openHardened(data []byte) (*zip.Reader, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errkind.Newf(errkind.Validation, "invalid archive: %v", err)
	}
	reader.SetSecurityMode(zip.MaximumSecurityMode)
	return reader, nil
}

// Validate enforces every structural and resource rule on the archive without
// reading entry contents. It fails with a distinct error kind per rule and
// produces no output of any sort.
func Validate(data []byte, limits Limits) error {
	reader, err := parseRaw(data, limits)
	if err != nil {
		return err
	}
	return validate(reader, limits)
}

func validate(reader *stdzip.Reader, limits Limits) error {
	if len(reader.File) == 0 {
		return errkind.New(errkind.Validation, "archive contains no entries")
	}
	if len(reader.File) > limits.MaxEntries {
		return errkind.Newf(errkind.TooManyEntries,
			"too many entries in archive: %d (max: %d)", len(reader.File), limits.MaxEntries)
	}

	var totalUncompressed uint64
	hasDocument := false

	for _, f := range reader.File {
		if f.Name == DocumentName {
			hasDocument = true
			if f.UncompressedSize64 > uint64(limits.MaxDocumentBytes) {
				return errkind.Newf(errkind.ArchiveTooLarge,
					"%s too large: %d bytes (max: %d)", DocumentName, f.UncompressedSize64, limits.MaxDocumentBytes)
			}
		}

		for _, r := range f.Name {
			if r < 32 || r == 127 {
				return errkind.Newf(errkind.Validation, "invalid character in entry name: %q", f.Name)
			}
		}

		if err := validateEntryPath(f.Name); err != nil {
			return err
		}

		if f.Mode()&os.ModeSymlink != 0 {
			return errkind.Newf(errkind.UnsafePath, "symlink entry not allowed in archive: %s", f.Name)
		}

		totalUncompressed += f.UncompressedSize64
		if f.CompressedSize64 > 0 {
			ratio := f.UncompressedSize64 / f.CompressedSize64
			if ratio > limits.MaxCompressionRatio {
				return errkind.Newf(errkind.ArchiveTooLarge,
					"suspicious compression ratio in %s: %d:1 (max: %d:1)", f.Name, ratio, limits.MaxCompressionRatio)
			}
		}
	}

	if totalUncompressed > uint64(limits.MaxUncompressedBytes) {
		return errkind.Newf(errkind.ArchiveTooLarge,
			"total uncompressed size too large: %d bytes (max: %d)", totalUncompressed, limits.MaxUncompressedBytes)
	}

	if !hasDocument {
		return errkind.Newf(errkind.MissingEntry, "%s not found in archive", DocumentName)
	}

	return nil
}

// validateEntryPath checks that an entry path cannot escape the extraction
// root. path.Clean resolves all ".." segments; any remaining leading ".."
// means the path escapes.
func validateEntryPath(p string) error {
	cleaned := path.Clean(p)
	if path.IsAbs(cleaned) {
		return errkind.Newf(errkind.UnsafePath, "absolute path not allowed in archive: %s", p)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return errkind.Newf(errkind.UnsafePath, "path traversal detected in archive: %s", p)
	}
	// Windows-style separators and drive letters never pass through to the
	// filesystem layer.
	if strings.Contains(p, `\`) || strings.Contains(p, ":") {
		return errkind.Newf(errkind.UnsafePath, "unsupported path separator in archive: %s", p)
	}
	return nil
}

// ReadEntry validates the archive and returns the content of one named entry,
// entirely in memory. It never writes to disk, which keeps it safe to call on
// the storage tier. A missing required description document is reported as a
// distinct missing-entry error; any other absent name is not-found.
func ReadEntry(data []byte, name string, limits Limits) ([]byte, error) {
	if err := Validate(data, limits); err != nil {
		return nil, err
	}

	reader, err := openHardened(data)
	if err != nil {
		return nil, err
	}

	for _, f := range reader.File {
		if f.Name != name {
			continue
		}

		limit := int64(f.UncompressedSize64)
		if name == DocumentName {
			limit = limits.MaxDocumentBytes
		}

		content, err := readEntryContent(f, limit)
		if err != nil {
			return nil, err
		}

		if name == DocumentName && len(content) == 0 {
			return nil, errkind.Newf(errkind.Validation, "%s is empty", DocumentName)
		}

		return content, nil
	}

	if name == DocumentName {
		return nil, errkind.Newf(errkind.MissingEntry, "%s not found in archive", DocumentName)
	}
	return nil, errkind.Newf(errkind.NotFound, "entry not found in archive: %s", name)
}

// readEntryContent reads one entry's bytes, enforcing the actual (not merely
// declared) uncompressed size against the cap.
func readEntryContent(f *zip.File, maxBytes int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("opening archive entry %s: %w", f.Name, err), errkind.Validation)
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(io.LimitReader(rc, maxBytes))
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("reading archive entry %s: %w", f.Name, err), errkind.Validation)
	}

	if int64(len(content)) == maxBytes {
		// Probe one more byte to distinguish exactly-at-cap from over-cap.
		extra := make([]byte, 1)
		if n, _ := rc.Read(extra); n > 0 {
			return nil, errkind.Newf(errkind.ArchiveTooLarge,
				"entry %s exceeds %d bytes", f.Name, maxBytes)
		}
	}

	return content, nil
}

// Entries validates the archive and returns every regular-file entry fully in
// memory. Each entry's real uncompressed size is enforced while reading, so
// lying headers cannot smuggle oversized content past Validate.
func Entries(data []byte, limits Limits) ([]Entry, error) {
	if err := Validate(data, limits); err != nil {
		return nil, err
	}

	reader, err := openHardened(data)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var total int64

	for _, f := range reader.File {
		info := f.FileInfo()
		if info.IsDir() {
			continue
		}
		if !info.Mode().IsRegular() {
			return nil, errkind.Newf(errkind.UnsafePath, "non-regular entry not allowed in archive: %s", f.Name)
		}

		limit := int64(f.UncompressedSize64)
		if remaining := limits.MaxUncompressedBytes - total; limit > remaining {
			limit = remaining
		}

		content, err := readEntryContent(f, limit)
		if err != nil {
			return nil, err
		}
		total += int64(len(content))

		entries = append(entries, Entry{
			Path:    path.Clean(f.Name),
			Content: content,
			Mode:    info.Mode().Perm(),
		})
	}

	return entries, nil
}

// ExtractAll validates the archive and writes every entry beneath the
// destination root. Validation completes before the first write, so a
// rejected archive leaves no partial output. This is only ever called inside
// a per-execution sandbox filesystem, never on the storage tier.
func ExtractAll(data []byte, root string, limits Limits) error {
	entries, err := Entries(data, limits)
	if err != nil {
		return err
	}

	cleanRoot := filepath.Clean(root)
	if err := os.MkdirAll(cleanRoot, 0o755); err != nil {
		return errkind.WithKind(fmt.Errorf("creating extraction root: %w", err), errkind.Storage)
	}

	for _, e := range entries {
		if !filepath.IsLocal(filepath.FromSlash(e.Path)) {
			return errkind.Newf(errkind.UnsafePath, "path traversal detected in archive: %s", e.Path)
		}
		target := filepath.Join(cleanRoot, filepath.FromSlash(e.Path))

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errkind.WithKind(fmt.Errorf("creating directory for %s: %w", e.Path, err), errkind.Storage)
		}

		mode := e.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, e.Content, mode); err != nil {
			return errkind.WithKind(fmt.Errorf("writing %s: %w", e.Path, err), errkind.Storage)
		}
	}

	return nil
}
