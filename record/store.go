// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/skillforge/skillforge-core/errkind"
	"github.com/skillforge/skillforge-core/skill"
)

//go:embed schema.sql
var schemaSQL string

// ErrRecordNotFound is returned when a current or historical record does not
// exist. It carries the not-found error kind and survives wrapping.
var ErrRecordNotFound = errkind.New(errkind.NotFound, "record not found")

// Store persists version records in SQLite. The current and historical
// collections live in separate tables; history rows are append-only.
//
// SQLite only supports one writer at a time, so the connection pool is pinned
// to a single connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the record database at the given path, creating the
// parent directory if needed. It applies the required pragmas and the schema;
// calling it on an existing database is a no-op for the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Single writer avoids SQLITE_BUSY under concurrent pushes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const recordColumns = "id, name, slug, scope, org, description, tag, digest, storage_key, created_at, updated_at"

// GetCurrent returns the current record for the identity addressed by scope,
// org and slug, or ErrRecordNotFound.
func (s *Store) GetCurrent(ctx context.Context, scope skill.Scope, org, slug string) (*skill.VersionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM skills WHERE scope = ? AND org = ? AND slug = ?`,
		string(scope), org, slug)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, skill.IdentityID(scope, org, slug))
	}
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("query current record: %w", err), errkind.Storage)
	}
	return rec, nil
}

// GetCurrentByID returns the current record with the given canonical identity
// ID, or ErrRecordNotFound.
func (s *Store) GetCurrentByID(ctx context.Context, id string) (*skill.VersionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM skills WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("query current record: %w", err), errkind.Storage)
	}
	return rec, nil
}

// SaveCurrent upserts the current record for the record's identity. The
// previous current row, if any, is replaced in place; last writer wins.
func (s *Store) SaveCurrent(ctx context.Context, rec *skill.VersionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO skills (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recordArgs(rec)...)
	if err != nil {
		return errkind.WithKind(fmt.Errorf("save current record: %w", err), errkind.Storage)
	}
	return nil
}

// Archive appends an immutable snapshot of the record to the historical
// collection. archivedAt orders snapshots within an identity; ties break on
// insertion order.
func (s *Store) Archive(ctx context.Context, rec *skill.VersionRecord, archivedAt time.Time) error {
	args := append(recordArgs(rec), archivedAt.UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO skill_history (skill_id, name, slug, scope, org, description, tag, digest, storage_key, created_at, updated_at, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if err != nil {
		return errkind.WithKind(fmt.Errorf("archive record: %w", err), errkind.Storage)
	}
	return nil
}

const historyColumns = "skill_id, name, slug, scope, org, description, tag, digest, storage_key, created_at, updated_at"

// FindHistoricalByDigest returns an archived snapshot of the identity with an
// exact digest match, or ErrRecordNotFound. Any matching snapshot is
// equivalent, since a digest pins immutable content.
func (s *Store) FindHistoricalByDigest(ctx context.Context, skillID, digest string) (*skill.VersionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM skill_history
		 WHERE skill_id = ? AND digest = ?
		 LIMIT 1`,
		skillID, digest)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s@%s", ErrRecordNotFound, skillID, digest)
	}
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("query history by digest: %w", err), errkind.Storage)
	}
	return rec, nil
}

// FindHistoricalByTag returns the most recently archived snapshot of the
// identity carrying the tag, or ErrRecordNotFound. Sub-nanosecond ties break
// on insertion order, newest first.
func (s *Store) FindHistoricalByTag(ctx context.Context, skillID, tag string) (*skill.VersionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM skill_history
		 WHERE skill_id = ? AND tag = ?
		 ORDER BY archived_at DESC, seq DESC
		 LIMIT 1`,
		skillID, tag)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s:%s", ErrRecordNotFound, skillID, tag)
	}
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("query history by tag: %w", err), errkind.Storage)
	}
	return rec, nil
}

// History returns all archived snapshots for the identity, newest first.
// Returns an empty slice when no snapshots exist.
func (s *Store) History(ctx context.Context, skillID string) ([]*skill.VersionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM skill_history
		 WHERE skill_id = ?
		 ORDER BY archived_at DESC, seq DESC`,
		skillID)
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("query history: %w", err), errkind.Storage)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListCurrent returns the current records visible in a scope. For the
// organization scope org narrows the result; for the platform scope org is
// ignored. Results are ordered by slug.
func (s *Store) ListCurrent(ctx context.Context, scope skill.Scope, org string) ([]*skill.VersionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM skills
		 WHERE scope = ? AND org = ?
		 ORDER BY slug`,
		string(scope), orgForScope(scope, org))
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("query current records: %w", err), errkind.Storage)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// DeleteIdentity removes the current record and every historical snapshot for
// the identity. It returns how many rows each table lost; deleting an unknown
// identity is not an error and reports zero counts.
func (s *Store) DeleteIdentity(ctx context.Context, id string) (current, history int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, errkind.WithKind(fmt.Errorf("begin transaction: %w", err), errkind.Storage)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM skills WHERE id = ?`, id)
	if err != nil {
		return 0, 0, errkind.WithKind(fmt.Errorf("delete current record: %w", err), errkind.Storage)
	}
	current, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM skill_history WHERE skill_id = ?`, id)
	if err != nil {
		return 0, 0, errkind.WithKind(fmt.Errorf("delete history: %w", err), errkind.Storage)
	}
	history, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, 0, errkind.WithKind(fmt.Errorf("commit delete: %w", err), errkind.Storage)
	}
	return current, history, nil
}

func orgForScope(scope skill.Scope, org string) string {
	if scope == skill.ScopePlatform {
		return ""
	}
	return org
}

func recordArgs(rec *skill.VersionRecord) []any {
	return []any{
		rec.Identity.ID,
		rec.Identity.Name,
		rec.Identity.Slug,
		string(rec.Identity.Scope),
		rec.Identity.Org,
		rec.Description,
		rec.Tag,
		rec.Digest,
		rec.StorageKey,
		rec.CreatedAt.UnixNano(),
		rec.UpdatedAt.UnixNano(),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*skill.VersionRecord, error) {
	var (
		rec                  skill.VersionRecord
		scope                string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&rec.Identity.ID,
		&rec.Identity.Name,
		&rec.Identity.Slug,
		&scope,
		&rec.Identity.Org,
		&rec.Description,
		&rec.Tag,
		&rec.Digest,
		&rec.StorageKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Identity.Scope = skill.Scope(scope)
	rec.CreatedAt = time.Unix(0, createdAt)
	rec.UpdatedAt = time.Unix(0, updatedAt)
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]*skill.VersionRecord, error) {
	records := make([]*skill.VersionRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errkind.WithKind(fmt.Errorf("scan record: %w", err), errkind.Storage)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errkind.WithKind(fmt.Errorf("iterate records: %w", err), errkind.Storage)
	}
	return records, nil
}
