// Package store mirrors registry entries into a SQLite table so other
// services can query downloads without parsing JSON.
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/alnah/go-docpress/internal/registry"
)

// Store is a SQLite-backed projection of the registry.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id             TEXT NOT NULL,
	tier           TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL,
	type           TEXT NOT NULL,
	output_path    TEXT NOT NULL,
	canonical_path TEXT NOT NULL DEFAULT '',
	file_size      INTEGER NOT NULL DEFAULT 0,
	available      INTEGER NOT NULL DEFAULT 0,
	requires_auth  INTEGER NOT NULL DEFAULT 0,
	version        TEXT NOT NULL DEFAULT '',
	priority       INTEGER NOT NULL DEFAULT 0,
	md5            TEXT NOT NULL DEFAULT '',
	sha256         TEXT NOT NULL DEFAULT '',
	last_modified  TEXT NOT NULL,
	sync_token     TEXT NOT NULL,
	PRIMARY KEY (id, tier)
);

CREATE INDEX IF NOT EXISTS idx_downloads_category ON downloads(category);
`

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Sync upserts every entry and deletes rows absent from entries, in one
// transaction.
func (s *Store) Sync(ctx context.Context, entries []registry.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin sync")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, upsertDownload)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	token := uuid.NewString()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.ID, string(e.Tier), e.Title, e.Description, e.Category, e.Type,
			e.OutputPath, e.CanonicalPath, e.FileSize, e.Exists, e.RequiresAuth,
			e.Version, e.Priority, e.MD5, e.SHA256, e.LastModified, token,
		); err != nil {
			return eris.Wrapf(err, "sqlite: upsert %s/%s", e.ID, e.Tier)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM downloads WHERE sync_token <> ?`, token); err != nil {
		return eris.Wrap(err, "sqlite: prune downloads")
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit sync")
}

const upsertDownload = `
INSERT INTO downloads (
	id, tier, title, description, category, type, output_path, canonical_path,
	file_size, available, requires_auth, version, priority, md5, sha256,
	last_modified, sync_token
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id, tier) DO UPDATE SET
	title = excluded.title,
	description = excluded.description,
	category = excluded.category,
	type = excluded.type,
	output_path = excluded.output_path,
	canonical_path = excluded.canonical_path,
	file_size = excluded.file_size,
	available = excluded.available,
	requires_auth = excluded.requires_auth,
	version = excluded.version,
	priority = excluded.priority,
	md5 = excluded.md5,
	sha256 = excluded.sha256,
	last_modified = excluded.last_modified,
	sync_token = excluded.sync_token`

// Row is a stored download.
type Row struct {
	ID         string
	Tier       string
	Title      string
	OutputPath string
	FileSize   int64
	Available  bool
}

// List returns every row ordered by id and tier.
func (s *Store) List(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tier, title, output_path, file_size, available FROM downloads ORDER BY id, tier`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list downloads")
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Tier, &r.Title, &r.OutputPath, &r.FileSize, &r.Available); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan download")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate downloads")
}
