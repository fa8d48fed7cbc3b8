// Package catalog keeps an index of known projects in a local sqlite database
// so project listings do not need to walk and parse every project folder.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/platform"

	_ "modernc.org/sqlite"
)

// FileName is the catalog database inside the projects folder
const FileName = "catalog.sqlite"

// Entry is one catalogued project
type Entry struct {
	Path          string
	Name          string
	Theme         string
	Duration      time.Duration
	ExportedMovie string
	CreatedAt     time.Time
	SavedAt       time.Time
}

// EntryFromMetadata builds the catalog row for the project in path
func EntryFromMetadata(path string, md model.Metadata) Entry {
	return Entry{
		Path:          path,
		Name:          md.Name,
		Theme:         md.Theme,
		Duration:      md.Duration,
		ExportedMovie: md.ExportedMovie,
		CreatedAt:     md.CreatedAt,
		SavedAt:       md.SavedAt,
	}
}

// Catalog is safe for concurrent use
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog inside dir
func Open(ctx context.Context, dir string) (*Catalog, error) {
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS projects (
		path TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		theme TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		exported_movie TEXT NOT NULL DEFAULT '',
		created_at_unixms INTEGER NOT NULL,
		saved_at_unixms INTEGER NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

// Close releases the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Upsert records or refreshes a project
func (c *Catalog) Upsert(ctx context.Context, e Entry) error {
	_, err := c.db.ExecContext(ctx, `INSERT INTO projects
		(path, name, theme, duration_ms, exported_movie, created_at_unixms, saved_at_unixms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			theme = excluded.theme,
			duration_ms = excluded.duration_ms,
			exported_movie = excluded.exported_movie,
			saved_at_unixms = excluded.saved_at_unixms`,
		e.Path, e.Name, e.Theme, e.Duration.Milliseconds(), e.ExportedMovie,
		e.CreatedAt.UnixMilli(), e.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to catalog project %s: %w", e.Path, err)
	}
	return nil
}

// Remove forgets a project. Removing an unknown path is not an error.
func (c *Catalog) Remove(ctx context.Context, path string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM projects WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to remove project %s from catalog: %w", path, err)
	}
	return nil
}

// Get returns the entry for path
func (c *Catalog) Get(ctx context.Context, path string) (Entry, error) {
	row := c.db.QueryRowContext(ctx, `SELECT path, name, theme, duration_ms, exported_movie, created_at_unixms, saved_at_unixms
		FROM projects WHERE path = ?`, path)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, &model.NotFoundError{Kind: "project", ID: path}
	}
	return e, err
}

// List returns all projects, most recently saved first
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path, name, theme, duration_ms, exported_movie, created_at_unixms, saved_at_unixms
		FROM projects ORDER BY saved_at_unixms DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var durationMs, createdMs, savedMs int64
	if err := s.Scan(&e.Path, &e.Name, &e.Theme, &durationMs, &e.ExportedMovie, &createdMs, &savedMs); err != nil {
		return Entry{}, err
	}
	e.Duration = time.Duration(durationMs) * time.Millisecond
	e.CreatedAt = time.UnixMilli(createdMs)
	e.SavedAt = time.UnixMilli(savedMs)
	return e, nil
}
