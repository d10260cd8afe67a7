// Package sqlite persists the gazetteer index in a local SQLite database so
// repeated pipeline runs never re-parse the multi-million-line source dumps.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io"

	_ "modernc.org/sqlite"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer"
)

// commitEvery bounds transaction size while streaming a large dump.
const commitEvery = 5000

type sqliteIndex struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite-backed gazetteer index with WAL
// mode enabled.
func Open(ctx context.Context, path string) (gazetteer.Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteIndex{db: db}, nil
}

// Close closes the database connection
func (s *sqliteIndex) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS places (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	place_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	norm_name TEXT NOT NULL,
	lat REAL NOT NULL,
	lon REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_places_norm ON places(norm_name);
CREATE INDEX IF NOT EXISTS idx_places_source_id ON places(source, place_id);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Load replaces all prior entries of the source, streaming records in and
// committing every few thousand rows. A failed load leaves whatever was
// committed; re-running the load replaces it wholesale, so the operation is
// idempotent per source.
func (s *sqliteIndex) Load(ctx context.Context, source string, records gazetteer.RecordReader) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM places WHERE source=?`, source); err != nil {
		return 0, err
	}

	var inserted int64
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO places (source, place_id, name, norm_name, lat, lon)
VALUES (?, ?, ?, ?, ?, ?);
`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	insert := func(rec gazetteer.Record, name string) error {
		norm := gazetteer.NormalizeName(name)
		if norm == "" {
			return nil
		}
		if _, err := stmt.ExecContext(ctx, source, rec.ID, name, norm, rec.Lat, rec.Lon); err != nil {
			return err
		}
		inserted++
		if inserted%commitEvery == 0 {
			stmt.Close()
			if err := tx.Commit(); err != nil {
				return err
			}
			if tx, err = s.db.BeginTx(ctx, nil); err != nil {
				return err
			}
			stmt, err = tx.PrepareContext(ctx, `
INSERT INTO places (source, place_id, name, norm_name, lat, lon)
VALUES (?, ?, ?, ?, ?, ?);
`)
			return err
		}
		return nil
	}

	// insert leaves tx nil when a fresh transaction could not be opened
	// after a batch commit.
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	for {
		rec, err := records.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rollback()
			return inserted, err
		}
		if err := insert(rec, rec.Name); err != nil {
			rollback()
			return inserted, err
		}
		for _, alt := range rec.AltNames {
			if err := insert(rec, alt); err != nil {
				rollback()
				return inserted, err
			}
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// Lookup returns candidates curated-source-first, insertion order within a
// source. The precedence lives in the ORDER BY so it is explicit and
// testable rather than incidental.
func (s *sqliteIndex) Lookup(ctx context.Context, name string) ([]gazetteer.Entry, error) {
	norm := gazetteer.NormalizeName(name)
	if norm == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT place_id, name, lat, lon, source
FROM places
WHERE norm_name = ?
ORDER BY CASE source WHEN 'pleiades' THEN 0 WHEN 'geonames' THEN 1 ELSE 2 END, seq;
`, norm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []gazetteer.Entry
	for rows.Next() {
		var e gazetteer.Entry
		if err := rows.Scan(&e.PlaceID, &e.Name, &e.Lat, &e.Lon, &e.Source); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LookupID resolves a place by its source-assigned numeric id.
func (s *sqliteIndex) LookupID(ctx context.Context, source string, id int64) (gazetteer.Entry, bool, error) {
	var e gazetteer.Entry
	err := s.db.QueryRowContext(ctx, `
SELECT place_id, name, lat, lon, source
FROM places
WHERE source = ? AND place_id = ?
ORDER BY seq
LIMIT 1;
`, source, id).Scan(&e.PlaceID, &e.Name, &e.Lat, &e.Lon, &e.Source)
	if err == sql.ErrNoRows {
		return gazetteer.Entry{}, false, nil
	}
	if err != nil {
		return gazetteer.Entry{}, false, err
	}
	return e, true, nil
}

// Count reports how many entries a source currently holds.
func (s *sqliteIndex) Count(ctx context.Context, source string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM places WHERE source=?`, source).Scan(&n)
	return n, err
}
