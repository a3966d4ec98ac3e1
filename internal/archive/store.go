// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists fetched records in a local SQLite database and
// serves full-text search over titles and abstracts.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-engine/internal/record"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

const dbFile = "pubmed.db"

// ErrNotArchived is returned when a PMID is not present in the archive.
var ErrNotArchived = errors.New("record not archived")

// Store manages the archive SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the archive database at dir/pubmed.db,
// creating the schema if it does not exist.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "archive"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL UNIQUE,
			title TEXT,
			abstract TEXT,
			year INTEGER,
			fields TEXT NOT NULL,
			stored_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_year ON records(year)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(title, abstract, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// StoreSummary holds counts from an archive run.
type StoreSummary struct {
	Stored  int
	Skipped int
}

// Store upserts the collection's non-excluded records, keyed by PMID.
// Records without a PMID cannot be archived and are skipped with a note
// to w.
func (s *Store) Store(ctx context.Context, c *record.Collection, w io.Writer) (StoreSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return StoreSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (pmid, title, abstract, year, fields, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pmid) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, year=excluded.year,
			fields=excluded.fields, stored_at=excluded.stored_at`)
	if err != nil {
		return StoreSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	var summary StoreSummary

	for i := 0; i < c.Len(); i++ {
		if c.IsMarked(i) {
			continue
		}
		rec := c.At(i)

		pmid, ok := rec.PMID()
		if !ok {
			fmt.Fprintf(w, "skipped record %d: no PMID\n", i)
			summary.Skipped++
			continue
		}

		fieldsJSON, err := json.Marshal(rec)
		if err != nil {
			return summary, fmt.Errorf("marshaling record %s: %w", pmid, err)
		}

		var year any
		if y, ok := rec.Year(); ok {
			year = y
		}

		if _, err := stmt.ExecContext(ctx,
			pmid, fieldText(rec, "TI"), fieldText(rec, "AB"), year, string(fieldsJSON), now,
		); err != nil {
			return summary, fmt.Errorf("upserting record %s: %w", pmid, err)
		}
		summary.Stored++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}
	return summary, nil
}

func fieldText(r *record.Record, code string) string {
	v, ok := r.Get(code)
	if !ok {
		return ""
	}
	return v.Join(" ")
}

// Get returns the archived record for a PMID, or ErrNotArchived.
func (s *Store) Get(ctx context.Context, pmid string) (*record.Record, error) {
	var fieldsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM records WHERE pmid = ?`, pmid,
	).Scan(&fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", pmid, ErrNotArchived)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", pmid, err)
	}
	return decodeRecord(fieldsJSON)
}

// Search runs an FTS5 match over titles and abstracts and returns the
// matching records, best first. limit 0 uses the configured default.
func (s *Store) Search(ctx context.Context, query string, limit int) (*record.Collection, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.fields FROM records r
		 JOIN records_fts f ON f.rowid = r.rowid
		 WHERE records_fts MATCH ?
		 ORDER BY rank LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching archive: %w", err)
	}
	defer rows.Close()

	return collectionFromRows(rows)
}

// List returns archived records ordered by year descending, then PMID.
// limit 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) (*record.Collection, error) {
	q := `SELECT fields FROM records ORDER BY year DESC, pmid`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	defer rows.Close()

	return collectionFromRows(rows)
}

// Count returns the number of archived records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// ExportJSON writes the full archive to path as a JSON array of records,
// in the same format Collection.Save produces.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	recs, err := s.List(ctx, 0)
	if err != nil {
		return err
	}
	return recs.Save(path)
}

func collectionFromRows(rows *sql.Rows) (*record.Collection, error) {
	out, err := record.NewCollection()
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var fieldsJSON string
		if err := rows.Scan(&fieldsJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec, err := decodeRecord(fieldsJSON)
		if err != nil {
			return nil, err
		}
		if err := out.Append(rec); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return out, nil
}

func decodeRecord(fieldsJSON string) (*record.Record, error) {
	rec := record.New()
	if err := json.Unmarshal([]byte(fieldsJSON), rec); err != nil {
		return nil, fmt.Errorf("decoding archived record: %w", err)
	}
	return rec, nil
}
