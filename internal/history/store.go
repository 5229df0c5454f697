// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists search runs and their ranked authors in a
// local SQLite database with full-text retrieval.
// See docs/ARCHITECTURE.md § History.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubscope/internal/aggregate"
	"github.com/pdiddy/pubscope/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "pubscope.db"
)

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Run describes one search run for recording: the filters used, the
// per-source row counts, and any source failures.
type Run struct {
	Author      string
	Institution string
	Sponsor     string
	City        string
	State       string
	Keyword     string
	RowCounts   map[string]int
	Failures    []string
}

// NewStore opens or creates the history database at
// historyDir/index/pubscope.db, creating the schema if needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.HistoryDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
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
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			author TEXT,
			institution TEXT,
			sponsor TEXT,
			city TEXT,
			state TEXT,
			keyword TEXT,
			row_counts TEXT,
			failures TEXT,
			ranked_authors INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS ranked (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			author TEXT NOT NULL,
			total INTEGER NOT NULL,
			works TEXT NOT NULL,
			titles TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranked_run_id ON ranked(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over author names and title text, with triggers
	// for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='ranked_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE ranked_fts USING fts5(author, titles, content=ranked, content_rowid=rowid)`,
			`CREATE TRIGGER ranked_ai AFTER INSERT ON ranked BEGIN
				INSERT INTO ranked_fts(rowid, author, titles) VALUES (new.rowid, new.author, new.titles);
			END`,
			`CREATE TRIGGER ranked_ad AFTER DELETE ON ranked BEGIN
				INSERT INTO ranked_fts(ranked_fts, rowid, author, titles) VALUES('delete', old.rowid, old.author, old.titles);
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

// RecordRun inserts a run and its ranked entries in one transaction and
// returns the run ID.
func (s *Store) RecordRun(ctx context.Context, run Run, entries []aggregate.RankedEntry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	countsJSON, _ := json.Marshal(run.RowCounts)
	failuresJSON, _ := json.Marshal(run.Failures)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (timestamp, author, institution, sponsor, city, state, keyword, row_counts, failures, ranked_authors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), run.Author, run.Institution,
		run.Sponsor, run.City, run.State, run.Keyword,
		string(countsJSON), string(failuresJSON), len(entries),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ranked (run_id, author, total, works, titles) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		worksJSON, err := json.Marshal(titlesByLabel(entry.Works))
		if err != nil {
			return 0, fmt.Errorf("marshaling works for %s: %w", entry.Author, err)
		}
		if _, err := stmt.ExecContext(ctx,
			runID, entry.Author, entry.Total, string(worksJSON), titleText(entry.Works),
		); err != nil {
			return 0, fmt.Errorf("inserting ranked author %s: %w", entry.Author, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// titlesByLabel converts set-valued works into sorted slices for JSON
// storage.
func titlesByLabel(works aggregate.SourceWorks) map[string][]string {
	out := make(map[string][]string, len(works))
	for label, titles := range works {
		for title := range titles {
			out[label] = append(out[label], title)
		}
		sort.Strings(out[label])
	}
	return out
}

// titleText flattens all titles into one searchable string.
func titleText(works aggregate.SourceWorks) string {
	var all []string
	for _, titles := range works {
		for title := range titles {
			all = append(all, title)
		}
	}
	sort.Strings(all)
	return strings.Join(all, " / ")
}
