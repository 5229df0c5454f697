// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID            int64          `json:"id" yaml:"id"`
	Timestamp     time.Time      `json:"timestamp" yaml:"timestamp"`
	Author        string         `json:"author,omitempty" yaml:"author,omitempty"`
	Institution   string         `json:"institution,omitempty" yaml:"institution,omitempty"`
	Sponsor       string         `json:"sponsor,omitempty" yaml:"sponsor,omitempty"`
	City          string         `json:"city,omitempty" yaml:"city,omitempty"`
	State         string         `json:"state,omitempty" yaml:"state,omitempty"`
	Keyword       string         `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	RowCounts     map[string]int `json:"row_counts" yaml:"row_counts"`
	Failures      []string       `json:"failures,omitempty" yaml:"failures,omitempty"`
	RankedAuthors int            `json:"ranked_authors" yaml:"ranked_authors"`
}

// AuthorHit is one ranked author matched by a full-text history query,
// with the run it came from.
type AuthorHit struct {
	RunID     int64               `json:"run_id" yaml:"run_id"`
	Timestamp time.Time           `json:"timestamp" yaml:"timestamp"`
	Author    string              `json:"author" yaml:"author"`
	Total     int                 `json:"total" yaml:"total"`
	Works     map[string][]string `json:"works" yaml:"works"`
}

// Runs lists the most recent runs, newest first. A zero limit uses the
// store default.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, author, institution, sponsor, city, state, keyword,
			row_counts, failures, ranked_authors
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			rs           RunSummary
			ts           string
			countsJSON   sql.NullString
			failuresJSON sql.NullString
		)
		if err := rows.Scan(
			&rs.ID, &ts, &rs.Author, &rs.Institution, &rs.Sponsor,
			&rs.City, &rs.State, &rs.Keyword,
			&countsJSON, &failuresJSON, &rs.RankedAuthors,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
			rs.Timestamp = t
		}
		if countsJSON.Valid {
			json.Unmarshal([]byte(countsJSON.String), &rs.RowCounts)
		}
		if failuresJSON.Valid {
			json.Unmarshal([]byte(failuresJSON.String), &rs.Failures)
		}

		summaries = append(summaries, rs)
	}

	return summaries, rows.Err()
}

// FindAuthors runs an FTS5 match over ranked author names and title
// text across all recorded runs, best match first.
func (s *Store) FindAuthors(ctx context.Context, query string, limit int) ([]AuthorHit, error) {
	if query == "" {
		return nil, fmt.Errorf("empty history query")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.run_id, runs.timestamp, r.author, r.total, r.works
		 FROM ranked_fts
		 JOIN ranked r ON r.rowid = ranked_fts.rowid
		 JOIN runs ON runs.id = r.run_id
		 WHERE ranked_fts MATCH ?
		 ORDER BY ranked_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var hits []AuthorHit
	for rows.Next() {
		var (
			hit       AuthorHit
			ts        string
			worksJSON string
		)
		if err := rows.Scan(&hit.RunID, &ts, &hit.Author, &hit.Total, &worksJSON); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
			hit.Timestamp = t
		}
		json.Unmarshal([]byte(worksJSON), &hit.Works)
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}
