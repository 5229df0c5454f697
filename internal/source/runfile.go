// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubscope/pkg/types"
)

// RunFile is the on-disk representation of a search run: the query, the
// raw per-source result sets, and failure notes. A run can be saved and
// reloaded later without re-querying the APIs.
type RunFile struct {
	Query   RunParams                  `yaml:"query"`
	Sets    map[string]types.ResultSet `yaml:"sets"`
	Summary RunSummary                 `yaml:"summary"`
}

// RunParams stores the query filters in a serializable form.
type RunParams struct {
	Author      string `yaml:"author,omitempty"`
	Institution string `yaml:"institution,omitempty"`
	Sponsor     string `yaml:"sponsor,omitempty"`
	City        string `yaml:"city,omitempty"`
	State       string `yaml:"state,omitempty"`
	Keyword     string `yaml:"keyword,omitempty"`
}

// RunSummary stores per-source row counts, failures, and a timestamp.
type RunSummary struct {
	RowCounts map[string]int `yaml:"row_counts"`
	Failures  []string       `yaml:"failures,omitempty"`
	Timestamp time.Time      `yaml:"timestamp"`
}

// WriteRunFile saves a fan-out run to a YAML file.
func WriteRunFile(path string, query Query, out FetchOutput) error {
	rf := RunFile{
		Query: RunParams{
			Author:      query.Author,
			Institution: query.Institution,
			Sponsor:     query.Sponsor,
			City:        query.City,
			State:       query.State,
			Keyword:     query.Keyword,
		},
		Sets: out.Sets,
		Summary: RunSummary{
			RowCounts: make(map[string]int, len(out.Sets)),
			Failures:  out.Failures,
			Timestamp: time.Now(),
		},
	}
	for label, set := range out.Sets {
		rf.Summary.RowCounts[label] = len(set.Rows)
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}

// ToQuery converts stored RunParams back into a Query struct.
func (p RunParams) ToQuery() Query {
	return Query{
		Author:      p.Author,
		Institution: p.Institution,
		Sponsor:     p.Sponsor,
		City:        p.City,
		State:       p.State,
		Keyword:     p.Keyword,
	}
}
