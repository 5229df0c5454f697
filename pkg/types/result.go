// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubscope pipeline.
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Row is a single tabular record returned by a source adapter. Keys are
// column names; a missing key means the source did not populate that
// column for this row.
type Row map[string]string

// ResultSet is an ordered sequence of rows from one source adapter.
// Column sets vary per source; adapters record the column order they
// emit so exports can reproduce it.
type ResultSet struct {
	// Columns lists the column names in adapter-defined order.
	Columns []string `json:"columns" yaml:"columns"`

	// Rows holds the records in the order the source returned them.
	Rows []Row `json:"rows" yaml:"rows"`
}

// Empty reports whether the result set contains no rows.
func (rs ResultSet) Empty() bool {
	return len(rs.Rows) == 0
}

// SourceDescriptor names the columns that carry author identity and work
// title for one source adapter. It is immutable configuration: exactly
// one descriptor exists per adapter, and the aggregation stage consumes
// it to key rows without source-specific code paths.
type SourceDescriptor struct {
	// Label is the display name of the source (e.g. "ClinicalTrials").
	Label string `json:"label" yaml:"label"`

	// GivenNameColumn holds the author's given name.
	GivenNameColumn string `json:"given_name_column" yaml:"given_name_column"`

	// FamilyNameColumn holds the author's family name.
	FamilyNameColumn string `json:"family_name_column" yaml:"family_name_column"`

	// TitleColumn holds the work title. A single cell may carry several
	// comma-separated titles.
	TitleColumn string `json:"title_column" yaml:"title_column"`
}
