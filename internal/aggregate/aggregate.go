// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate cross-references authors across source result sets
// and ranks them by distinct work count.
// See docs/ARCHITECTURE.md § Aggregation.
package aggregate

import (
	"strings"

	"github.com/pdiddy/pubscope/pkg/types"
)

// TitleSet is a set of distinct work titles.
type TitleSet map[string]struct{}

// SourceWorks maps a source label to the distinct titles attributed to
// one author in that source.
type SourceWorks map[string]TitleSet

// Record maps an author key ("First Last", trimmed, exact match) to their
// per-source works. Built once per run and never mutated after ranking.
type Record map[string]SourceWorks

// Aggregate folds the per-source result sets into a single Record. It is
// a pure function of its inputs: aggregating the same sets twice yields
// an identical Record.
//
// Row handling follows a best-effort policy. A row whose title cell is
// empty or whose given- or family-name cell is empty is skipped silently;
// data-quality gaps in one source must not abort the run. A title cell
// holding several comma-separated titles contributes each trimmed
// fragment as a distinct work.
func Aggregate(sets map[string]types.ResultSet, descs map[string]types.SourceDescriptor) Record {
	record := make(Record)

	for label, set := range sets {
		desc, ok := descs[label]
		if !ok {
			continue
		}
		for _, row := range set.Rows {
			titleCell := strings.TrimSpace(row[desc.TitleColumn])
			if titleCell == "" {
				continue
			}

			given := strings.TrimSpace(row[desc.GivenNameColumn])
			family := strings.TrimSpace(row[desc.FamilyNameColumn])
			if given == "" || family == "" {
				continue
			}
			key := given + " " + family

			for _, fragment := range strings.Split(titleCell, ",") {
				title := strings.TrimSpace(fragment)
				if title == "" {
					continue
				}
				insert(record, key, desc.Label, title)
			}
		}
	}

	return record
}

func insert(record Record, key, label, title string) {
	works, ok := record[key]
	if !ok {
		works = make(SourceWorks)
		record[key] = works
	}
	titles, ok := works[label]
	if !ok {
		titles = make(TitleSet)
		works[label] = titles
	}
	titles[title] = struct{}{}
}

// Total returns the distinct-title count summed over all sources.
func (w SourceWorks) Total() int {
	n := 0
	for _, titles := range w {
		n += len(titles)
	}
	return n
}
