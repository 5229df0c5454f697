// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import "sort"

// RankedEntry is one author in the ranked output: the author key, their
// per-source works, and the total distinct-title count.
type RankedEntry struct {
	Author string      `json:"author" yaml:"author"`
	Works  SourceWorks `json:"works" yaml:"works"`
	Total  int         `json:"total" yaml:"total"`
}

// rankThreshold is the minimum total distinct-title count for an author
// to appear in ranked output. Authors with a single work across all
// sources are below the relevance bar.
const rankThreshold = 2

// Rank converts a Record into a totally ordered list of entries: total
// count descending, ties broken by author key ascending so output is
// deterministic. Authors whose total is below the threshold are dropped.
// An empty Record yields an empty list.
func Rank(record Record) []RankedEntry {
	entries := make([]RankedEntry, 0, len(record))
	for author, works := range record {
		total := works.Total()
		if total < rankThreshold {
			continue
		}
		entries = append(entries, RankedEntry{
			Author: author,
			Works:  works,
			Total:  total,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Author < entries[j].Author
	})

	return entries
}
