// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders ranked author entries as a paginated document.
// See docs/ARCHITECTURE.md § Report.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdiddy/pubscope/internal/aggregate"
)

// SourceBlock is one source's contribution to an author section: the
// source display label and that author's distinct titles there.
type SourceBlock struct {
	Label  string   `json:"label" yaml:"label"`
	Titles []string `json:"titles" yaml:"titles"`
}

// AuthorSection is one author's block in the document: a heading, the
// total distinct-work count, and one block per source. A hard page break
// follows each section when the document is written out.
type AuthorSection struct {
	Author string        `json:"author" yaml:"author"`
	Total  int           `json:"total" yaml:"total"`
	Blocks []SourceBlock `json:"blocks" yaml:"blocks"`
}

// Document is the terminal artifact of the pipeline. Writing it to a
// file or HTTP response is the caller's concern.
type Document struct {
	Sections []AuthorSection `json:"sections" yaml:"sections"`
}

// Build converts ranked entries into a Document, preserving rank order.
// Source labels and titles within each section are sorted so the
// rendered document is stable across runs; iteration order of the
// underlying sets carries no meaning.
func Build(entries []aggregate.RankedEntry) Document {
	doc := Document{Sections: make([]AuthorSection, 0, len(entries))}

	for _, entry := range entries {
		section := AuthorSection{
			Author: entry.Author,
			Total:  entry.Total,
		}

		labels := make([]string, 0, len(entry.Works))
		for label := range entry.Works {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			block := SourceBlock{Label: label}
			for title := range entry.Works[label] {
				block.Titles = append(block.Titles, title)
			}
			sort.Strings(block.Titles)
			section.Blocks = append(section.Blocks, block)
		}

		doc.Sections = append(doc.Sections, section)
	}

	return doc
}

// WriteMarkdown renders the document as pandoc-consumable Markdown: a
// top-level heading per author, a sub-heading per source, one list line
// per title, and a \newpage break after each author. An empty document
// renders a single "no authors" note.
func WriteMarkdown(doc Document, w io.Writer) error {
	if len(doc.Sections) == 0 {
		_, err := fmt.Fprintln(w, "No authors with more than one work were found.")
		return err
	}

	for _, section := range doc.Sections {
		if _, err := fmt.Fprintf(w, "# %s\n\n", section.Author); err != nil {
			return err
		}
		fmt.Fprintf(w, "Total distinct works: %d\n\n", section.Total)

		for _, block := range section.Blocks {
			fmt.Fprintf(w, "## %s\n\n", block.Label)
			for _, title := range block.Titles {
				fmt.Fprintf(w, "- %s\n", title)
			}
			fmt.Fprintln(w)
		}

		if _, err := fmt.Fprint(w, "\\newpage\n\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write renders the document as Markdown to the given path.
func Write(doc Document, path string) error {
	var b strings.Builder
	if err := WriteMarkdown(doc, &b); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// FormatJSON writes the document as indented JSON to w.
func FormatJSON(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// FormatSummary writes a one-line-per-author overview table to w,
// used for terminal output before the full report is written.
func FormatSummary(doc Document, w io.Writer) {
	if len(doc.Sections) == 0 {
		fmt.Fprintln(w, "No authors with more than one work were found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-30s  %-6s  %s\n", "Rank", "Author", "Works", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 72))

	for i, section := range doc.Sections {
		labels := make([]string, 0, len(section.Blocks))
		for _, block := range section.Blocks {
			labels = append(labels, block.Label)
		}
		author := section.Author
		if len(author) > 30 {
			author = author[:27] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-30s  %-6d  %s\n",
			i+1, author, section.Total, strings.Join(labels, ","))
	}

	fmt.Fprintf(w, "\n%d authors\n", len(doc.Sections))
}
