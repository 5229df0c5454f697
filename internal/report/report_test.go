// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/pubscope/internal/aggregate"
)

func testEntries() []aggregate.RankedEntry {
	return []aggregate.RankedEntry{
		{
			Author: "Jane Doe",
			Total:  3,
			Works: aggregate.SourceWorks{
				"LensScholar":    aggregate.TitleSet{"Paper B": {}, "Paper A": {}},
				"ClinicalTrials": aggregate.TitleSet{"Trial C": {}},
			},
		},
		{
			Author: "John Smith",
			Total:  2,
			Works: aggregate.SourceWorks{
				"LensPatent": aggregate.TitleSet{"Patent D": {}, "Patent E": {}},
			},
		},
	}
}

// --- Build ---

func TestBuildPreservesRankOrder(t *testing.T) {
	doc := Build(testEntries())
	if len(doc.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Author != "Jane Doe" || doc.Sections[1].Author != "John Smith" {
		t.Errorf("section order = [%q, %q], want rank order",
			doc.Sections[0].Author, doc.Sections[1].Author)
	}
}

func TestBuildSortsLabelsAndTitles(t *testing.T) {
	doc := Build(testEntries())

	blocks := doc.Sections[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("len(Blocks) = %d, want 2", len(blocks))
	}
	if blocks[0].Label != "ClinicalTrials" || blocks[1].Label != "LensScholar" {
		t.Errorf("labels = [%q, %q], want sorted", blocks[0].Label, blocks[1].Label)
	}
	titles := blocks[1].Titles
	if len(titles) != 2 || titles[0] != "Paper A" || titles[1] != "Paper B" {
		t.Errorf("titles = %v, want sorted [Paper A, Paper B]", titles)
	}
}

// --- Markdown ---

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(Build(testEntries()), &buf); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Jane Doe\n",
		"Total distinct works: 3\n",
		"## ClinicalTrials\n",
		"- Trial C\n",
		"## LensScholar\n",
		"- Paper A\n",
		"# John Smith\n",
		"- Patent E\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\noutput:\n%s", want, out)
		}
	}

	// One hard page break per author section.
	if n := strings.Count(out, "\\newpage"); n != 2 {
		t.Errorf("page break count = %d, want 2", n)
	}

	// Jane's section comes before the first page break, John's after.
	if strings.Index(out, "# John Smith") < strings.Index(out, "\\newpage") {
		t.Error("second author should start after the first page break")
	}
}

func TestWriteMarkdownEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(Document{}, &buf); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	if !strings.Contains(buf.String(), "No authors") {
		t.Errorf("empty document output = %q, want no-authors note", buf.String())
	}
	if strings.Contains(buf.String(), "\\newpage") {
		t.Error("empty document should have no page breaks")
	}
}

// --- JSON ---

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJSON(Build(testEntries()), &buf); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Total != 3 {
		t.Errorf("Total = %d, want 3", doc.Sections[0].Total)
	}
}

// --- summary ---

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	FormatSummary(Build(testEntries()), &buf)
	out := buf.String()

	if !strings.Contains(out, "Jane Doe") || !strings.Contains(out, "John Smith") {
		t.Errorf("summary missing authors:\n%s", out)
	}
	if !strings.Contains(out, "ClinicalTrials,LensScholar") {
		t.Errorf("summary missing source list:\n%s", out)
	}
	if !strings.Contains(out, "2 authors") {
		t.Errorf("summary missing author count:\n%s", out)
	}
}

func TestFormatSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatSummary(Document{}, &buf)
	if !strings.Contains(buf.String(), "No authors") {
		t.Errorf("empty summary = %q, want no-authors note", buf.String())
	}
}
