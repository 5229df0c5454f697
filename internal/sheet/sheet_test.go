// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sheet

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/pubscope/pkg/types"
)

func TestWriteSheets(t *testing.T) {
	sets := map[string]types.ResultSet{
		"LensScholar": {
			Columns: []string{"AuthorFirstName", "AuthorLastName", "Title"},
			Rows: []types.Row{
				{"AuthorFirstName": "Jane", "AuthorLastName": "Doe", "Title": "Paper A"},
				{"AuthorFirstName": "John", "Title": "Paper B"}, // missing last name
			},
		},
		"ClinicalTrials": {
			Columns: []string{"OfficialFirstName", "OfficialLastName", "BriefTitle"},
			Rows: []types.Row{
				{"OfficialFirstName": "Jane", "OfficialLastName": "Doe", "BriefTitle": "Trial C"},
			},
		},
	}

	data, err := WriteSheets(sets)
	if err != nil {
		t.Fatalf("WriteSheets: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	// Sorted label order, no leftover default sheet.
	names := f.GetSheetList()
	if len(names) != 2 || names[0] != "ClinicalTrials" || names[1] != "LensScholar" {
		t.Fatalf("sheets = %v, want [ClinicalTrials LensScholar]", names)
	}

	header, err := f.GetCellValue("LensScholar", "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if header != "AuthorFirstName" {
		t.Errorf("A1 = %q, want AuthorFirstName", header)
	}

	title, _ := f.GetCellValue("LensScholar", "C2")
	if title != "Paper A" {
		t.Errorf("C2 = %q, want Paper A", title)
	}

	// A missing row key leaves the cell blank.
	blank, _ := f.GetCellValue("LensScholar", "B3")
	if blank != "" {
		t.Errorf("B3 = %q, want empty for missing key", blank)
	}

	trial, _ := f.GetCellValue("ClinicalTrials", "C2")
	if trial != "Trial C" {
		t.Errorf("ClinicalTrials C2 = %q, want Trial C", trial)
	}
}

func TestWriteSheetsEmptySetKeepsSheet(t *testing.T) {
	sets := map[string]types.ResultSet{
		"Failed": {},
		"OK": {
			Columns: []string{"First", "Last", "Title"},
			Rows:    []types.Row{{"First": "Jane", "Last": "Doe", "Title": "Paper A"}},
		},
	}

	data, err := WriteSheets(sets)
	if err != nil {
		t.Fatalf("WriteSheets: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) != 2 {
		t.Fatalf("sheets = %v, want failed source sheet retained", names)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"LensScholar", "LensScholar"},
		{"bad:name/with?chars", "bad_name_with_chars"},
		{"this-label-is-far-too-long-for-a-sheet-name", "this-label-is-far-too-long-for-"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sheetName(tt.input); got != tt.want {
				t.Errorf("sheetName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
