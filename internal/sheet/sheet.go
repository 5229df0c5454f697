// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sheet writes source result sets as an xlsx workbook, one sheet
// per source.
// See docs/ARCHITECTURE.md § Export.
package sheet

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/pubscope/pkg/types"
)

// maxSheetNameLen is the xlsx format's sheet name limit.
const maxSheetNameLen = 31

// WriteSheets builds an xlsx workbook with one sheet per result set and
// returns the encoded bytes. Sheets appear in sorted label order; each
// sheet gets a header row from the set's column list followed by one row
// per record. An empty result set still produces its sheet with just the
// header row, so a failed source is visible in the export.
func WriteSheets(sets map[string]types.ResultSet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	labels := make([]string, 0, len(sets))
	for label := range sets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for i, label := range labels {
		name := sheetName(label)
		if i == 0 {
			// Reuse the default sheet rather than leaving an empty Sheet1.
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("renaming default sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("creating sheet %s: %w", name, err)
			}
		}
		if err := writeSet(f, name, sets[label]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves the workbook for the given result sets to path.
func Write(path string, sets map[string]types.ResultSet) error {
	data, err := WriteSheets(sets)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing workbook %s: %w", path, err)
	}
	return nil
}

func writeSet(f *excelize.File, name string, set types.ResultSet) error {
	for col, header := range set.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("addressing header cell: %w", err)
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("writing header %s: %w", header, err)
		}
	}

	for r, row := range set.Rows {
		for col, header := range set.Columns {
			value, ok := row[header]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return fmt.Errorf("addressing cell: %w", err)
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

// sheetName sanitizes a source label into a legal xlsx sheet name.
func sheetName(label string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, label)
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}
	return name
}
