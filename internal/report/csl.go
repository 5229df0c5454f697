package report

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style
// Language) format. The field names follow the CSL-YAML schema so the
// output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID     string    `yaml:"id"`
	Type   string    `yaml:"type"`
	Title  string    `yaml:"title"`
	Author []CSLName `yaml:"author,omitempty"`
	Source string    `yaml:"source,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// FormatCSL writes every work in the document as a CSL-YAML list to w,
// one item per (author, source, title). Patent titles become type
// "patent"; everything else is "article".
func FormatCSL(doc Document, w io.Writer) error {
	var items []CSLItem
	for _, section := range doc.Sections {
		name := parseAuthorName(section.Author)
		for _, block := range section.Blocks {
			for i, title := range block.Titles {
				items = append(items, CSLItem{
					ID:     cslID(section.Author, block.Label, i),
					Type:   cslType(block.Label),
					Title:  title,
					Author: []CSLName{name},
					Source: block.Label,
				})
			}
		}
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// cslID builds a stable slug from the author, source, and title index.
func cslID(author, label string, i int) string {
	slug := strings.ToLower(strings.ReplaceAll(author, " ", "-"))
	return fmt.Sprintf("%s-%s-%d", slug, strings.ToLower(label), i+1)
}

func cslType(label string) string {
	if strings.Contains(strings.ToLower(label), "patent") {
		return "patent"
	}
	return "article"
}

// parseAuthorName splits an author key into CSL family/given parts. The
// key is "Given Family" by construction, split on the last space.
// Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
