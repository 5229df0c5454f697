// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/pubscope/internal/httputil"
	"github.com/pdiddy/pubscope/pkg/types"
)

// lensScholarBase is the Lens.org scholarly search endpoint. Declared as
// a var so tests can substitute an httptest server.
var lensScholarBase = "https://api.lens.org/scholarly/search"

// Column names emitted by the Lens scholarly adapter.
const (
	lsColFirstName   = "AuthorFirstName"
	lsColLastName    = "AuthorLastName"
	lsColTitle       = "Title"
	lsColLensID      = "LensID"
	lsColAffiliation = "Affiliation"
	lsColYear        = "PublicationYear"
)

// LensScholarAdapter queries the Lens.org scholarly works index.
type LensScholarAdapter struct {
	Client *http.Client
	APIKey string
}

// Label returns the source display name.
func (a *LensScholarAdapter) Label() string { return "LensScholar" }

// Descriptor names the identity and title columns for aggregation.
func (a *LensScholarAdapter) Descriptor() types.SourceDescriptor {
	return types.SourceDescriptor{
		Label:            a.Label(),
		GivenNameColumn:  lsColFirstName,
		FamilyNameColumn: lsColLastName,
		TitleColumn:      lsColTitle,
	}
}

// Fetch posts a boolean query to the scholarly search API and flattens
// each work into one row per author, so a work with three authors
// contributes three rows sharing a title.
func (a *LensScholarAdapter) Fetch(ctx context.Context, query Query, cfg types.SearchConfig) (types.ResultSet, error) {
	body, err := buildLensScholarBody(query, cfg)
	if err != nil {
		return types.ResultSet{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lensScholarBase, bytes.NewReader(body))
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)
	if a.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("Lens scholarly API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.ResultSet{}, fmt.Errorf("Lens scholarly API returned HTTP %d", resp.StatusCode)
	}

	var lsr lensScholarResponse
	if err := json.NewDecoder(resp.Body).Decode(&lsr); err != nil {
		return types.ResultSet{}, fmt.Errorf("parsing Lens scholarly response: %w", err)
	}

	set := types.ResultSet{
		Columns: []string{
			lsColFirstName, lsColLastName, lsColTitle,
			lsColLensID, lsColAffiliation, lsColYear,
		},
	}

	for _, work := range lsr.Data {
		if len(work.Authors) == 0 {
			set.Rows = append(set.Rows, types.Row{
				lsColTitle:  work.Title,
				lsColLensID: work.LensID,
				lsColYear:   yearString(work.YearPublished),
			})
			continue
		}
		for _, author := range work.Authors {
			row := types.Row{
				lsColTitle:  work.Title,
				lsColLensID: work.LensID,
				lsColYear:   yearString(work.YearPublished),
			}
			if author.FirstName != "" {
				row[lsColFirstName] = author.FirstName
			}
			if author.LastName != "" {
				row[lsColLastName] = author.LastName
			}
			if len(author.Affiliations) > 0 {
				row[lsColAffiliation] = author.Affiliations[0].Name
			}
			set.Rows = append(set.Rows, row)
		}
	}

	return set, nil
}

// buildLensScholarBody constructs the boolean must-clause request body.
// City, state, and sponsor have no scholarly equivalent and are ignored.
func buildLensScholarBody(q Query, cfg types.SearchConfig) ([]byte, error) {
	var must []map[string]any

	if q.Author != "" {
		must = append(must, matchPhrase("author.display_name", q.Author))
	}
	if q.Institution != "" {
		must = append(must, matchPhrase("author.affiliation.name", q.Institution))
	}
	if q.Keyword != "" {
		must = append(must, matchPhrase("title", q.Keyword))
	}

	size := cfg.MaxResults
	if size <= 0 {
		size = 200
	}
	if size > 1000 {
		size = 1000
	}

	var queryClause any
	if len(must) == 0 {
		queryClause = map[string]any{"match_all": map[string]any{}}
	} else {
		queryClause = map[string]any{"bool": map[string]any{"must": must}}
	}

	body := map[string]any{
		"query":   queryClause,
		"size":    size,
		"include": []string{"lens_id", "title", "authors", "year_published"},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling Lens scholarly query: %w", err)
	}
	return data, nil
}

func matchPhrase(field, value string) map[string]any {
	return map[string]any{"match_phrase": map[string]any{field: value}}
}

func yearString(year int) string {
	if year <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", year)
}

// Lens scholarly API JSON structures.
type lensScholarResponse struct {
	Total int               `json:"total"`
	Data  []lensScholarWork `json:"data"`
}

type lensScholarWork struct {
	LensID        string              `json:"lens_id"`
	Title         string              `json:"title"`
	YearPublished int                 `json:"year_published"`
	Authors       []lensScholarAuthor `json:"authors"`
}

type lensScholarAuthor struct {
	FirstName    string                   `json:"first_name"`
	LastName     string                   `json:"last_name"`
	Affiliations []lensScholarAffiliation `json:"affiliations"`
}

type lensScholarAffiliation struct {
	Name string `json:"name"`
}
