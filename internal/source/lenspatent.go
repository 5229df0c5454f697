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

// lensPatentBase is the Lens.org patent search endpoint. Declared as a
// var so tests can substitute an httptest server.
var lensPatentBase = "https://api.lens.org/patent/search"

// Column names emitted by the Lens patent adapter.
const (
	lpColFirstName    = "InventorFirstName"
	lpColLastName     = "InventorLastName"
	lpColTitle        = "InventionTitle"
	lpColLensID       = "LensID"
	lpColJurisdiction = "Jurisdiction"
)

// LensPatentAdapter queries the Lens.org patents index.
type LensPatentAdapter struct {
	Client *http.Client
	APIKey string
}

// Label returns the source display name.
func (a *LensPatentAdapter) Label() string { return "LensPatent" }

// Descriptor names the identity and title columns for aggregation.
func (a *LensPatentAdapter) Descriptor() types.SourceDescriptor {
	return types.SourceDescriptor{
		Label:            a.Label(),
		GivenNameColumn:  lpColFirstName,
		FamilyNameColumn: lpColLastName,
		TitleColumn:      lpColTitle,
	}
}

// Fetch posts a boolean query to the patent search API and flattens each
// patent into one row per inventor. Lens stores inventor names as single
// extracted strings, so names are split the same way ClinicalTrials
// official names are.
func (a *LensPatentAdapter) Fetch(ctx context.Context, query Query, cfg types.SearchConfig) (types.ResultSet, error) {
	body, err := buildLensPatentBody(query, cfg)
	if err != nil {
		return types.ResultSet{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lensPatentBase, bytes.NewReader(body))
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
		return types.ResultSet{}, fmt.Errorf("Lens patent API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.ResultSet{}, fmt.Errorf("Lens patent API returned HTTP %d", resp.StatusCode)
	}

	var lpr lensPatentResponse
	if err := json.NewDecoder(resp.Body).Decode(&lpr); err != nil {
		return types.ResultSet{}, fmt.Errorf("parsing Lens patent response: %w", err)
	}

	set := types.ResultSet{
		Columns: []string{
			lpColFirstName, lpColLastName, lpColTitle,
			lpColLensID, lpColJurisdiction,
		},
	}

	for _, patent := range lpr.Data {
		title := firstTitleText(patent.Biblio.InventionTitle)
		inventors := patent.Biblio.Parties.Inventors

		if len(inventors) == 0 {
			set.Rows = append(set.Rows, types.Row{
				lpColTitle:        title,
				lpColLensID:       patent.LensID,
				lpColJurisdiction: patent.Jurisdiction,
			})
			continue
		}
		for _, inv := range inventors {
			row := types.Row{
				lpColTitle:        title,
				lpColLensID:       patent.LensID,
				lpColJurisdiction: patent.Jurisdiction,
			}
			given, family := splitFullName(inv.ExtractedName.Value)
			if given != "" {
				row[lpColFirstName] = given
			}
			if family != "" {
				row[lpColLastName] = family
			}
			set.Rows = append(set.Rows, row)
		}
	}

	return set, nil
}

// buildLensPatentBody constructs the boolean must-clause request body.
// Institution and sponsor both map to the applicant name; city and state
// have no patent equivalent and are ignored.
func buildLensPatentBody(q Query, cfg types.SearchConfig) ([]byte, error) {
	var must []map[string]any

	if q.Author != "" {
		must = append(must, matchPhrase("biblio.parties.inventors.extracted_name.value", q.Author))
	}
	if q.Institution != "" {
		must = append(must, matchPhrase("biblio.parties.applicants.extracted_name.value", q.Institution))
	}
	if q.Sponsor != "" {
		must = append(must, matchPhrase("biblio.parties.applicants.extracted_name.value", q.Sponsor))
	}
	if q.Keyword != "" {
		must = append(must, matchPhrase("biblio.invention_title.text", q.Keyword))
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
		"include": []string{"lens_id", "jurisdiction", "biblio.invention_title", "biblio.parties.inventors"},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling Lens patent query: %w", err)
	}
	return data, nil
}

// firstTitleText picks the first invention title variant. Lens returns
// one entry per language; the first is the filing language.
func firstTitleText(titles []lensPatentTitle) string {
	if len(titles) == 0 {
		return ""
	}
	return titles[0].Text
}

// Lens patent API JSON structures.
type lensPatentResponse struct {
	Total int             `json:"total"`
	Data  []lensPatentDoc `json:"data"`
}

type lensPatentDoc struct {
	LensID       string           `json:"lens_id"`
	Jurisdiction string           `json:"jurisdiction"`
	Biblio       lensPatentBiblio `json:"biblio"`
}

type lensPatentBiblio struct {
	InventionTitle []lensPatentTitle `json:"invention_title"`
	Parties        lensPatentParties `json:"parties"`
}

type lensPatentTitle struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type lensPatentParties struct {
	Inventors []lensPatentInventor `json:"inventors"`
}

type lensPatentInventor struct {
	ExtractedName lensPatentName `json:"extracted_name"`
}

type lensPatentName struct {
	Value string `json:"value"`
}
