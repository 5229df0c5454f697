// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/pubscope/pkg/types"
)

// nihReporterBase is the NIH RePORTER v2 project search endpoint.
// Declared as a var so tests can substitute an httptest server.
var nihReporterBase = "https://api.reporter.nih.gov/v2/projects/search"

// Column names emitted by the NIH RePORTER adapter.
const (
	nihColFirstName    = "PIFirstName"
	nihColLastName     = "PILastName"
	nihColTitle        = "ProjectTitle"
	nihColProjectNum   = "ProjectNumber"
	nihColOrganization = "Organization"
	nihColCity         = "OrgCity"
	nihColState        = "OrgState"
	nihColFiscalYear   = "FiscalYear"
)

// NIHReporterAdapter queries the NIH RePORTER biomedical funding index.
type NIHReporterAdapter struct {
	Client *http.Client
}

// Label returns the source display name.
func (a *NIHReporterAdapter) Label() string { return "NIHReporter" }

// Descriptor names the identity and title columns for aggregation.
func (a *NIHReporterAdapter) Descriptor() types.SourceDescriptor {
	return types.SourceDescriptor{
		Label:            a.Label(),
		GivenNameColumn:  nihColFirstName,
		FamilyNameColumn: nihColLastName,
		TitleColumn:      nihColTitle,
	}
}

// Fetch posts a criteria search to RePORTER and flattens each project
// into one row per principal investigator.
func (a *NIHReporterAdapter) Fetch(ctx context.Context, query Query, cfg types.SearchConfig) (types.ResultSet, error) {
	body, err := buildNIHReporterBody(query, cfg)
	if err != nil {
		return types.ResultSet{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, nihReporterBase, bytes.NewReader(body))
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("NIH RePORTER API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.ResultSet{}, fmt.Errorf("NIH RePORTER API returned HTTP %d", resp.StatusCode)
	}

	var nrr nihReporterResponse
	if err := json.NewDecoder(resp.Body).Decode(&nrr); err != nil {
		return types.ResultSet{}, fmt.Errorf("parsing NIH RePORTER response: %w", err)
	}

	set := types.ResultSet{
		Columns: []string{
			nihColFirstName, nihColLastName, nihColTitle, nihColProjectNum,
			nihColOrganization, nihColCity, nihColState, nihColFiscalYear,
		},
	}

	for _, project := range nrr.Results {
		base := types.Row{
			nihColTitle:        project.ProjectTitle,
			nihColProjectNum:   project.ProjectNum,
			nihColOrganization: project.Organization.OrgName,
			nihColCity:         project.Organization.OrgCity,
			nihColState:        project.Organization.OrgState,
		}
		if project.FiscalYear > 0 {
			base[nihColFiscalYear] = fmt.Sprintf("%d", project.FiscalYear)
		}

		if len(project.PrincipalInvestigators) == 0 {
			set.Rows = append(set.Rows, base)
			continue
		}
		for _, pi := range project.PrincipalInvestigators {
			row := types.Row{}
			for k, v := range base {
				row[k] = v
			}
			if pi.FirstName != "" {
				row[nihColFirstName] = pi.FirstName
			}
			if pi.LastName != "" {
				row[nihColLastName] = pi.LastName
			}
			set.Rows = append(set.Rows, row)
		}
	}

	return set, nil
}

// buildNIHReporterBody constructs the criteria request body. Sponsor has
// no RePORTER equivalent and is ignored; an empty query produces empty
// criteria, which RePORTER treats as an unfiltered recent-projects list.
func buildNIHReporterBody(q Query, cfg types.SearchConfig) ([]byte, error) {
	criteria := map[string]any{}

	if q.Author != "" {
		criteria["pi_names"] = []map[string]string{{"any_name": q.Author}}
	}
	if q.Institution != "" {
		criteria["org_names"] = []string{q.Institution}
	}
	if q.City != "" {
		criteria["org_cities"] = []string{q.City}
	}
	if q.State != "" {
		criteria["org_states"] = []string{q.State}
	}
	if q.Keyword != "" {
		criteria["advanced_text_search"] = map[string]any{
			"operator":     "and",
			"search_field": "projecttitle,terms",
			"search_text":  q.Keyword,
		}
	}

	limit := cfg.MaxResults
	if limit <= 0 {
		limit = 200
	}
	if limit > 500 {
		limit = 500
	}

	body := map[string]any{
		"criteria": criteria,
		"limit":    limit,
		"include_fields": []string{
			"ProjectNum", "ProjectTitle", "PrincipalInvestigators",
			"Organization", "FiscalYear",
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling NIH RePORTER query: %w", err)
	}
	return data, nil
}

// NIH RePORTER API JSON structures.
type nihReporterResponse struct {
	Meta    nihReporterMeta     `json:"meta"`
	Results []nihReporterResult `json:"results"`
}

type nihReporterMeta struct {
	Total int `json:"total"`
}

type nihReporterResult struct {
	ProjectNum             string          `json:"project_num"`
	ProjectTitle           string          `json:"project_title"`
	FiscalYear             int             `json:"fiscal_year"`
	Organization           nihReporterOrg  `json:"organization"`
	PrincipalInvestigators []nihReporterPI `json:"principal_investigators"`
}

type nihReporterOrg struct {
	OrgName  string `json:"org_name"`
	OrgCity  string `json:"org_city"`
	OrgState string `json:"org_state"`
}

type nihReporterPI struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
