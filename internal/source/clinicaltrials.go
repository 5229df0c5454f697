// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/pubscope/pkg/types"
)

// clinicalTrialsBase is the ClinicalTrials.gov study_fields endpoint.
// Declared as a var so tests can substitute an httptest server.
var clinicalTrialsBase = "https://clinicaltrials.gov/api/query/study_fields"

// clinicalTrialsFields lists the study fields requested from the API.
var clinicalTrialsFields = []string{
	"NCTId",
	"BriefTitle",
	"LeadSponsorName",
	"OverallOfficialName",
	"OverallOfficialAffiliation",
	"OverallOfficialRole",
	"LocationCity",
	"LocationState",
	"Keyword",
}

// Column names emitted by the ClinicalTrials adapter. Official full names
// are split so the aggregation stage can key rows uniformly.
const (
	ctColFirstName   = "OfficialFirstName"
	ctColLastName    = "OfficialLastName"
	ctColTitle       = "BriefTitle"
	ctColNCTID       = "NCTId"
	ctColSponsor     = "LeadSponsorName"
	ctColAffiliation = "OverallOfficialAffiliation"
	ctColRole        = "OverallOfficialRole"
	ctColCity        = "LocationCity"
	ctColState       = "LocationState"
	ctColKeyword     = "Keyword"
)

// ClinicalTrialsAdapter queries the ClinicalTrials.gov registry.
type ClinicalTrialsAdapter struct {
	Client *http.Client
}

// Label returns the source display name.
func (a *ClinicalTrialsAdapter) Label() string { return "ClinicalTrials" }

// Descriptor names the identity and title columns for aggregation.
func (a *ClinicalTrialsAdapter) Descriptor() types.SourceDescriptor {
	return types.SourceDescriptor{
		Label:            a.Label(),
		GivenNameColumn:  ctColFirstName,
		FamilyNameColumn: ctColLastName,
		TitleColumn:      ctColTitle,
	}
}

// Fetch queries the study_fields API and flattens each study into one row
// per overall official. Studies without officials still produce a single
// row so the spreadsheet export keeps them; the aggregation stage skips
// rows without name columns.
func (a *ClinicalTrialsAdapter) Fetch(ctx context.Context, query Query, cfg types.SearchConfig) (types.ResultSet, error) {
	expr := buildClinicalTrialsExpr(query)
	if expr == "" {
		return types.ResultSet{}, fmt.Errorf("empty ClinicalTrials query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 200
	}
	if maxResults > 1000 {
		maxResults = 1000
	}

	params := url.Values{
		"expr":    {expr},
		"fields":  {strings.Join(clinicalTrialsFields, ",")},
		"min_rnk": {"1"},
		"max_rnk": {fmt.Sprintf("%d", maxResults)},
		"fmt":     {"json"},
	}

	reqURL := clinicalTrialsBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("ClinicalTrials API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.ResultSet{}, fmt.Errorf("ClinicalTrials API returned HTTP %d", resp.StatusCode)
	}

	var ctr clinicalTrialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ctr); err != nil {
		return types.ResultSet{}, fmt.Errorf("parsing ClinicalTrials response: %w", err)
	}

	set := types.ResultSet{
		Columns: []string{
			ctColFirstName, ctColLastName, ctColTitle, ctColNCTID,
			ctColSponsor, ctColAffiliation, ctColRole,
			ctColCity, ctColState, ctColKeyword,
		},
	}

	for _, study := range ctr.StudyFieldsResponse.StudyFields {
		base := types.Row{
			ctColTitle:   first(study.BriefTitle),
			ctColNCTID:   first(study.NCTID),
			ctColSponsor: first(study.LeadSponsorName),
			ctColCity:    first(study.LocationCity),
			ctColState:   first(study.LocationState),
			ctColKeyword: strings.Join(study.Keyword, ", "),
		}

		if len(study.OverallOfficialName) == 0 {
			set.Rows = append(set.Rows, base)
			continue
		}

		// One row per overall official. Affiliation and role lists run
		// parallel to the name list when the registry populates them.
		for i, name := range study.OverallOfficialName {
			row := types.Row{}
			for k, v := range base {
				row[k] = v
			}
			given, family := splitFullName(name)
			if given != "" {
				row[ctColFirstName] = given
			}
			if family != "" {
				row[ctColLastName] = family
			}
			if i < len(study.OverallOfficialAffiliation) {
				row[ctColAffiliation] = study.OverallOfficialAffiliation[i]
			}
			if i < len(study.OverallOfficialRole) {
				row[ctColRole] = study.OverallOfficialRole[i]
			}
			set.Rows = append(set.Rows, row)
		}
	}

	return set, nil
}

// buildClinicalTrialsExpr joins the populated filters into a quoted AND
// expression, the form the classic study_fields API expects.
func buildClinicalTrialsExpr(q Query) string {
	var phrases []string
	for _, v := range []string{q.Author, q.Institution, q.Sponsor, q.City, q.State, q.Keyword} {
		v = strings.TrimSpace(v)
		if v != "" {
			phrases = append(phrases, fmt.Sprintf("%q", v))
		}
	}
	return strings.Join(phrases, " AND ")
}

// first returns the first element of a study field list, or "" when the
// registry left it unpopulated.
func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// ClinicalTrials.gov API JSON structures. Every study field is a list of
// strings, including single-valued ones.
type clinicalTrialsResponse struct {
	StudyFieldsResponse clinicalTrialsStudyFieldsResponse `json:"StudyFieldsResponse"`
}

type clinicalTrialsStudyFieldsResponse struct {
	NStudiesFound int                   `json:"NStudiesFound"`
	StudyFields   []clinicalTrialsStudy `json:"StudyFields"`
}

type clinicalTrialsStudy struct {
	Rank                       int      `json:"Rank"`
	NCTID                      []string `json:"NCTId"`
	BriefTitle                 []string `json:"BriefTitle"`
	LeadSponsorName            []string `json:"LeadSponsorName"`
	OverallOfficialName        []string `json:"OverallOfficialName"`
	OverallOfficialAffiliation []string `json:"OverallOfficialAffiliation"`
	OverallOfficialRole        []string `json:"OverallOfficialRole"`
	LocationCity               []string `json:"LocationCity"`
	LocationState              []string `json:"LocationState"`
	Keyword                    []string `json:"Keyword"`
}
