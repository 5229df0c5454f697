package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// --- Lens scholarly ---

const sampleLensScholarJSON = `{
  "total": 2,
  "data": [
    {
      "lens_id": "001-001-001-001-001",
      "title": "Widget Dynamics in Clinical Settings",
      "year_published": 2023,
      "authors": [
        {
          "first_name": "Jane",
          "last_name": "Doe",
          "affiliations": [{"name": "State University"}]
        },
        {"first_name": "John", "last_name": "Smith"}
      ]
    },
    {
      "lens_id": "002-002-002-002-002",
      "title": "Anonymous Widget Survey",
      "year_published": 2021,
      "authors": []
    }
  ]
}`

func TestLensScholarFetch(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleLensScholarJSON)
	}))
	defer ts.Close()

	old := lensScholarBase
	lensScholarBase = ts.URL
	defer func() { lensScholarBase = old }()

	a := &LensScholarAdapter{Client: ts.Client(), APIKey: "test-key"}
	set, err := a.Fetch(context.Background(), Query{Author: "Jane Doe"}, testCfg())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", gotAuth)
	}
	if _, ok := gotBody["query"].(map[string]any)["bool"]; !ok {
		t.Errorf("request query = %v, want bool clause", gotBody["query"])
	}

	// Two authors on the first work plus one author-less row.
	if len(set.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(set.Rows))
	}

	r := set.Rows[0]
	if r[lsColFirstName] != "Jane" || r[lsColLastName] != "Doe" {
		t.Errorf("author = %q %q, want Jane Doe", r[lsColFirstName], r[lsColLastName])
	}
	if r[lsColTitle] != "Widget Dynamics in Clinical Settings" {
		t.Errorf("title = %q", r[lsColTitle])
	}
	if r[lsColAffiliation] != "State University" {
		t.Errorf("affiliation = %q", r[lsColAffiliation])
	}
	if r[lsColYear] != "2023" {
		t.Errorf("year = %q", r[lsColYear])
	}

	// Co-author row shares the work-level fields.
	if set.Rows[1][lsColLensID] != "001-001-001-001-001" {
		t.Errorf("co-author lens ID = %q", set.Rows[1][lsColLensID])
	}

	last := set.Rows[2]
	if last[lsColTitle] != "Anonymous Widget Survey" {
		t.Errorf("author-less row title = %q", last[lsColTitle])
	}
	if _, ok := last[lsColFirstName]; ok {
		t.Error("author-less row should have no first name column")
	}
}

func TestLensScholarFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer ts.Close()

	old := lensScholarBase
	lensScholarBase = ts.URL
	defer func() { lensScholarBase = old }()

	a := &LensScholarAdapter{Client: ts.Client()}
	_, err := a.Fetch(context.Background(), Query{Author: "Jane Doe"}, testCfg())
	if err == nil || !strings.Contains(err.Error(), "HTTP 403") {
		t.Errorf("expected HTTP 403 error, got: %v", err)
	}
}

func TestBuildLensScholarBody(t *testing.T) {
	data, err := buildLensScholarBody(Query{Author: "Jane Doe", Institution: "State University"}, testCfg())
	if err != nil {
		t.Fatalf("buildLensScholarBody: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "match_phrase") {
		t.Errorf("body = %s, want match_phrase clauses", s)
	}
	if !strings.Contains(s, "author.display_name") || !strings.Contains(s, "author.affiliation.name") {
		t.Errorf("body = %s, want author and affiliation fields", s)
	}
	if !strings.Contains(s, `"size":20`) {
		t.Errorf("body = %s, want size from config", s)
	}
}

func TestBuildLensScholarBodyNoFilters(t *testing.T) {
	data, err := buildLensScholarBody(Query{Sponsor: "ignored"}, testCfg())
	if err != nil {
		t.Fatalf("buildLensScholarBody: %v", err)
	}
	if !strings.Contains(string(data), "match_all") {
		t.Errorf("body = %s, want match_all when no scholarly filters apply", data)
	}
}

// --- Lens patents ---

const sampleLensPatentJSON = `{
  "total": 1,
  "data": [
    {
      "lens_id": "100-100-100-100-100",
      "jurisdiction": "US",
      "biblio": {
        "invention_title": [
          {"text": "Improved Widget Apparatus", "lang": "en"}
        ],
        "parties": {
          "inventors": [
            {"extracted_name": {"value": "Jane Doe"}},
            {"extracted_name": {"value": "John Q Smith"}}
          ]
        }
      }
    }
  ]
}`

func TestLensPatentFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleLensPatentJSON)
	}))
	defer ts.Close()

	old := lensPatentBase
	lensPatentBase = ts.URL
	defer func() { lensPatentBase = old }()

	a := &LensPatentAdapter{Client: ts.Client(), APIKey: "test-key"}
	set, err := a.Fetch(context.Background(), Query{Author: "Jane Doe"}, testCfg())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(set.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want one row per inventor", len(set.Rows))
	}

	r := set.Rows[0]
	if r[lpColFirstName] != "Jane" || r[lpColLastName] != "Doe" {
		t.Errorf("inventor = %q %q, want Jane Doe", r[lpColFirstName], r[lpColLastName])
	}
	if r[lpColTitle] != "Improved Widget Apparatus" {
		t.Errorf("title = %q", r[lpColTitle])
	}
	if r[lpColJurisdiction] != "US" {
		t.Errorf("jurisdiction = %q", r[lpColJurisdiction])
	}

	second := set.Rows[1]
	if second[lpColFirstName] != "John Q" || second[lpColLastName] != "Smith" {
		t.Errorf("second inventor = %q %q, want John Q Smith", second[lpColFirstName], second[lpColLastName])
	}
}

func TestBuildLensPatentBody(t *testing.T) {
	data, err := buildLensPatentBody(Query{Author: "Jane Doe", Sponsor: "Widget Foundation"}, testCfg())
	if err != nil {
		t.Fatalf("buildLensPatentBody: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "biblio.parties.inventors.extracted_name.value") {
		t.Errorf("body = %s, want inventor name field", s)
	}
	// Sponsor maps onto the applicant name field.
	if !strings.Contains(s, "biblio.parties.applicants.extracted_name.value") {
		t.Errorf("body = %s, want applicant name field for sponsor", s)
	}
}
