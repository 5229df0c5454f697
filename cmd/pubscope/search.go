// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubscope/internal/aggregate"
	"github.com/pdiddy/pubscope/internal/history"
	"github.com/pdiddy/pubscope/internal/report"
	"github.com/pdiddy/pubscope/internal/source"
	"github.com/pdiddy/pubscope/pkg/types"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "pubscope/0.1"
	defaultMaxResults = 200
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query all sources, cross-reference authors, and render a ranked report",
	Long: `Search queries ClinicalTrials.gov, the Lens scholarly and patent indexes,
and NIH RePORTER for the given filters, aggregates results by author,
ranks authors by total distinct work count, and renders a paginated
report. A source that fails contributes no rows but does not abort the
run.`,
	RunE: runSearch,
}

func init() {
	addQueryFlags(searchCmd)
	searchCmd.Flags().Int("max-results", defaultMaxResults, "maximum rows requested per source")
	searchCmd.Flags().String("out", "", "write the Markdown report to this path (default: stdout)")
	searchCmd.Flags().Bool("json", false, "output the report as JSON")
	searchCmd.Flags().Bool("csl", false, "output the ranked works as CSL-YAML")
	searchCmd.Flags().String("save", "", "save the raw run (query + result sets) to this YAML file")
	searchCmd.Flags().String("from-run", "", "re-aggregate a saved run file instead of querying the sources")
	searchCmd.Flags().Bool("no-record", false, "do not record this run in the history database")
	searchCmd.Flags().String("history-dir", "history", "base directory for the history database")

	rootCmd.AddCommand(searchCmd)
}

// addQueryFlags registers the shared source filter flags, used by both
// search and export.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("author", "", "filter by author, official, or inventor name")
	cmd.Flags().String("institution", "", "filter by institution or applicant name")
	cmd.Flags().String("sponsor", "", "filter by trial sponsor name")
	cmd.Flags().String("city", "", "filter by organization city")
	cmd.Flags().String("state", "", "filter by organization state")
	cmd.Flags().String("keyword", "", "filter by title keyword")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	cmd.Flags().String("lens-api-key", "", "Lens.org API key (default: .secrets/lens-api-key)")
}

// queryFromFlags builds the source query from the shared filter flags.
func queryFromFlags(cmd *cobra.Command) source.Query {
	author, _ := cmd.Flags().GetString("author")
	institution, _ := cmd.Flags().GetString("institution")
	sponsor, _ := cmd.Flags().GetString("sponsor")
	city, _ := cmd.Flags().GetString("city")
	state, _ := cmd.Flags().GetString("state")
	keyword, _ := cmd.Flags().GetString("keyword")
	return source.Query{
		Author:      author,
		Institution: institution,
		Sponsor:     sponsor,
		City:        city,
		State:       state,
		Keyword:     keyword,
	}
}

// searchConfigFromFlags assembles the search configuration from flags,
// config file, and secrets.
func searchConfigFromFlags(cmd *cobra.Command) types.SearchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	lensKey, _ := cmd.Flags().GetString("lens-api-key")
	if lensKey == "" {
		lensKey = viper.GetString("search.lens_api_key")
	}

	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		MaxResults:           maxResults,
		EnableClinicalTrials: true,
		EnableLensScholar:    true,
		EnableLensPatent:     true,
		EnableNIHReporter:    true,
		LensAPIKey:           secretDefault("lens-api-key", lensKey),
	}
}

// buildAdapters constructs the enabled source adapters.
func buildAdapters(cfg types.SearchConfig) []source.Adapter {
	client := &http.Client{Timeout: cfg.Timeout}

	var adapters []source.Adapter
	if cfg.EnableClinicalTrials {
		adapters = append(adapters, &source.ClinicalTrialsAdapter{Client: client})
	}
	if cfg.EnableLensScholar {
		adapters = append(adapters, &source.LensScholarAdapter{Client: client, APIKey: cfg.LensAPIKey})
	}
	if cfg.EnableLensPatent {
		adapters = append(adapters, &source.LensPatentAdapter{Client: client, APIKey: cfg.LensAPIKey})
	}
	if cfg.EnableNIHReporter {
		adapters = append(adapters, &source.NIHReporterAdapter{Client: client})
	}
	return adapters
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := searchConfigFromFlags(cmd)
	adapters := buildAdapters(cfg)

	var (
		query source.Query
		out   source.FetchOutput
	)

	if runPath, _ := cmd.Flags().GetString("from-run"); runPath != "" {
		// Re-aggregate a saved run without touching the source APIs.
		rf, err := source.ReadRunFile(runPath)
		if err != nil {
			return err
		}
		query = rf.Query.ToQuery()
		out = source.FetchOutput{
			Sets:        rf.Sets,
			Descriptors: make(map[string]types.SourceDescriptor, len(adapters)),
			Failures:    rf.Summary.Failures,
		}
		for _, a := range adapters {
			out.Descriptors[a.Label()] = a.Descriptor()
		}
	} else {
		query = queryFromFlags(cmd)
		if query.IsEmpty() {
			return fmt.Errorf("query is empty: provide at least one filter (--author, --institution, --sponsor, --city, --state, or --keyword)")
		}

		var err error
		out, err = source.FetchAll(context.Background(), query, adapters, cfg, os.Stderr)
		if err != nil {
			return err
		}

		if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
			if err := source.WriteRunFile(savePath, query, out); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved run to %s\n", savePath)
		}
	}

	record := aggregate.Aggregate(out.Sets, out.Descriptors)
	entries := aggregate.Rank(record)
	doc := report.Build(entries)

	if noRecord, _ := cmd.Flags().GetBool("no-record"); !noRecord {
		if err := recordRun(cmd, query, out, entries); err != nil {
			fmt.Fprintf(os.Stderr, "warning: history record failed: %v\n", err)
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return report.FormatJSON(doc, os.Stdout)
	}
	if asCSL, _ := cmd.Flags().GetBool("csl"); asCSL {
		return report.FormatCSL(doc, os.Stdout)
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		if err := report.Write(doc, outPath); err != nil {
			return err
		}
		report.FormatSummary(doc, os.Stdout)
		fmt.Fprintf(os.Stderr, "Wrote report to %s\n", outPath)
		return nil
	}

	return report.WriteMarkdown(doc, os.Stdout)
}

// recordRun stores the run and its ranked authors in the history database.
func recordRun(cmd *cobra.Command, query source.Query, out source.FetchOutput, entries []aggregate.RankedEntry) error {
	historyDir, _ := cmd.Flags().GetString("history-dir")
	store, err := history.NewStore(types.HistoryConfig{HistoryDir: historyDir})
	if err != nil {
		return err
	}
	defer store.Close()

	counts := make(map[string]int, len(out.Sets))
	for label, set := range out.Sets {
		counts[label] = len(set.Rows)
	}

	_, err = store.RecordRun(context.Background(), history.Run{
		Author:      query.Author,
		Institution: query.Institution,
		Sponsor:     query.Sponsor,
		City:        query.City,
		State:       query.State,
		Keyword:     query.Keyword,
		RowCounts:   counts,
		Failures:    out.Failures,
	}, entries)
	return err
}
