package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubscope/internal/sheet"
	"github.com/pdiddy/pubscope/internal/source"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the raw per-source result sets as an xlsx workbook",
	Long: `Export runs the same four-source query as search but skips aggregation:
each source's raw result set becomes one sheet in an xlsx workbook. A
source that fails contributes an empty sheet.`,
	RunE: runExport,
}

func init() {
	addQueryFlags(exportCmd)
	exportCmd.Flags().Int("max-results", defaultMaxResults, "maximum rows requested per source")
	exportCmd.Flags().String("out", "query_results.xlsx", "workbook output path")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	query := queryFromFlags(cmd)
	if query.IsEmpty() {
		return fmt.Errorf("query is empty: provide at least one filter (--author, --institution, --sponsor, --city, --state, or --keyword)")
	}

	cfg := searchConfigFromFlags(cmd)
	adapters := buildAdapters(cfg)

	out, err := source.FetchAll(context.Background(), query, adapters, cfg, os.Stderr)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if err := sheet.Write(outPath, out.Sets); err != nil {
		return err
	}

	total := 0
	for _, set := range out.Sets {
		total += len(set.Rows)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d rows across %d sheets to %s\n", total, len(out.Sets), outPath)
	return nil
}
