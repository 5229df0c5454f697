// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubscope/internal/history"
	"github.com/pdiddy/pubscope/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the local run history (list, find)",
	Long: `History manages the local SQLite database of past search runs. Use
subcommands to list recent runs or to find ranked authors across all
runs with full-text search.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent search runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(context.Background(), limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-4s  %-20s  %-40s  %-7s\n", "ID", "When", "Query", "Authors")
	fmt.Println(strings.Repeat("-", 78))
	for _, r := range runs {
		fmt.Printf("%-4d  %-20s  %-40s  %-7d\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04"), runQueryString(r), r.RankedAuthors)
	}
	return nil
}

// runQueryString condenses a run's filters into one display string.
func runQueryString(r history.RunSummary) string {
	var parts []string
	add := func(name, v string) {
		if v != "" {
			parts = append(parts, name+"="+v)
		}
	}
	add("author", r.Author)
	add("institution", r.Institution)
	add("sponsor", r.Sponsor)
	add("city", r.City)
	add("state", r.State)
	add("keyword", r.Keyword)
	s := strings.Join(parts, " ")
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}

// --- find subcommand ---

var historyFindCmd = &cobra.Command{
	Use:   "find [query]",
	Short: "Find ranked authors across all runs with full-text search",
	Long: `Find matches the query against author names and work titles recorded
in past runs, best match first.`,
	RunE: runHistoryFind,
}

func runHistoryFind(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := store.FindAuthors(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for _, hit := range hits {
		fmt.Printf("%s (%d works, run %d, %s)\n",
			hit.Author, hit.Total, hit.RunID, hit.Timestamp.Format("2006-01-02"))
		for label, titles := range hit.Works {
			fmt.Printf("  %s:\n", label)
			for _, title := range titles {
				fmt.Printf("    - %s\n", title)
			}
		}
	}
	return nil
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	historyDir, _ := cmd.Flags().GetString("history-dir")
	maxResults, _ := cmd.Flags().GetInt("limit")
	return history.NewStore(types.HistoryConfig{
		HistoryDir: historyDir,
		MaxResults: maxResults,
	})
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyFindCmd} {
		c.Flags().String("history-dir", "history", "base directory for the history database")
		c.Flags().Int("limit", 20, "maximum number of results")
		c.Flags().Bool("json", false, "output as JSON")
		historyCmd.AddCommand(c)
	}
	rootCmd.AddCommand(historyCmd)
}
