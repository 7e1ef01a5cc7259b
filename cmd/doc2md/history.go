// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/doc2md/internal/history"
	"github.com/pdiddy/doc2md/internal/sizing"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the conversion history database",
	Long: `History reads the SQLite database written by convert or serve when
--history-db is set. The database is an audit log only; it never decides
which documents convert.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No conversions recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-19s  %-32s  %-10s  %10s  %10s  %s\n",
		"When", "Document", "Engine", "Original", "Converted", "Reduction")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, e := range entries {
		name := e.Name
		if len(name) > 32 {
			name = name[:29] + "..."
		}
		reduction, _ := sizing.Reduction(e.OriginalSize, e.ConvertedSize)
		fmt.Fprintf(os.Stdout, "%-19s  %-32s  %-10s  %10s  %10s  %s\n",
			e.ConvertedAt.Local().Format("2006-01-02 15:04:05"),
			name, e.Engine,
			sizing.FormatSize(e.OriginalSize),
			sizing.FormatSize(e.ConvertedSize),
			reduction)
	}
	fmt.Fprintf(os.Stdout, "\n%d conversion(s)\n", len(entries))
	return nil
}

// --- summary subcommand ---

var historySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize recorded conversions and size savings",
	RunE:  runHistorySummary,
}

func runHistorySummary(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Summarize(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	reduction, _ := sizing.Reduction(sum.OriginalBytes, sum.ConvertedBytes)
	fmt.Printf("Conversions: %d\n", sum.Conversions)
	fmt.Printf("Original:    %s\n", sizing.FormatSize(sum.OriginalBytes))
	fmt.Printf("Converted:   %s\n", sizing.FormatSize(sum.ConvertedBytes))
	fmt.Printf("Reduction:   %s\n", reduction)
	return nil
}

// --- shared helpers ---

// openHistory opens the configured history database, refusing to create one
// as a side effect of reading.
func openHistory(cmd *cobra.Command) (*history.Store, error) {
	path := settingString(cmd, "history-db")
	if path == "" {
		return nil, fmt.Errorf("no history database: pass --history-db matching your convert or serve runs")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no history database at %s", path)
	}
	return history.NewStore(path)
}

func init() {
	historyCmd.PersistentFlags().String("history-db", "", "path of the conversion history database")

	historyListCmd.Flags().Int("limit", 20, "maximum entries to show")
	historyListCmd.Flags().Bool("json", false, "output entries as JSON")

	historySummaryCmd.Flags().Bool("json", false, "output the summary as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySummaryCmd)

	rootCmd.AddCommand(historyCmd)
}
