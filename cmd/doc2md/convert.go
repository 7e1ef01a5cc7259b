package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/doc2md/internal/history"
	"github.com/pdiddy/doc2md/internal/pipeline"
	"github.com/pdiddy/doc2md/internal/session"
	"github.com/pdiddy/doc2md/internal/sizing"
	"github.com/pdiddy/doc2md/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert documents to Markdown",
	Long: `Convert runs each file through the conversion engine and prints a
per-file status line, a batch summary, and a size table for the successes.
Names repeated in one invocation convert once; failed documents are
reported and can simply be resubmitted.

Known formats: ` + strings.Join(types.KnownExtensions, " ") + `. Other
extensions are handed to the engine untouched.`,
	RunE: runConvert,
}

func init() {
	conversionFlags(convertCmd)
	convertCmd.Flags().StringP("out", "o", "", "directory for converted .md and .txt files")
	convertCmd.Flags().String("history-db", "", "record conversions in this SQLite database")
	convertCmd.Flags().String("report", "", "write the size report to this YAML file")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more documents to convert")
	}

	eng, engCfg, err := buildEngine(cmd)
	if err != nil {
		return err
	}

	cfg := types.ConvertConfig{
		EngineConfig: engCfg,
		OutputDir:    settingString(cmd, "out"),
		Parallel:     settingInt(cmd, "parallel"),
		ReportPath:   settingString(cmd, "report"),
		HistoryPath:  settingString(cmd, "history-db"),
	}

	var hist *history.Store
	if cfg.HistoryPath != "" {
		hist, err = history.NewStore(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer hist.Close()
	}

	ledger := session.NewLedger()
	runner := &pipeline.Runner{
		Engine:   eng,
		Ledger:   ledger,
		History:  hist,
		OutDir:   cfg.OutputDir,
		Parallel: cfg.Parallel,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, result, err := runner.ProcessPaths(ctx, args, os.Stdout)
	if err != nil {
		return err
	}

	if reports := sizing.ReportAll(ledger.List()); len(reports) > 0 {
		printSizeTable(os.Stdout, reports)
		if cfg.ReportPath != "" {
			if err := writeReport(cfg.ReportPath, reports); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", cfg.ReportPath)
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}

func printSizeTable(w io.Writer, reports []types.SizeReport) {
	fmt.Fprintf(w, "\n%-40s  %12s  %12s  %s\n", "Document", "Original", "Converted", "Reduction")
	fmt.Fprintln(w, strings.Repeat("-", 82))
	for _, r := range reports {
		name := r.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%-40s  %12s  %12s  %s\n", name, r.Original, r.Converted, r.Reduction)
	}
}

func writeReport(path string, reports []types.SizeReport) error {
	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
