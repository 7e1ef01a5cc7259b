package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/doc2md/internal/history"
	"github.com/pdiddy/doc2md/internal/server"
	"github.com/pdiddy/doc2md/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion pipeline over HTTP",
	Long: `Serve starts an HTTP server with an upload page, a batch conversion
endpoint, session results and downloads, and the /engine/convert endpoint
that lets this instance act as another doc2md's remote engine.

The server keeps one conversion session for its lifetime: each document
name converts once until restart.`,
	RunE: runServe,
}

func init() {
	conversionFlags(serveCmd)
	serveCmd.Flags().String("addr", server.DefaultAddr, "listen address")
	serveCmd.Flags().Int64("max-upload", 64, "maximum request size in MiB")
	serveCmd.Flags().String("history-db", "", "record conversions in this SQLite database")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, engCfg, err := buildEngine(cmd)
	if err != nil {
		return err
	}

	cfg := types.ServeConfig{
		EngineConfig:   engCfg,
		Addr:           settingString(cmd, "addr"),
		MaxUploadBytes: settingInt64(cmd, "max-upload") << 20,
		Parallel:       settingInt(cmd, "parallel"),
		HistoryPath:    settingString(cmd, "history-db"),
	}

	var hist *history.Store
	if cfg.HistoryPath != "" {
		hist, err = history.NewStore(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer hist.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, eng, hist).Run(ctx)
}
