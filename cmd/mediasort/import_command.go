package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"mediasort/internal/config"
	"mediasort/internal/daemon"
	"mediasort/internal/history"
	"mediasort/internal/logging"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Organize every file in a folder tree once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if abs, absErr := filepath.Abs(dir); absErr == nil {
				dir = abs
			}

			if client := ctx.tryClient(); client != nil {
				defer client.Close()
				resp, err := client.Import(dir)
				if err != nil {
					return err
				}
				printImportResult(cmd.OutOrStdout(), resp.ImportResult)
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := importInProcess(cmd, cfg, dir)
			printImportResult(cmd.OutOrStdout(), result)
			return err
		},
	}
}

func importInProcess(cmd *cobra.Command, cfg *config.Config, dir string) (daemon.ImportResult, error) {
	logger, err := logging.NewFromConfig(cfg, nil)
	if err != nil {
		return daemon.ImportResult{}, fmt.Errorf("init logger: %w", err)
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return daemon.ImportResult{}, err
	}
	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		store.Close()
		return daemon.ImportResult{}, err
	}
	defer d.Close()
	return d.Import(cmd.Context(), dir)
}

func printImportResult(w io.Writer, result daemon.ImportResult) {
	if result.Dir == "" {
		return
	}
	fmt.Fprintf(w, "Moved %d files\n", result.Moved)
	if result.Failed > 0 {
		fmt.Fprintf(w, "%d of %d files could not be placed; see the log for details\n", result.Failed, result.Scanned)
	}
}
