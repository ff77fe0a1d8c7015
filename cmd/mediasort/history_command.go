package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"mediasort/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent placements",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadHistory(cmd, ctx, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, entries)
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func loadHistory(cmd *cobra.Command, ctx *commandContext, limit int) ([]history.Entry, error) {
	if client := ctx.tryClient(); client != nil {
		defer client.Close()
		resp, err := client.History(limit)
		if err != nil {
			return nil, err
		}
		return resp.Entries, nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Recent(cmd.Context(), limit)
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No placements recorded")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		target := e.Destination
		if e.Status != history.StatusMoved {
			target = e.Error
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format(time.DateTime),
			string(e.Status),
			string(e.Category),
			filepath.Base(e.Source),
			valueOrDash(target),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"When", "Status", "Category", "File", "Destination"}, rows, nil))
}
