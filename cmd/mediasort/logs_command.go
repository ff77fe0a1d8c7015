package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediasort/internal/ipc"
	"mediasort/internal/logging"
	"mediasort/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log events",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.tryClient()
			if client == nil {
				return tailLogFile(cmd, ctx, limit, follow)
			}
			defer client.Close()
			return streamDaemonLogs(cmd, client, limit, follow)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of events to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new events")
	return cmd
}

func streamDaemonLogs(cmd *cobra.Command, client *ipc.Client, limit int, follow bool) error {
	out := cmd.OutOrStdout()
	resp, err := client.LogTail(ipc.LogTailRequest{Limit: limit})
	if err != nil {
		return err
	}
	printLogEvents(out, resp.Events)
	if !follow {
		return nil
	}
	next := resp.Next
	for cmd.Context().Err() == nil {
		resp, err := client.LogTail(ipc.LogTailRequest{Since: next, Limit: limit, Follow: true, WaitMillis: 1000})
		if err != nil {
			return err
		}
		printLogEvents(out, resp.Events)
		next = resp.Next
	}
	return nil
}

// tailLogFile reads the on-disk log when no daemon is answering.
func tailLogFile(cmd *cobra.Command, ctx *commandContext, limit int, follow bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
	out := cmd.OutOrStdout()
	chunk, err := logs.Last(path, limit)
	if err != nil {
		return err
	}
	if len(chunk.Lines) == 0 && !follow {
		fmt.Fprintf(out, "Daemon not running and %s is empty\n", path)
		return nil
	}
	for _, line := range chunk.Lines {
		fmt.Fprintln(out, line)
	}
	if !follow {
		return nil
	}
	return logs.Follow(cmd.Context(), path, chunk.Offset, func(lines []string) {
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
	})
}

func printLogEvents(w io.Writer, events []logging.LogEvent) {
	for _, evt := range events {
		fmt.Fprintln(w, formatLogEvent(evt))
	}
}

func formatLogEvent(evt logging.LogEvent) string {
	var b strings.Builder
	b.WriteString(evt.Timestamp.Local().Format(time.DateTime))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(evt.Level))
	if evt.Component != "" {
		b.WriteString(" " + evt.Component + ":")
	}
	b.WriteString(" " + evt.Message)
	if evt.File != "" {
		b.WriteString(" file=" + evt.File)
	}
	keys := make([]string, 0, len(evt.Fields))
	for k := range evt.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" " + k + "=" + evt.Fields[k])
	}
	return b.String()
}
