package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mediasort/internal/daemon"
	"mediasort/internal/logging"
	"mediasort/internal/media"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <filename>",
		Short: "Show how a filename would be classified and placed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			d, err := daemon.New(cfg, nil, logging.NewNop())
			if err != nil {
				return err
			}
			report := d.Parse(cmd.Context(), args[0])
			if asJSON {
				return writeJSON(cmd, report)
			}
			printParseReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printParseReport(w io.Writer, report daemon.ParseReport) {
	rows := [][]string{
		{"Original", report.Result.Original},
		{"Cleaned", report.Cleaned},
		{"TV pattern", yesNo(report.TVHint)},
		{"Kind", string(report.Result.Kind)},
	}
	switch r := report.Result; r.Kind {
	case media.KindTV:
		rows = append(rows,
			[]string{"Series", r.TV.Series},
			[]string{"Year", valueOrDash(r.TV.Year)},
			[]string{"Episode", fmt.Sprintf("S%sE%s", r.TV.Season, r.TV.Episode)},
			[]string{"Episode title", valueOrDash(r.TV.EpisodeTitle)},
		)
	case media.KindMovie:
		rows = append(rows,
			[]string{"Title", r.Movie.Title},
			[]string{"Year", valueOrDash(r.Movie.Year)},
		)
	case media.KindMusic:
		rows = append(rows,
			[]string{"Artist", r.Music.Artist},
			[]string{"Album", r.Music.Album},
			[]string{"Title", r.Music.Title},
			[]string{"Track", valueOrDash(r.Music.Track)},
		)
	}
	if report.Error != "" {
		rows = append(rows, []string{"Error", report.Error})
	} else {
		rows = append(rows, []string{"Destination", report.Destination})
	}
	fmt.Fprintln(w, renderTable([]string{"Field", "Value"}, rows, nil))
}
