package main

import (
	"github.com/spf13/cobra"

	"mediasort/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var idle bool
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the mediasort daemon in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				ConfigPath: ctx.configPath,
				Idle:       idle,
			})
		},
	}
	cmd.Flags().BoolVar(&idle, "idle", false, "Serve control requests without starting monitoring")
	return cmd
}
