package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yukimemi/mjhnkn/internal/config"
	"github.com/yukimemi/mjhnkn/internal/daemonrun"
)

func newRootCommand(lookup config.LookupFunc) *cobra.Command {
	ctx := newCommandContext(lookup)

	rootCmd := &cobra.Command{
		Use:   "mjhnkn",
		Short: "Tail a file and append it to another file as UTF-8",
		Long: "mjhnkn follows an input file written in a legacy encoding, decodes new bytes\n" +
			"to UTF-8 and appends them to an output file. Progress is kept in a position\n" +
			"record so a restart continues where the last run stopped.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.resolveConfig(cmd)
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return daemonrun.Run(runCtx, cfg, daemonrun.Options{Version: version})
		},
	}

	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
