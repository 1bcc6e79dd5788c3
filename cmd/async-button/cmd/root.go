package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/async-button/internal/config"
	"github.com/oshokin/async-button/internal/logger"
	"github.com/oshokin/async-button/internal/service/client"
	"github.com/oshokin/async-button/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// noFollow makes press return once the server answers.
	noFollow bool

	// rootCmd groups the client commands.
	rootCmd = &cobra.Command{
		Use:   "async-button",
		Short: "Press and observe an async button.",
		Long: `Talks to an async-button-server.

press   triggers the button and follows the cycle until it settles
state   prints the current state
watch   prints every state and signal change
demo    runs a button locally against a simulated action`,
		SilenceUsage: true,
	}

	pressCmd = &cobra.Command{
		Use:   "press [server-address]",
		Short: "Press the button and wait until it settles.",
		Long: `Presses the button on behalf of the current user and host.

Presses are retried every second until the server answers. A press that
arrives while a cycle is running is ignored by the server; the command then
follows the running cycle instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.RunPress(ctx, clientOptions(args))
		},
	}

	stateCmd = &cobra.Command{
		Use:   "state [server-address]",
		Short: "Print the current button state.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.RunState(ctx, clientOptions(args))
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch [server-address]",
		Short: "Print every button change until interrupted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.RunWatch(ctx, clientOptions(args))
		},
	}
)

// clientOptions builds client options from the shared flags and an optional address argument.
func clientOptions(args []string) *client.Options {
	opts := &client.Options{
		ConfigPath: cfgPath,
		NoFollow:   noFollow,
	}

	if len(args) > 0 {
		opts.ServerAddress = args[0]
	}

	return opts
}

// Execute runs the async-button CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	logger.AttachCobraLevelFlag(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")

	pressCmd.Flags().BoolVar(&noFollow, "no-follow", false, "return as soon as the press is answered")

	rootCmd.AddCommand(pressCmd, stateCmd, watchCmd, newDemoCommand())
}
