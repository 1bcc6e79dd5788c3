package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/async-button/internal/config"
	"github.com/oshokin/async-button/internal/logger"
	"github.com/oshokin/async-button/internal/service/server"
	"github.com/oshokin/async-button/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile overrides where the fetch state is persisted.
	stateFile string
	// metricsAddress overrides the Prometheus listen address.
	metricsAddress string
	// contentURL overrides the content server root.
	contentURL string

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "async-button-server [listen-address]",
		Short: "Run the async button gRPC server.",
		Long: `Starts the gRPC server hosting one async button.

Every accepted press fetches a response code from the content server. The
busy indicator appears only when the fetch outlasts the grace period, and
the button settles once completions stop for the debounce period.

Only the port from server_addr is used for listening (e.g., :50051).
A listen address argument overrides it (e.g., :9090, 0.0.0.0:50051).
The fetch state is persisted to a YAML file for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:     configPath,
				ListenAddress:  listenAddress,
				StateFile:      stateFile,
				MetricsAddress: metricsAddress,
				ContentURL:     contentURL,
			})
		},
	}
)

// Execute runs the async-button-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	logger.AttachCobraLevelFlag(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "path to persist the fetch state")
	rootCmd.Flags().StringVarP(&metricsAddress, "metrics-addr", "m", "", "serve Prometheus metrics on this address")
	rootCmd.Flags().StringVar(&contentURL, "content-url", "", "root URL of the content server")
}
