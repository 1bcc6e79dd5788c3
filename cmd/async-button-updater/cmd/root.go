package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/async-button/internal/config"
	"github.com/oshokin/async-button/internal/logger"
	"github.com/oshokin/async-button/internal/service/updater"
	"github.com/oshokin/async-button/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// dir is the installation folder.
	dir string
	// output is where the manifest command writes.
	output string

	// rootCmd represents the base command for downloading and applying updates.
	rootCmd = &cobra.Command{
		Use:   "async-button-updater",
		Short: "Download and apply updates from the update folder.",
		Long: `Fetches the release manifest from update_folder, downloads every file
whose checksum differs from the installed copy, stops the binaries being
replaced and swaps the files in place.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return updater.Run(ctx, &updater.Options{
				ConfigPath: configPath,
				Dir:        dir,
			})
		},
	}

	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Write the release manifest for the files in the installation folder.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return updater.RunManifest(cmd.Context(), &updater.Options{
				Dir:    dir,
				Output: output,
			})
		},
	}
)

// Execute runs the async-button-updater CLI and exits with non-zero status on error.
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
	rootCmd.PersistentFlags().StringVarP(&dir, "dir", "d", ".", "installation folder")

	manifestCmd.Flags().StringVarP(&output, "output", "o", "", "manifest path (default: <dir>/"+
		updater.ManifestFilename+")")

	rootCmd.AddCommand(manifestCmd)
}
