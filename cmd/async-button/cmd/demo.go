package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/async-button/internal/config"
	domain "github.com/oshokin/async-button/internal/domain/button"
	"github.com/oshokin/async-button/internal/service/demo"
)

// newDemoCommand builds the demo subcommand.
func newDemoCommand() *cobra.Command {
	opts := &demo.Options{
		Button: domain.Config{Label: config.DefaultLabel},
	}

	command := &cobra.Command{
		Use:   "demo",
		Short: "Run a local button against a simulated action.",
		Long: `Presses a local button whose action takes --duration and then signals
completion --completions times, --gap apart. Every value of the loading,
content alpha and accessibility label signals is logged with its offset
from the press.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			_, err := demo.Run(ctx, opts)

			return err
		},
	}

	flags := command.Flags()
	flags.StringVar(&opts.Button.Label, "label", opts.Button.Label, "button title")
	flags.DurationVar(&opts.Button.GracePeriod, "grace", domain.DefaultGracePeriod, "delay before the busy indicator")
	flags.DurationVar(&opts.Button.DebouncePeriod, "debounce", domain.DefaultDebouncePeriod,
		"quiet window after the last completion")
	flags.DurationVar(&opts.Duration, "duration", 1500*time.Millisecond, "how long the simulated action runs")
	flags.IntVar(&opts.Completions, "completions", 1, "completion signals sent by the action")
	flags.DurationVar(&opts.CompletionGap, "gap", 100*time.Millisecond, "delay between completion signals")

	return command
}
