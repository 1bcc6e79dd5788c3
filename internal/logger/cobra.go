package logger

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errUnknownLevel is returned for a --log-level value ParseLogLevel rejects.
var errUnknownLevel = errors.New("unknown log level")

// AttachCobraLevelFlag adds a persistent --log-level flag to root and applies
// it to the global logger before any command runs.
func AttachCobraLevelFlag(root *cobra.Command) {
	var levelName string

	root.PersistentFlags().StringVar(&levelName, "log-level", "info", "log level: debug, info, warn, error")

	previous := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, ok := ParseLogLevel(levelName)
		if !ok {
			return fmt.Errorf("%w: %q", errUnknownLevel, levelName)
		}

		SetLevel(level)

		if previous != nil {
			return previous(cmd, args)
		}

		return nil
	}
}
