package logger

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		" warn ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("verbose")
	require.False(t, ok)
}

// TestFromContext_FallsBackToGlobal checks that an empty context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithNameAndKV ensures scoped loggers travel through the context with their fields.
func TestWithNameAndKV(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)

	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "button")
	ctx = WithKV(ctx, "cycle", 7)

	InfoKV(ctx, "settled", "elapsed", "700ms")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "button", entries[0].LoggerName)
	require.Equal(t, "settled", entries[0].Message)

	fields := entries[0].ContextMap()
	require.EqualValues(t, 7, fields["cycle"])
	require.Equal(t, "700ms", fields["elapsed"])
}

// TestAttachCobraLevelFlag checks the flag is parsed and unknown levels fail the command.
func TestAttachCobraLevelFlag(t *testing.T) { //nolint:paralleltest // Mutates the global level.
	defer SetLevel(Level())

	ran := false
	root := &cobra.Command{
		Use: "test",
		RunE: func(*cobra.Command, []string) error {
			ran = true

			return nil
		},
	}
	AttachCobraLevelFlag(root)

	root.SetArgs([]string{"--log-level", "debug"})
	require.NoError(t, root.Execute())
	require.True(t, ran)
	require.Equal(t, zapcore.DebugLevel, Level())

	root.SetArgs([]string{"--log-level", "verbose"})
	require.ErrorIs(t, root.Execute(), errUnknownLevel)
}
