// Package version exposes build metadata injected through ldflags and a
// cobra subcommand printing it.
package version
