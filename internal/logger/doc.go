// Package logger wraps zap for the async-button binaries.
//
// It keeps one global sugared logger with a console encoder, parses textual
// levels for the --log-level flag, and carries scoped loggers through
// context.Context (ToContext/FromContext/WithName/WithKV). Services pull the
// logger out of the context they receive, so names and fields attached at the
// entry point follow every log line below it.
package logger
