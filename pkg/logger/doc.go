// Package logger builds the application's structured slog loggers.
//
// [New] constructs a logger from [Config] (output format and minimum
// level), optionally decorated with [ContextExtractor] functions that
// inject request-scoped attributes on every log call. [NewNope] returns a
// logger that discards everything, for tests and for components that were
// given no logger.
package logger
