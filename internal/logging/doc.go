// Package logging assembles the structured slog loggers used across tubecast.
//
// It owns the console and JSON handlers, level parsing, and output routing
// (stderr and/or the log file under the configured log directory). Context
// helpers tag log lines with the pipeline stage, playlist URL, and run
// correlation ID, and WarnWithContext/ErrorWithContext enforce the
// event_type/error_hint shape for operator-facing problems.
package logging
