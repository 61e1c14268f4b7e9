// Package services defines shared utilities consumed by the pipeline stages
// and the external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, playlist URLs, and run
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the conversion error taxonomy (validation, dependency, download,
//     upload, empty playlist).
//   - The Executor abstraction that makes subprocess invocation of yt-dlp and
//     ffmpeg testable, with bounded output capture.
//
// Use these helpers when wiring new adapters so error classification and
// observability stay uniform across the pipeline.
package services
