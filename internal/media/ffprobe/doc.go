// Package ffprobe provides a typed wrapper around ffprobe JSON output, used to
// recover episode durations when the playlist metadata omits them.
package ffprobe
