// Package logs reads the tubecast log file for the `tubecast logs` command:
// the last N lines, then optionally new lines as they are appended.
package logs
