// Package tui renders a conversion run in the terminal.
//
// Model is a bubbletea program with four phases: URL input, a running view
// with a spinner and per-stage progress bar, and final complete or error
// screens. PlainRenderer is the non-interactive alternative used when stdout
// is not a terminal; it prints one line per event.
package tui
