// Package notifications delivers run outcomes via ntfy.
//
// NewService returns an ntfy-backed Service when a topic URL is configured
// and a no-op otherwise, so callers never need to check whether
// notifications are enabled.
package notifications
