package logging

import (
	"context"
	"log/slog"

	"tubecast/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for run identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldPlaylistURL carries the playlist being converted.
	FieldPlaylistURL = "playlist_url"
	// FieldEventType classifies a log line for filtering (e.g. stage_start).
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next step after a warning or error.
	FieldErrorHint = "error_hint"
	// FieldItemIndex is the 1-based ordinal of the playlist item being processed.
	FieldItemIndex = "item_index"
	// FieldItemCount is the number of items in the current run.
	FieldItemCount = "item_count"
	// FieldImpact describes what a warning cost the user.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	if url, ok := services.PlaylistURLFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPlaylistURL, url))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(toArgs(fields)...)
}
