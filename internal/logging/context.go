package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTitleID is the standardized structured logging key for title identifiers.
	FieldTitleID = "title_id"
	// FieldChapter is the standardized structured logging key for chapter numbers.
	FieldChapter = "chapter"
	// FieldStage is the standardized structured logging key for production stages.
	FieldStage = "stage"
	// FieldActor is the standardized structured logging key for the acting user.
	FieldActor = "actor"
)

type contextKey int

const (
	titleIDKey contextKey = iota
	chapterKey
	actorKey
)

// WithTitleID stores a title identifier on the context for log enrichment.
func WithTitleID(ctx context.Context, titleID string) context.Context {
	return context.WithValue(ctx, titleIDKey, titleID)
}

// WithChapter stores a chapter number on the context for log enrichment.
func WithChapter(ctx context.Context, chapter string) context.Context {
	return context.WithValue(ctx, chapterKey, chapter)
}

// WithActor stores the acting user id on the context for log enrichment.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := ctx.Value(titleIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldTitleID, id))
	}
	if chapter, ok := ctx.Value(chapterKey).(string); ok && chapter != "" {
		fields = append(fields, slog.String(FieldChapter, chapter))
	}
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		fields = append(fields, slog.String(FieldActor, actor))
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
	return logger.With(attrsToArgs(fields)...)
}
