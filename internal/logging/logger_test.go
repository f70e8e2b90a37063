package logging_test

import (
	"context"
	"log/slog"
	"testing"

	"pearl/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewDefaultsToConsole(t *testing.T) {
	logger, err := logging.New(logging.Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	if fields := logging.ContextFields(ctx); len(fields) != 0 {
		t.Fatalf("empty context produced fields: %v", fields)
	}

	ctx = logging.WithTitleID(ctx, "t1")
	ctx = logging.WithChapter(ctx, "7.2")
	ctx = logging.WithActor(ctx, "u1")

	fields := logging.ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	keys := map[string]string{}
	for _, attr := range fields {
		keys[attr.Key] = attr.Value.String()
	}
	if keys[logging.FieldTitleID] != "t1" || keys[logging.FieldChapter] != "7.2" || keys[logging.FieldActor] != "u1" {
		t.Fatalf("unexpected field values: %v", keys)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected fallback logger")
	}
	var _ *slog.Logger = logger
}
