package api

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerFromContext_DefaultsWhenMissing(t *testing.T) {
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Error("LoggerFromContext() should return slog.Default() when no logger is attached")
	}
}

func TestLoggerFromContext_ReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "req-1")

	ctx := WithLogger(context.Background(), l)
	LoggerFromContext(ctx).Info("hello")

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("log output = %q, want request_id attribute", buf.String())
	}
}

func TestWithLogger_NilFallsBack(t *testing.T) {
	ctx := WithLogger(context.Background(), nil)
	if LoggerFromContext(ctx) == nil {
		t.Error("LoggerFromContext() returned nil")
	}
}
