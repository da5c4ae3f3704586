package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFromContextFallsBackToGlobal(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	if LoggerFromContext(nil) != Logger() {
		t.Fatal("expected global logger for nil context")
	}
	if LoggerFromContext(context.Background()) != Logger() {
		t.Fatal("expected global logger for bare context")
	}
}

func TestLogHelpers(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := contextWithLogger(context.Background(), zap.New(core))

	LogInfo(ctx, "info msg", zap.String("k", "v"))
	LogWarn(ctx, "warn msg")
	LogError(ctx, "error msg", errors.New("boom"))
	LogError(ctx, "error without err", nil)

	entries := recorded.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["k"] != "v" {
		t.Fatalf("unexpected info entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected warn entry: %+v", entries[1])
	}
	if entries[2].Level != zapcore.ErrorLevel || entries[2].ContextMap()["error"] != "boom" {
		t.Fatalf("expected error field on error entry: %+v", entries[2].ContextMap())
	}
	if _, ok := entries[3].ContextMap()["error"]; ok {
		t.Fatalf("nil error must not add an error field: %+v", entries[3].ContextMap())
	}
}
