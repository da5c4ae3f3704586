package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testTraceparent = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"

func TestTraceFields(t *testing.T) {
	fields := traceFields(testTraceparent, "test-project")
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	wantTrace := "projects/test-project/traces/3d23d071b5bfd6579171efce907685cb"
	if fields[0].Key != "logging.googleapis.com/trace" || fields[0].String != wantTrace {
		t.Fatalf("unexpected trace field: %+v", fields[0])
	}
	if fields[1].Key != "logging.googleapis.com/spanId" || fields[1].String != "08f067aa0ba902b7" {
		t.Fatalf("unexpected span field: %+v", fields[1])
	}
	if fields[2].Type != zapcore.BoolType || fields[2].Integer != 1 {
		t.Fatalf("expected sampled trace, got %+v", fields[2])
	}
}

func TestTraceFieldsNotSampled(t *testing.T) {
	fields := traceFields("00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00", "test-project")
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[2].Integer != 0 {
		t.Fatalf("expected unsampled trace, got %+v", fields[2])
	}
}

func TestTraceFieldsInvalid(t *testing.T) {
	cases := []struct {
		name, header, project string
	}{
		{"garbage", "invalid", "test-project"},
		{"empty", "", "test-project"},
		{"legacy cloud trace format", "105445aa7843bc8bf206b120001000/1;o=1", "test-project"},
		{"no project", testTraceparent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if fields := traceFields(tc.header, tc.project); fields != nil {
				t.Fatalf("expected nil fields, got %v", fields)
			}
		})
	}
}

func TestTraceResource(t *testing.T) {
	got := traceResource("p1", "3d23d071b5bfd6579171efce907685cb")
	if got != "projects/p1/traces/3d23d071b5bfd6579171efce907685cb" {
		t.Fatalf("unexpected trace resource %q", got)
	}
}

func TestLoggerWithTraceAddsRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	logger := loggerWithTrace(zap.New(core), "", "test-project", "req-123")
	logger.Info("hello")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["requestId"] != "req-123" {
		t.Fatalf("expected requestId field, got %v", ctx)
	}
	if _, ok := ctx["logging.googleapis.com/trace"]; ok {
		t.Fatalf("did not expect trace field without traceparent, got %v", ctx)
	}
}

func TestLoggerWithTraceNilBase(t *testing.T) {
	if l := loggerWithTrace(nil, "", "", ""); l == nil {
		t.Fatal("expected nop logger for nil base")
	}
}
