package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func withProjectID(t *testing.T, id string) {
	t.Helper()
	orig := cachedProjectID
	cachedProjectID = id
	projectIDOnce = sync.Once{}
	projectIDOnce.Do(func() {})
	t.Cleanup(func() { cachedProjectID = orig })
}

func TestAccessLoggerUsesRequestLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	router := chi.NewRouter()
	router.Use(AccessLogger())
	router.Get("/api/hello", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/hello?name=Ada", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req = req.WithContext(contextWithLogger(req.Context(), zap.New(core)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "request completed" {
		t.Fatalf("unexpected log message: %s", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("expected status 418, got %v", fields["status"])
	}
	if fields["path"] != "/api/hello" {
		t.Fatalf("expected path '/api/hello', got %v", fields["path"])
	}
	if fields["route"] != "/api/hello" {
		t.Fatalf("expected route pattern, got %v", fields["route"])
	}
	if fields["bytes"] != int64(2) {
		t.Fatalf("expected 2 bytes, got %v", fields["bytes"])
	}
	if fields["origin"] != "http://localhost:5173" {
		t.Fatalf("expected origin field, got %v", fields["origin"])
	}
	if _, ok := fields["duration"]; !ok {
		t.Fatalf("expected duration field, got %v", fields)
	}
}

// serveWithRequestLogger runs RequestLogger over a request whose context
// already carries an observed logger and returns the fields of the entry the
// handler logs.
func serveWithRequestLogger(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	core, recorded := observer.New(zapcore.InfoLevel)

	handler := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LogInfo(r.Context(), "handled")
		w.WriteHeader(http.StatusOK)
	}))
	req = req.WithContext(contextWithLogger(req.Context(), zap.New(core)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	return entries[0].ContextMap()
}

func TestRequestLoggerWithoutCorrelation(t *testing.T) {
	withProjectID(t, "")

	fields := serveWithRequestLogger(t, httptest.NewRequest(http.MethodGet, "/api", nil))
	if len(fields) != 0 {
		t.Fatalf("expected no correlation fields, got %v", fields)
	}
}

func TestRequestLoggerWithTraceHeader(t *testing.T) {
	withProjectID(t, "test-project")

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("traceparent", testTraceparent)
	fields := serveWithRequestLogger(t, req)

	want := "projects/test-project/traces/3d23d071b5bfd6579171efce907685cb"
	if fields["logging.googleapis.com/trace"] != want {
		t.Fatalf("expected trace %q, got %v", want, fields)
	}
	if fields["logging.googleapis.com/spanId"] != "08f067aa0ba902b7" {
		t.Fatalf("expected span ID, got %v", fields)
	}
}

func TestRequestLoggerTraceNeedsProject(t *testing.T) {
	withProjectID(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("traceparent", testTraceparent)
	fields := serveWithRequestLogger(t, req)

	if _, ok := fields["logging.googleapis.com/trace"]; ok {
		t.Fatalf("expected no trace field without a project, got %v", fields)
	}
}

func TestRequestLoggerAddsRequestID(t *testing.T) {
	withProjectID(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req = req.WithContext(context.WithValue(req.Context(), chimiddleware.RequestIDKey, "test-request-id"))
	fields := serveWithRequestLogger(t, req)

	if fields["requestId"] != "test-request-id" {
		t.Fatalf("expected requestId field, got %v", fields)
	}
}
