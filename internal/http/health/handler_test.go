package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	resp := httptest.NewRecorder()
	Handler("1.2.3")(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var h Response
	if err := json.Unmarshal(resp.Body.Bytes(), &h); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if h.Status != "healthy" || h.Version != "1.2.3" {
		t.Fatalf("unexpected health response: %+v", h)
	}
}

func TestHealthHandlerOmitsEmptyVersion(t *testing.T) {
	resp := httptest.NewRecorder()
	Handler("")(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	var raw map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := raw["version"]; ok {
		t.Fatalf("expected version to be omitted, got %v", raw)
	}
}
