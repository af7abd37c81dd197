package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("liveness = %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy("ok"), http.StatusOK, "OK"},
		{"degraded", Degraded("cache down", nil), http.StatusOK, "DEGRADED"},
		{"unhealthy", Unhealthy("oom", nil), http.StatusServiceUnavailable, "UNHEALTHY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(AggregatorConfig{})
			agg.Register(fixed("x", tt.result))

			rec := httptest.NewRecorder()
			ReadinessHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode || rec.Body.String() != tt.wantBody {
				t.Errorf("readiness = %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(fixed("cache", Degraded("cache unavailable", errors.New("dial tcp: refused"))))
	agg.Register(fixed("memory", Healthy("normal").WithDetails(map[string]any{"num_gc": 3})))

	rec := httptest.NewRecorder()
	StatusHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Timestamp == "" {
		t.Errorf("resp = %+v", resp)
	}
	if got := resp.Checks["cache"]; got.Status != "degraded" || got.Error != "dial tcp: refused" {
		t.Errorf("cache check = %+v", got)
	}
	if got := resp.Checks["memory"]; got.Details["num_gc"] != float64(3) {
		t.Errorf("memory details = %+v", got.Details)
	}
}

func TestStatusHandler_Unhealthy(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(fixed("memory", Unhealthy("critical", ErrCheckFailed)))

	rec := httptest.NewRecorder()
	StatusHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503", rec.Code)
	}
}
