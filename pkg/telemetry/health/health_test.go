package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantCode   int
	}{
		{
			name:       "no checks",
			wantStatus: StatusReady,
			wantCode:   http.StatusOK,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"config":  func(context.Context) error { return nil },
				"history": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
			wantCode:   http.StatusOK,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"config":  func(context.Context) error { return nil },
				"history": func(context.Context) error { return errors.New("database is locked") },
			},
			wantStatus: StatusDegraded,
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"slow": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(50 * time.Millisecond)
					return nil
				},
			},
			wantStatus: StatusDegraded,
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(20 * time.Millisecond)
			for name, check := range tt.checks {
				checker.Register(name, check)
			}

			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}

			var report Report
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if report.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", report.Status, tt.wantStatus)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("expected %d check results, got %d", len(tt.checks), len(report.Checks))
			}
		})
	}
}

func TestChecker_Names(t *testing.T) {
	checker := New(0)
	checker.Register("history", func(context.Context) error { return nil })
	checker.Register("config", func(context.Context) error { return nil })
	checker.Register("config", func(context.Context) error { return errors.New("replaced") })

	names := checker.Names()
	if len(names) != 2 || names[0] != "config" || names[1] != "history" {
		t.Errorf("Names() = %v", names)
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(time.Second)

	tests := []struct {
		method   string
		wantCode int
		wantBody bool
	}{
		{http.MethodGet, http.StatusOK, true},
		{http.MethodHead, http.StatusOK, false},
		{http.MethodPost, http.StatusMethodNotAllowed, true},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			checker.LivenessHandler()(rec, httptest.NewRequest(tt.method, "/health", nil))
			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			if (rec.Body.Len() > 0) != tt.wantBody {
				t.Errorf("body present = %v, want %v", rec.Body.Len() > 0, tt.wantBody)
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler(NewVersionInfo("1.2.3", "abc123", "2024-01-23"))(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if info.Version != "1.2.3" || info.GoVersion == "" {
		t.Errorf("unexpected version info: %+v", info)
	}
}
