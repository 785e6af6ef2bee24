package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/converter/pkg/config"
)

func TestHTTPSource_Fetch(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		dataPath string
		body     string
		status   int
		want     int
		wantErr  bool
	}{
		{
			name:   "top-level array",
			body:   `[{"MSISDN": "968"}, {"MSISDN": "969"}]`,
			status: http.StatusOK,
			want:   2,
		},
		{
			name:     "nested data path",
			method:   http.MethodPost,
			dataPath: "data.customers",
			body:     `{"data": {"customers": [{"MSISDN": "968"}]}}`,
			status:   http.StatusOK,
			want:     1,
		},
		{
			name:   "single object",
			body:   `{"MSISDN": "968"}`,
			status: http.StatusOK,
			want:   1,
		},
		{
			name:     "missing data path key",
			dataPath: "data.subscribers",
			body:     `{"data": {"customers": []}}`,
			status:   http.StatusOK,
			wantErr:  true,
		},
		{
			name:    "server error",
			body:    `{"error": "down"}`,
			status:  http.StatusBadGateway,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `<html></html>`,
			status:  http.StatusOK,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantMethod := tt.method
			if wantMethod == "" {
				wantMethod = http.MethodGet
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != wantMethod {
					t.Errorf("method = %s, want %s", r.Method, wantMethod)
				}
				if r.Header.Get("X-Api-Key") != "secret" {
					t.Errorf("configured header not sent")
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			cfg := &config.SourceConfig{HTTP: config.HTTPSourceConfig{
				URL:      server.URL,
				Method:   tt.method,
				Headers:  map[string]string{"X-Api-Key": "secret"},
				DataPath: tt.dataPath,
				Timeout:  5 * time.Second,
			}}

			set, err := (&HTTPSource{}).Fetch(context.Background(), cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() failed: %v", err)
			}
			if set.Len() != tt.want {
				t.Errorf("expected %d records, got %d", tt.want, set.Len())
			}
		})
	}
}

func TestHTTPSource_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	cfg := &config.SourceConfig{HTTP: config.HTTPSourceConfig{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	}}
	if _, err := (&HTTPSource{}).Fetch(context.Background(), cfg); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTTPSource_ResponseTooLarge(t *testing.T) {
	prev := maxResponseBytes
	maxResponseBytes = 64
	t.Cleanup(func() { maxResponseBytes = prev })

	body := `[{"MSISDN":"96899960000","FULL NAME":"Maryam Ahmad"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("big") != "" {
			_, _ = w.Write([]byte(body + strings.Repeat(" ", 64)))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	cfg := &config.SourceConfig{HTTP: config.HTTPSourceConfig{URL: server.URL, Timeout: time.Second}}
	set, err := (&HTTPSource{}).Fetch(context.Background(), cfg)
	if err != nil || set.Len() != 1 {
		t.Fatalf("body under the cap should decode: len=%d err=%v", set.Len(), err)
	}

	cfg.HTTP.URL = server.URL + "?big=1"
	_, err = (&HTTPSource{}).Fetch(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "response exceeds 64 bytes") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestExtractPath(t *testing.T) {
	doc := []byte(`{"a": {"b": [1, 2]}, "c": 3}`)

	got, err := extractPath(doc, "a.b")
	if err != nil {
		t.Fatalf("extractPath failed: %v", err)
	}
	if string(got) != "[1, 2]" {
		t.Errorf("extractPath = %s", got)
	}

	if _, err := extractPath(doc, "c.d"); err == nil {
		t.Error("expected error walking into a number")
	}
}
