package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/export"
	"mercator-hq/converter/pkg/history"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/server/middleware"
	"mercator-hq/converter/pkg/source"
	"mercator-hq/converter/pkg/telemetry/metrics"
)

// stubSource is a controllable source.Source.
type stubSource struct {
	set  records.RecordSet
	err  error
	gate chan struct{}
}

func (s *stubSource) Spec() source.Spec {
	return source.Spec{Type: "stub", Description: "test source"}
}

func (s *stubSource) Fetch(ctx context.Context, _ *config.SourceConfig) (records.RecordSet, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return records.RecordSet{}, ctx.Err()
		}
	}
	return s.set, s.err
}

type fixture struct {
	holder  *records.Holder
	runner  *export.Runner
	store   history.Store
	metrics *metrics.Collector
	handler http.Handler
}

func newFixture(t *testing.T, src source.Source) *fixture {
	t.Helper()

	cfg := config.NewDefaultConfig()
	holder := records.NewHolder()
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	if src == nil {
		src = &stubSource{set: records.RecordSet{Records: []records.Record{source.SampleRecord()}}}
	}
	adapter, err := source.NewAdapter(&cfg.Source, holder, source.WithSource(src), source.WithMetrics(collector))
	if err != nil {
		t.Fatalf("NewAdapter failed: %v", err)
	}

	store := history.NewMemoryStore(10)
	runner := export.NewRunner(&cfg.Export, holder, export.WithHistory(store), export.WithMetrics(collector))

	srv := NewServer(&cfg.Server, Deps{
		Holder:      holder,
		Fetcher:     adapter,
		Exports:     runner,
		Metrics:     collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
	})

	return &fixture{holder: holder, runner: runner, store: store, metrics: collector, handler: srv.Handler()}
}

func (f *fixture) do(method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	if rec := f.do(http.MethodPost, "/api/fetch", nil); rec.Code != http.StatusOK {
		t.Fatalf("fetch failed: %d %s", rec.Code, rec.Body.String())
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) middleware.ErrorDetail {
	t.Helper()
	var body middleware.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestIndex(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No data loaded.") {
		t.Error("empty page should say no data is loaded")
	}

	f.load(t)
	body := f.do(http.MethodGet, "/?notice=Loaded+1+records.", nil).Body.String()

	for _, want := range []string{"Records: 1", "First row keys: MSISDN, IMEI", "<td>EMPTY</td>", "Loaded 1 records.", `href="/api/export/pdf"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestIndex_EscapesNotice(t *testing.T) {
	f := newFixture(t, nil)
	body := f.do(http.MethodGet, "/?notice="+url.QueryEscape("<script>x</script>"), nil).Body.String()
	if strings.Contains(body, "<script>x</script>") {
		t.Error("notice was not escaped")
	}
}

func TestTruncateNotice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "Loaded 1 records.", 200, "Loaded 1 records."},
		{"ascii", "abcdef", 4, "abcd"},
		{"rune boundary", "ab\u0645", 3, "ab"},
		{"inside three-byte rune", "a\uFEE3\uFEAE", 5, "a\uFEE3"},
		{"exact fit", "a\uFEE3", 4, "a\uFEE3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateNotice(tt.in, tt.n)
			if got != tt.want || !utf8.ValidString(got) {
				t.Errorf("truncateNotice(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestIndex_TruncatesMultiByteNotice(t *testing.T) {
	f := newFixture(t, nil)
	notice := strings.Repeat("a", maxNoticeLength-1) + strings.Repeat("\u0645", 10)
	body := f.do(http.MethodGet, "/?notice="+url.QueryEscape(notice), nil).Body.String()

	if !utf8.ValidString(body) || strings.ContainsRune(body, utf8.RuneError) {
		t.Error("truncated notice produced invalid UTF-8")
	}
	if !strings.Contains(body, strings.Repeat("a", maxNoticeLength-1)) || strings.Contains(body, "\u0645") {
		t.Error("notice should be cut before the first multi-byte rune")
	}
}

func TestFetch(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/fetch", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp FetchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Source != "stub" {
		t.Errorf("unexpected response %+v", resp)
	}
	if f.holder.Current().Len() != 1 {
		t.Error("holder not updated")
	}
}

func TestFetch_FormPostRedirects(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/fetch", http.Header{"Accept": {"text/html,application/xhtml+xml"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/" || loc.Query().Get("notice") != "Loaded 1 records." {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
}

func TestFetch_SourceUnavailable(t *testing.T) {
	f := newFixture(t, &stubSource{err: errors.New("connection refused")})

	rec := f.do(http.MethodPost, "/api/fetch", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if e := decodeError(t, rec); e.Type != middleware.ErrorTypeSourceUnavailable {
		t.Errorf("error type = %q", e.Type)
	}
}

func TestFetch_Busy(t *testing.T) {
	gate := make(chan struct{})
	f := newFixture(t, &stubSource{gate: gate})

	done := make(chan int, 1)
	go func() { done <- f.do(http.MethodPost, "/api/fetch", nil).Code }()

	deadline := time.Now().Add(2 * time.Second)
	for !f.holder.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("first fetch never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !strings.Contains(f.do(http.MethodGet, "/", nil).Body.String(), "Loading...") {
		t.Error("fetch button should show loading state")
	}

	rec := f.do(http.MethodPost, "/api/fetch", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("concurrent fetch status = %d, want 409", rec.Code)
	}

	close(gate)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first fetch status = %d", code)
	}
}

func TestRecords(t *testing.T) {
	f := newFixture(t, nil)

	var empty RecordsResponse
	if err := json.NewDecoder(f.do(http.MethodGet, "/api/records", nil).Body).Decode(&empty); err != nil {
		t.Fatal(err)
	}
	if empty.Count != 0 || empty.FetchedAt != nil || empty.Headers == nil {
		t.Errorf("unexpected empty response %+v", empty)
	}

	f.load(t)
	var resp RecordsResponse
	if err := json.NewDecoder(f.do(http.MethodGet, "/api/records", nil).Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || len(resp.Headers) != 12 || resp.FetchedAt == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Headers[0] != "MSISDN" || resp.Rows[0][11] != "EMPTY" {
		t.Errorf("projection mismatch: %v %v", resp.Headers[0], resp.Rows[0][11])
	}
}

func TestExport(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
	}{
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"pdf", "application/pdf"},
		{"csv", "text/csv"},
		{"json", "application/json"},
		{"html", "text/html"},
	}

	f := newFixture(t, nil)
	f.load(t)
	today := time.Now().UTC().Format("2006-01-02")

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := f.do(http.MethodGet, "/api/export/"+tt.format, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
			}
			want := `attachment; filename=customer_data_` + today + `.` + tt.format
			if cd := rec.Header().Get("Content-Disposition"); cd != want {
				t.Errorf("Content-Disposition = %q, want %q", cd, want)
			}
			if rec.Body.Len() == 0 || rec.Header().Get("X-Export-ID") == "" {
				t.Error("missing body or export ID")
			}
		})
	}

	entries, err := f.store.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(tests) {
		t.Errorf("history has %d entries, want %d", len(entries), len(tests))
	}
}

func TestExport_Errors(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("empty input", func(t *testing.T) {
		for _, format := range []string{"xlsx", "pdf"} {
			rec := f.do(http.MethodGet, "/api/export/"+format, nil)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("%s: status = %d, want 422", format, rec.Code)
			}
			if e := decodeError(t, rec); e.Type != middleware.ErrorTypeEmptyInput {
				t.Errorf("%s: error type = %q", format, e.Type)
			}
		}
	})

	t.Run("empty input from page link", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/export/pdf", http.Header{"Accept": {"text/html"}})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		if !strings.Contains(rec.Header().Get("Location"), url.QueryEscape("No data to export.")) {
			t.Errorf("Location = %q", rec.Header().Get("Location"))
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/export/docx", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("busy", func(t *testing.T) {
		f.load(t)
		release, err := f.holder.BeginExport()
		if err != nil {
			t.Fatal(err)
		}
		defer release()

		rec := f.do(http.MethodGet, "/api/export/xlsx", nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if e := decodeError(t, rec); e.Type != middleware.ErrorTypeBusy {
			t.Errorf("error type = %q", e.Type)
		}
	})
}

func TestSources(t *testing.T) {
	f := newFixture(t, nil)

	var resp SourcesResponse
	if err := json.NewDecoder(f.do(http.MethodGet, "/api/sources", nil).Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Active != "stub" {
		t.Errorf("active = %q", resp.Active)
	}

	found := false
	for _, spec := range resp.Sources {
		if spec.Type == "sample" {
			found = true
		}
	}
	if !found {
		t.Errorf("sample source not listed: %+v", resp.Sources)
	}
}

func TestExportsHistory(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t)
	f.do(http.MethodGet, "/api/export/csv", nil)
	f.do(http.MethodGet, "/api/export/json", nil)

	var resp ExportsResponse
	if err := json.NewDecoder(f.do(http.MethodGet, "/api/exports?limit=1", nil).Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Exports) != 1 || resp.Exports[0].Format != "json" {
		t.Errorf("unexpected history %+v", resp.Exports)
	}

	for _, bad := range []string{"0", "-1", "abc", "5000"} {
		if rec := f.do(http.MethodGet, "/api/exports?limit="+bad, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", bad, rec.Code)
		}
	}
}

func TestProbesAndMetrics(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t)

	for _, path := range []string{"/health", "/ready", "/version"} {
		if rec := f.do(http.MethodGet, path, nil); rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}

	rec := f.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"converter_fetches_total", `route="/api/fetch"`} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRequestIDEchoed(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/api/records", http.Header{"X-Request-Id": {"req-42"}})
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second

	holder := records.NewHolder()
	adapter, err := source.NewAdapter(&cfg.Source, holder)
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(&cfg.Server, Deps{
		Holder:  holder,
		Fetcher: adapter,
		Exports: export.NewRunner(&cfg.Export, holder),
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !srv.IsRunning() {
		t.Error("server should report running")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("server should report stopped")
	}
}
