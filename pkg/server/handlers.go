package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"mercator-hq/converter/pkg/export"
	"mercator-hq/converter/pkg/history"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/render"
	"mercator-hq/converter/pkg/server/middleware"
	"mercator-hq/converter/pkg/source"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
	maxNoticeLength     = 200
)

// RecordsResponse is the body of GET /api/records.
type RecordsResponse struct {
	Count     int        `json:"count"`
	Source    string     `json:"source,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	render.Table
}

// FetchResponse is the body of a successful POST /api/fetch.
type FetchResponse struct {
	Count     int       `json:"count"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SourcesResponse is the body of GET /api/sources.
type SourcesResponse struct {
	Active  string        `json:"active"`
	Sources []source.Spec `json:"sources"`
}

// truncateNotice cuts s to at most n bytes without splitting a rune.
func truncateNotice(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ExportsResponse is the body of GET /api/exports.
type ExportsResponse struct {
	Exports []history.Entry `json:"exports"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	set := s.deps.Holder.Current()
	cfg := s.deps.Exports.Config()

	notice := truncateNotice(r.URL.Query().Get("notice"), maxNoticeLength)

	data := render.PageData{
		Table:     render.Project(set, cfg.Placeholder),
		Source:    set.Source,
		FetchedAt: set.FetchedAt,
		Fetching:  s.deps.Fetcher.Busy(),
		Exporting: s.deps.Exports.Exporting(),
		Formats:   export.Formats,
		Notice:    notice,
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render preview page", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrorTypeInternal, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	set, err := s.deps.Fetcher.Fetch(r.Context())
	if err != nil {
		status, errType, message := classify(err)
		if wantsHTML(r) {
			redirectWithNotice(w, r, message)
			return
		}
		middleware.WriteError(w, status, errType, message)
		return
	}

	if wantsHTML(r) {
		redirectWithNotice(w, r, fmt.Sprintf("Loaded %d records.", set.Len()))
		return
	}

	writeJSON(w, http.StatusOK, FetchResponse{
		Count:     set.Len(),
		Source:    set.Source,
		FetchedAt: set.FetchedAt,
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	set := s.deps.Holder.Current()

	resp := RecordsResponse{
		Count:  set.Len(),
		Source: set.Source,
		Table:  render.Project(set, s.deps.Exports.Config().Placeholder),
	}
	if !set.FetchedAt.IsZero() {
		resp.FetchedAt = &set.FetchedAt
	}
	if resp.Headers == nil {
		resp.Headers = []string{}
		resp.Rows = [][]string{}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.PathValue("format"))
	if !slices.Contains(export.Formats, format) {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrorTypeBadRequest,
			fmt.Sprintf("unsupported export format %q (supported: %s)", format, strings.Join(export.Formats, ", ")))
		return
	}

	out, err := s.deps.Exports.Export(r.Context(), format)
	if err != nil {
		status, errType, message := classify(err)
		if wantsHTML(r) {
			redirectWithNotice(w, r, message)
			return
		}
		middleware.WriteError(w, status, errType, message)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-Export-ID", out.ID)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(out.Data)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SourcesResponse{
		Active:  s.deps.Fetcher.Type(),
		Sources: source.List(),
	})
}

func (s *Server) handleExports(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrorTypeBadRequest,
				fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = n
	}

	entries, err := s.deps.Exports.History(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list export history", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrorTypeInternal, "failed to list export history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	writeJSON(w, http.StatusOK, ExportsResponse{Exports: entries})
}

// classify maps a fetch or export error to a status code, error type and the
// notice shown to the user.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, records.ErrBusy):
		return http.StatusConflict, middleware.ErrorTypeBusy, "Operation already in progress."
	case errors.Is(err, records.ErrEmptyInput):
		return http.StatusUnprocessableEntity, middleware.ErrorTypeEmptyInput, "No data to export."
	case errors.Is(err, records.ErrRenderFailure):
		return http.StatusInternalServerError, middleware.ErrorTypeRenderFailure, "Export failed while rendering the document."
	case errors.Is(err, records.ErrSourceUnavailable):
		return http.StatusBadGateway, middleware.ErrorTypeSourceUnavailable, "Failed to fetch data from the source."
	default:
		return http.StatusInternalServerError, middleware.ErrorTypeInternal, "An internal error occurred."
	}
}

// wantsHTML reports whether the request came from the preview page rather
// than an API client.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, notice string) {
	http.Redirect(w, r, "/?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
