package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/telemetry/tracing"
)

// maxResponseBytes caps the backend response read into memory.
var maxResponseBytes int64 = 32 << 20

func init() {
	Register(&HTTPSource{})
}

// HTTPSource loads records from a JSON backend.
type HTTPSource struct {
	// Client overrides the HTTP client. A client with cfg.HTTP.Timeout is
	// used when nil.
	Client *http.Client
}

// Spec implements Source.
func (s *HTTPSource) Spec() Spec {
	return Spec{Type: "http", Description: "JSON array of objects from a backend URL"}
}

// Fetch requests cfg.HTTP.URL and decodes the array found at
// cfg.HTTP.DataPath.
func (s *HTTPSource) Fetch(ctx context.Context, cfg *config.SourceConfig) (records.RecordSet, error) {
	hc := cfg.HTTP

	method := hc.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, hc.URL, nil)
	if err != nil {
		return records.RecordSet{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range hc.Headers {
		req.Header.Set(key, value)
	}
	tracing.InjectHTTP(ctx, req)

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: hc.Timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return records.RecordSet{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return records.RecordSet{}, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > maxResponseBytes {
		return records.RecordSet{}, fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return records.RecordSet{}, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	data, err := extractPath(body, hc.DataPath)
	if err != nil {
		return records.RecordSet{}, err
	}

	recs, err := records.DecodeJSON(data)
	if err != nil {
		return records.RecordSet{}, fmt.Errorf("failed to decode records: %w", err)
	}
	return records.RecordSet{Records: recs}, nil
}

// extractPath walks a dot-separated object path inside a JSON document.
func extractPath(data []byte, path string) ([]byte, error) {
	if path == "" {
		return data, nil
	}

	current := json.RawMessage(data)
	for _, key := range strings.Split(path, ".") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, fmt.Errorf("data path %q: %q is not an object", path, key)
		}
		next, ok := obj[key]
		if !ok {
			return nil, fmt.Errorf("data path %q: key %q not found", path, key)
		}
		current = next
	}
	return current, nil
}
