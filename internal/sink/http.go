package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

const defaultHTTPTimeout = 5 * time.Second

// HTTPSink forwards kept events to a remote ingest endpoint as a JSON array,
// the same transport shape the batch client uses.
type HTTPSink struct {
	url    string
	client *http.Client
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Write(ctx context.Context, ev wideevent.Fields) error {
	payload, err := json.Marshal([]wideevent.Fields{ev})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// HTTPFactory creates HTTP forwarding sinks. Registers as "http".
type HTTPFactory struct{}

func (HTTPFactory) Name() string { return "http" }

func (HTTPFactory) ConfigSpec() TypeInfo {
	return TypeInfo{
		Type:        "http",
		Description: "POSTs kept events as a JSON body to a remote ingest endpoint.",
		Fields: []ConfigField{
			{Name: "url", Type: "string", Required: true, Description: "Ingest endpoint URL", Example: "https://logs.example.com/ingest/events"},
			{Name: "timeout_ms", Type: "number", Required: false, Description: "Request timeout in milliseconds (default 5000)"},
		},
	}
}

func (HTTPFactory) Create(cfg Config) (wideevent.Sink, error) {
	url := cfg.str("url")
	if url == "" {
		return nil, fmt.Errorf("missing 'url' for http sink")
	}
	timeout := defaultHTTPTimeout
	if ms, ok := cfg.num("timeout_ms"); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	return &HTTPSink{url: url, client: &http.Client{Timeout: timeout}}, nil
}
