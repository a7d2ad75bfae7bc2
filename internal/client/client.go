// Package client implements the accumulate-then-send variant for callers that
// are not request-scoped: log calls are buffered in memory and shipped to a
// remote ingest endpoint in batches, with an explicit Flush to force delivery
// before exit.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
)

// Config configures a batch Logger.
type Config struct {
	// URL is the ingest endpoint, e.g. https://logs.example.com/ingest/events.
	URL string
	// BatchSize triggers a flush when the buffer reaches it (default 50).
	BatchSize int
	// FlushInterval triggers periodic flushes (default 5s).
	FlushInterval time.Duration
	// HTTPClient optionally overrides the transport.
	HTTPClient *http.Client
	// Logger is the side-channel for delivery failures.
	Logger zerolog.Logger
}

// Logger buffers events and ships them in batches. Delivery is fire-and-
// forget: a failed batch is reported to the side-channel and dropped, never
// retried, matching the drain pipeline's semantics.
type Logger struct {
	url    string
	max    int
	client *http.Client
	log    zerolog.Logger

	mu  sync.Mutex
	buf []wideevent.Fields

	ticker    *time.Ticker
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds and starts a batch Logger.
func New(cfg Config) (*Logger, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("client: ingest URL is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	l := &Logger{
		url:    cfg.URL,
		max:    cfg.BatchSize,
		client: cfg.HTTPClient,
		log:    cfg.Logger,
		ticker: time.NewTicker(cfg.FlushInterval),
		done:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l, nil
}

// Log buffers one event. When the buffer reaches the batch size it is
// flushed immediately.
func (l *Logger) Log(ev wideevent.Fields) {
	l.mu.Lock()
	l.buf = append(l.buf, ev)
	full := len(l.buf) >= l.max
	l.mu.Unlock()
	if full {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err := l.Flush(ctx); err != nil {
			l.log.Warn().Err(err).Msg("batch flush failed, events dropped")
		}
	}
}

// Flush sends the buffered events now. The buffer is consumed either way: a
// failed delivery drops its batch.
func (l *Logger) Flush(ctx context.Context) error {
	l.mu.Lock()
	batch := l.buf
	l.buf = nil
	l.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("send batch of %d: %w", len(batch), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Close stops the background goroutine and flushes remaining events.
// Safe to call more than once.
func (l *Logger) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		close(l.done)
		l.ticker.Stop()
		l.wg.Wait()
	})
	return l.Flush(ctx)
}

func (l *Logger) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case <-l.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			if err := l.Flush(ctx); err != nil {
				l.log.Warn().Err(err).Msg("periodic flush failed, events dropped")
			}
			cancel()
		}
	}
}
