package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

type ingestServer struct {
	mu      sync.Mutex
	batches [][]map[string]any
	srv     *httptest.Server
}

func newIngestServer(t *testing.T) *ingestServer {
	t.Helper()
	is := &ingestServer{}
	is.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		is.mu.Lock()
		is.batches = append(is.batches, batch)
		is.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(is.srv.Close)
	return is
}

func (is *ingestServer) Batches() [][]map[string]any {
	is.mu.Lock()
	defer is.mu.Unlock()
	out := make([][]map[string]any, len(is.batches))
	copy(out, is.batches)
	return out
}

func TestLogger_FlushSendsBufferedEvents(t *testing.T) {
	is := newIngestServer(t)
	l, err := New(Config{URL: is.srv.URL, FlushInterval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer l.Close(context.Background())

	l.Log(wideevent.Fields{"path": "/a"})
	l.Log(wideevent.Fields{"path": "/b"})
	require.NoError(t, l.Flush(context.Background()))

	batches := is.Batches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 2)
	assert.Equal(t, "/a", batches[0][0]["path"])
	assert.Equal(t, "/b", batches[0][1]["path"])
}

func TestLogger_FlushOnBatchSize(t *testing.T) {
	is := newIngestServer(t)
	l, err := New(Config{URL: is.srv.URL, BatchSize: 2, FlushInterval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer l.Close(context.Background())

	l.Log(wideevent.Fields{"n": 1})
	assert.Empty(t, is.Batches(), "below batch size, nothing sent yet")
	l.Log(wideevent.Fields{"n": 2})

	batches := is.Batches()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
}

func TestLogger_PeriodicFlush(t *testing.T) {
	is := newIngestServer(t)
	l, err := New(Config{URL: is.srv.URL, FlushInterval: 20 * time.Millisecond, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer l.Close(context.Background())

	l.Log(wideevent.Fields{"n": 1})
	assert.Eventually(t, func() bool {
		return len(is.Batches()) >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLogger_CloseFlushesRemainder(t *testing.T) {
	is := newIngestServer(t)
	l, err := New(Config{URL: is.srv.URL, FlushInterval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)

	l.Log(wideevent.Fields{"n": 1})
	require.NoError(t, l.Close(context.Background()))

	batches := is.Batches()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 1)
}

func TestLogger_FailedFlushDropsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l, err := New(Config{URL: srv.URL, FlushInterval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer l.Close(context.Background())

	l.Log(wideevent.Fields{"n": 1})
	assert.Error(t, l.Flush(context.Background()))
	assert.NoError(t, l.Flush(context.Background()), "the failed batch is dropped, not retried")
}

func TestLogger_CloseIsIdempotent(t *testing.T) {
	is := newIngestServer(t)
	l, err := New(Config{URL: is.srv.URL, FlushInterval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)

	l.Log(wideevent.Fields{"n": 1})
	require.NoError(t, l.Close(context.Background()))
	require.NoError(t, l.Close(context.Background()))
	assert.Len(t, is.Batches(), 1)
}

func TestLogger_EmptyFlushIsNoop(t *testing.T) {
	is := newIngestServer(t)
	l, err := New(Config{URL: is.srv.URL, FlushInterval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer l.Close(context.Background())

	require.NoError(t, l.Flush(context.Background()))
	assert.Empty(t, is.Batches())
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
