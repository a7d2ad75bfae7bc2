package server

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/canopyhq/canopylog/internal/metrics"
	"github.com/canopyhq/canopylog/internal/response"
	"github.com/canopyhq/canopylog/internal/wideevent"
)

const maxIngestBody = 4 << 20 // 4 MiB

// RecentStore keeps the last N events that passed through this process, for
// the /logs/recent endpoint.
type RecentStore struct {
	mu     sync.Mutex
	events []wideevent.Fields
	limit  int
}

func newRecentStore(limit int) *RecentStore {
	return &RecentStore{limit: limit}
}

// Add records one event, evicting the oldest beyond the limit.
func (s *RecentStore) Add(ev wideevent.Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
}

// Recent returns the stored events, newest last.
func (s *RecentStore) Recent() []wideevent.Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wideevent.Fields, len(s.events))
	copy(out, s.events)
	return out
}

// handleIngest accepts a JSON array (or single object) of finalized events
// from remote batch clients and hands them straight to the drain pipeline.
// Remote events were already sampled by their producer, so no head/tail
// decision is re-applied here.
func (s *Server) handleIngest(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxIngestBody))
	if err != nil {
		return response.BadRequest(c, "read body", err.Error())
	}
	if len(body) == 0 {
		return response.BadRequest(c, "empty body", "expected a JSON event or array of events")
	}

	var events []wideevent.Fields
	if err := json.Unmarshal(body, &events); err != nil {
		var single wideevent.Fields
		if err := json.Unmarshal(body, &single); err != nil {
			return response.BadRequest(c, "invalid JSON body", err.Error())
		}
		events = []wideevent.Fields{single}
	}

	for _, ev := range events {
		s.core.Dispatch(ev)
		s.recent.Add(ev)
		metrics.EventsIngested.Inc()
	}
	return response.Accepted(c, map[string]any{"accepted": len(events)}, "")
}

func (s *Server) handleRecent(c echo.Context) error {
	return response.OK(c, map[string]any{"events": s.recent.Recent()}, "")
}
