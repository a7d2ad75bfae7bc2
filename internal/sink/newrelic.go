package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

// NewRelicSink forwards kept events through the New Relic agent's log API.
type NewRelicSink struct {
	app *newrelic.Application
}

func (s *NewRelicSink) Name() string { return "newrelic" }

func (s *NewRelicSink) Write(_ context.Context, ev wideevent.Fields) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	s.app.RecordLog(newrelic.LogData{
		Timestamp: time.Now().UnixMilli(),
		Severity:  string(ev.EventLevel()),
		Message:   string(payload),
	})
	return nil
}

// NewRelicFactory creates New Relic sinks. It carries the process-wide agent
// application, which main constructs once. Registers as "newrelic".
type NewRelicFactory struct {
	App *newrelic.Application
}

func (NewRelicFactory) Name() string { return "newrelic" }

func (NewRelicFactory) ConfigSpec() TypeInfo {
	return TypeInfo{
		Type:        "newrelic",
		Description: "Forwards kept events through the New Relic agent as log records.",
	}
}

func (f NewRelicFactory) Create(Config) (wideevent.Sink, error) {
	if f.App == nil {
		return nil, fmt.Errorf("newrelic sink requires a configured agent (set the license key)")
	}
	return &NewRelicSink{app: f.App}, nil
}
