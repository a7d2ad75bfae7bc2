package wideevent

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// Sink receives kept, finalized events. Delivery is best-effort and
// at-most-once per sink: failures are reported to the side-channel and never
// retried, and one sink's failure does not affect the others.
type Sink interface {
	Name() string
	Write(ctx context.Context, ev Fields) error
}

// StdoutSink writes events as JSON lines via zerolog. It is the default sink
// when no custom sink is registered.
type StdoutSink struct {
	log zerolog.Logger
}

// NewStdoutSink returns a sink writing JSON events to w.
func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{log: zerolog.New(w)}
}

func (s *StdoutSink) Name() string { return "stdout" }

func (s *StdoutSink) Write(_ context.Context, ev Fields) error {
	s.log.Log().Fields(map[string]any(ev)).Send()
	return nil
}
