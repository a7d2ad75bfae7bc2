// Package wideevent implements per-request wide-event logging: one deep-merged
// structured record per request, finalized once and emitted through a
// two-stage sampling policy to a set of independent sinks.
package wideevent

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/canopyhq/canopylog/internal/metrics"
)

const defaultDrainTimeout = 5 * time.Second

// Config assembles a Core. All hook collections are fixed at construction;
// nothing on the request path mutates them, which is what makes concurrent
// finalization of many requests safe without locking shared state.
type Config struct {
	Service      string
	Sampling     SamplingConfig
	Enrichers    []Enricher
	Override     Override
	Sinks        []Sink
	Logger       zerolog.Logger
	DrainTimeout time.Duration
}

// Core owns the process-wide wide-event pipeline: sampling policy, enrichers,
// the optional keep override, and the drain sinks. It is read-only after
// construction.
type Core struct {
	service      string
	engine       *engine
	enrichers    []Enricher
	override     Override
	sinks        []Sink
	log          zerolog.Logger
	drainTimeout time.Duration

	drains sync.WaitGroup
}

// NewCore validates the sampling policy and builds the pipeline. When no sink
// is configured a stdout sink is installed.
func NewCore(cfg Config) (*Core, error) {
	if err := cfg.Sampling.Validate(); err != nil {
		return nil, fmt.Errorf("sampling config: %w", err)
	}
	sinks := cfg.Sinks
	if len(sinks) == 0 {
		sinks = []Sink{NewStdoutSink(os.Stdout)}
	}
	timeout := cfg.DrainTimeout
	if timeout <= 0 {
		timeout = defaultDrainTimeout
	}
	return &Core{
		service:      cfg.Service,
		engine:       newEngine(cfg.Sampling),
		enrichers:    cfg.Enrichers,
		override:     cfg.Override,
		sinks:        sinks,
		log:          cfg.Logger,
		drainTimeout: timeout,
	}, nil
}

// NewLogger creates the request-scoped Logger owning one wide event, stamped
// with the reserved creation-time fields.
func (c *Core) NewLogger(meta RequestMeta) *Logger {
	now := time.Now()
	fields := Fields{
		KeyLevel:     string(LevelInfo),
		KeyTimestamp: now.UTC().Format(time.RFC3339Nano),
		KeyService:   c.service,
	}
	if meta.Path != "" {
		fields[KeyPath] = meta.Path
	}
	return &Logger{
		core:   c,
		meta:   meta,
		start:  now,
		fields: fields,
	}
}

// Dispatch hands a finalized, kept event to every sink. Dispatch is
// fire-and-forget relative to the caller: delivery runs on its own goroutine
// under a bounded timeout, so a slow or failing sink never blocks request
// completion.
func (c *Core) Dispatch(ev Fields) {
	c.drains.Add(1)
	go func() {
		defer c.drains.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.drainTimeout)
		defer cancel()
		c.drain(ctx, ev)
	}()
}

func (c *Core) drain(ctx context.Context, ev Fields) {
	for _, s := range c.sinks {
		if err := writeSink(ctx, s, ev); err != nil {
			metrics.SinkFailures.WithLabelValues(s.Name()).Inc()
			c.log.Warn().Err(err).Str("sink", s.Name()).Msg("wide event sink delivery failed")
		}
	}
}

// writeSink isolates one sink delivery, converting a panic into an error.
func writeSink(ctx context.Context, s Sink, ev Fields) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return s.Write(ctx, ev)
}

// runEnrichers invokes every registered enricher in order, isolating each
// failure to the side-channel.
func (c *Core) runEnrichers(ev Fields, meta RequestMeta) {
	for _, e := range c.enrichers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					metrics.EnricherFailures.Inc()
					c.log.Warn().Interface("panic", r).Msg("wide event enricher failed")
				}
			}()
			e.Enrich(ev, meta)
		}()
	}
}

// decide runs head+tail sampling and then the keep override. The override can
// only rescue an event: a hook clearing an existing keep vote is ignored.
func (c *Core) decide(ev Fields) Decision {
	d := c.engine.decide(ev)
	if c.override == nil {
		return d
	}
	hd := d
	func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Warn().Interface("panic", r).Msg("wide event keep-override failed")
			}
		}()
		c.override.Override(ev, &hd)
	}()
	if hd.Keep && !d.Keep {
		return Decision{Keep: true, Reason: "override"}
	}
	return d
}

// Close waits for in-flight drain deliveries, up to the context deadline.
// Intended for graceful shutdown so buffered events are not lost.
func (c *Core) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.drains.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
