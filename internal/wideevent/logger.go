package wideevent

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/canopyhq/canopylog/internal/metrics"
)

// Logger owns exactly one wide event for the lifetime of one request. It is
// created by the boundary and never shared across requests. Concurrent
// sub-tasks of the same request may call Set; each merge is atomic under the
// logger's mutex, with last-write-wins ordering between interleaved calls.
//
// The zero-value restrictions: a Logger obtained from FromContext on a
// context without one is a no-op; all methods tolerate it.
type Logger struct {
	core  *Core
	meta  RequestMeta
	start time.Time

	mu     sync.Mutex
	fields Fields

	finalized atomic.Bool
}

// Meta returns the request metadata the logger was bound to.
func (l *Logger) Meta() RequestMeta {
	if l == nil {
		return RequestMeta{}
	}
	return l.meta
}

// Set deep-merges partial into the live event. Mapping values merge
// recursively; scalars, slices and mixed-type values overwrite. Calls after
// finalization are dropped: a finalized event is immutable.
func (l *Logger) Set(partial Fields) {
	if l == nil || l.core == nil || len(partial) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized.Load() {
		return
	}
	merge(l.fields, partial)
}

// Error captures err into the event: level becomes error, extras merge as
// ordinary fields, and a record describing err merges under the reserved
// "error" key. Error is purely data capture; it never fails and never
// finalizes or raises anything. Raising the error to the boundary is a
// separate, independent concern.
func (l *Logger) Error(err error, extras ...Fields) {
	if l == nil || l.core == nil || err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized.Load() {
		return
	}
	for _, extra := range extras {
		merge(l.fields, extra)
	}
	l.fields[KeyLevel] = string(LevelError)
	var errFields Fields
	if se, ok := err.(*StructuredError); ok {
		errFields = se.fields()
	} else {
		errFields = Fields{"message": err.Error()}
	}
	merge(l.fields, Fields{KeyError: errFields})
}

// Emit finalizes the event immediately. Idempotent: a second Emit, or the
// boundary's automatic finalization afterwards, is a no-op.
func (l *Logger) Emit() {
	l.finalize(0)
}

// Finish is the boundary's finalization trigger, invoked unconditionally at
// request termination with the final HTTP status. It is a no-op if the event
// was already emitted explicitly.
func (l *Logger) Finish(status int) {
	l.finalize(status)
}

// finalize runs the terminal sequence exactly once: duration, enrichment,
// sampling, then drain dispatch for kept events.
func (l *Logger) finalize(status int) {
	if l == nil || l.core == nil {
		return
	}
	if !l.finalized.CompareAndSwap(false, true) {
		return
	}
	c := l.core

	l.mu.Lock()
	durMS := float64(time.Since(l.start)) / float64(time.Millisecond)
	l.fields[KeyDuration] = durMS
	if status > 0 {
		l.fields[KeyStatus] = status
	}
	c.runEnrichers(l.fields, l.meta)
	d := c.decide(l.fields)
	if d.Keep {
		l.fields["sampling"] = Fields{"decision": "keep", "reason": d.Reason}
	}
	ev := l.fields
	l.mu.Unlock()

	metrics.EventDuration.Observe(durMS / 1000)
	if !d.Keep {
		metrics.EventsFinalized.WithLabelValues("drop").Inc()
		c.log.Debug().Str("path", ev.String(KeyPath)).Msg("wide event dropped by sampling")
		return
	}
	metrics.EventsFinalized.WithLabelValues("keep").Inc()
	c.Dispatch(ev)
}
