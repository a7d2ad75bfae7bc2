package wideevent

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// KeepRule is one tail-sampling predicate over a finalized event's reserved
// fields. Exactly one of Status, MinDurationMS or Path should be set; a rule
// with several set matches only when all of them do.
type KeepRule struct {
	Name          string  `json:"name,omitempty"`
	Status        int     `json:"status,omitempty"`
	MinDurationMS float64 `json:"min_duration_ms,omitempty"`
	Path          string  `json:"path,omitempty"`

	pathGlob glob.Glob
}

// Compile validates the rule and pre-compiles its path glob. Globs use '/' as
// the segment separator, so '*' stays within one segment and '**' spans
// segments.
func (r *KeepRule) Compile() error {
	if r.Status == 0 && r.MinDurationMS == 0 && r.Path == "" {
		return fmt.Errorf("keep rule %q matches nothing: set status, min_duration_ms or path", r.Name)
	}
	if r.Path != "" {
		g, err := glob.Compile(r.Path, '/')
		if err != nil {
			return fmt.Errorf("keep rule %q: invalid path pattern %q: %w", r.Name, r.Path, err)
		}
		r.pathGlob = g
	}
	return nil
}

// matches reports whether the finalized event satisfies the rule. A rule that
// cannot evaluate (uncompiled glob, missing field) defaults to no-match
// rather than failing the request.
func (r *KeepRule) matches(ev Fields) bool {
	if r.Status != 0 {
		st, ok := ev.Int(KeyStatus)
		if !ok || st != r.Status {
			return false
		}
	}
	if r.MinDurationMS != 0 {
		d, ok := ev.Float(KeyDuration)
		if !ok || d < r.MinDurationMS {
			return false
		}
	}
	if r.Path != "" {
		if r.pathGlob == nil {
			return false
		}
		if !r.pathGlob.Match(ev.String(KeyPath)) {
			return false
		}
	}
	return true
}

// label names the rule in sampling decisions.
func (r *KeepRule) label() string {
	if r.Name != "" {
		return r.Name
	}
	switch {
	case r.Status != 0:
		return fmt.Sprintf("status=%d", r.Status)
	case r.MinDurationMS != 0:
		return fmt.Sprintf("duration>=%.0fms", r.MinDurationMS)
	default:
		return "path=" + r.Path
	}
}

// SamplingConfig is the process-wide sampling policy, read-only after
// startup. Rates map a level to a head-sampling keep percentage (0-100);
// levels without a rate always keep. KeepRules are evaluated in declaration
// order once the head stage votes drop; any match rescues the event.
type SamplingConfig struct {
	Rates     map[Level]int `json:"rates"`
	KeepRules []KeepRule    `json:"keep_rules"`
}

// Validate bounds the rates and compiles every rule. Called at startup so a
// malformed policy fails fast instead of surfacing at request time.
func (c *SamplingConfig) Validate() error {
	for level, rate := range c.Rates {
		if rate < 0 || rate > 100 {
			return fmt.Errorf("sampling rate for level %q out of range: %d", level, rate)
		}
	}
	for i := range c.KeepRules {
		if err := c.KeepRules[i].Compile(); err != nil {
			return err
		}
	}
	return nil
}

// Decision is the outcome of sampling one event. Reason explains why a kept
// event was kept: "head", "tail:<rule>" or "override".
type Decision struct {
	Keep   bool
	Reason string
}

// Override is deployment-specific keep logic consulted after head and tail
// sampling. It may rescue an event by setting Keep; an override that clears
// an existing keep vote is ignored.
type Override interface {
	Override(ev Fields, d *Decision)
}

// OverrideFunc adapts a function to the Override interface.
type OverrideFunc func(ev Fields, d *Decision)

func (f OverrideFunc) Override(ev Fields, d *Decision) { f(ev, d) }

// engine evaluates the two-stage sampling policy. The random source is
// guarded by a mutex since finalizations of concurrent requests share it.
type engine struct {
	cfg SamplingConfig

	mu   sync.Mutex
	rand *rand.Rand
}

func newEngine(cfg SamplingConfig) *engine {
	return &engine{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *engine) draw() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rand.Float64() * 100
}

// decide runs head sampling, then tail rules if the head stage voted drop.
func (e *engine) decide(ev Fields) Decision {
	rate, ok := e.cfg.Rates[ev.EventLevel()]
	if !ok {
		rate = 100
	}
	if e.draw() < float64(rate) {
		return Decision{Keep: true, Reason: "head"}
	}
	for i := range e.cfg.KeepRules {
		if e.cfg.KeepRules[i].matches(ev) {
			return Decision{Keep: true, Reason: "tail:" + e.cfg.KeepRules[i].label()}
		}
	}
	return Decision{}
}
