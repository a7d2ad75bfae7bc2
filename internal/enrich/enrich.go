// Package enrich provides the built-in enrichers wired into the wide-event
// pipeline at startup.
package enrich

import (
	"os"
	"runtime"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

// Request merges the boundary's request metadata into the event under the
// "request" key.
func Request() wideevent.Enricher {
	return wideevent.EnricherFunc(func(ev wideevent.Fields, meta wideevent.RequestMeta) {
		req := wideevent.Fields{}
		if meta.Method != "" {
			req["method"] = meta.Method
		}
		if meta.RequestID != "" {
			req["id"] = meta.RequestID
		}
		if meta.RemoteAddr != "" {
			req["remote_addr"] = meta.RemoteAddr
		}
		if meta.UserAgent != "" {
			req["user_agent"] = meta.UserAgent
		}
		if len(req) == 0 {
			return
		}
		ev["request"] = req
	})
}

// Host captures process state at finalization time: hostname, goroutine count
// and allocated memory. Useful when diagnosing slow or failing requests from
// a kept event alone.
func Host() wideevent.Enricher {
	hostname, _ := os.Hostname()
	pid := os.Getpid()
	return wideevent.EnricherFunc(func(ev wideevent.Fields, _ wideevent.RequestMeta) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		ev["host"] = wideevent.Fields{
			"name":         hostname,
			"pid":          pid,
			"goroutines":   runtime.NumGoroutine(),
			"memory_bytes": mem.Alloc,
		}
	})
}
