package sink

import (
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// DefaultRegistry returns a registry with every built-in sink factory
// registered. The factory collection is assembled explicitly here so the set
// of available sink types is fixed at startup.
func DefaultRegistry(log zerolog.Logger, app *newrelic.Application) *Registry {
	r := NewRegistry()
	r.Register(StdoutFactory{})
	r.Register(FileFactory{})
	r.Register(RedisFactory{})
	r.Register(HTTPFactory{})
	r.Register(NewRelicFactory{App: app})
	r.Register(PostgresFactory{Log: log, App: app})
	return r
}
