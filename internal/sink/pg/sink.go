// Package pg provides a Postgres drain sink storing kept events as JSONB
// rows, with its schema managed by embedded tern migrations.
package pg

import (
	"context"
	"encoding/json"
	"fmt"

	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/multitracer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

// Sink inserts one row per kept event into the wide_events table.
type Sink struct {
	pool *pgxpool.Pool
}

// NewSink connects a pool to databaseURL, runs pending migrations, and
// returns the sink. Query logging goes through the zerolog adapter; when a
// New Relic application is supplied its pgx instrumentation is attached too.
func NewSink(ctx context.Context, databaseURL string, log zerolog.Logger, app *newrelic.Application) (*Sink, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	tracers := []pgx.QueryTracer{
		&tracelog.TraceLog{
			Logger:   zerologadapter.NewLogger(log),
			LogLevel: tracelog.LogLevelWarn,
		},
	}
	if app != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}
	cfg.ConnConfig.Tracer = multitracer.New(tracers...)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect pool: %w", err)
	}
	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &Sink{pool: pool}, nil
}

func (s *Sink) Name() string { return "postgres" }

func (s *Sink) Write(ctx context.Context, ev wideevent.Fields) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	status, _ := ev.Int(wideevent.KeyStatus)
	duration, _ := ev.Float(wideevent.KeyDuration)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO wide_events (service, level, status, path, duration_ms, event)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.String(wideevent.KeyService),
		string(ev.EventLevel()),
		status,
		ev.String(wideevent.KeyPath),
		duration,
		payload,
	)
	return err
}

// Close releases the pool.
func (s *Sink) Close() { s.pool.Close() }
