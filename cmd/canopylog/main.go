package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/canopyhq/canopylog/internal/config"
	"github.com/canopyhq/canopylog/internal/enrich"
	"github.com/canopyhq/canopylog/internal/server"
	"github.com/canopyhq/canopylog/internal/sink"
	"github.com/canopyhq/canopylog/internal/wideevent"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", cfg.Primary.Service).
		Str("env", cfg.Primary.Env).
		Logger().Level(level)

	var app *newrelic.Application
	if cfg.NewRelic.License != "" {
		appName := cfg.NewRelic.AppName
		if appName == "" {
			appName = cfg.Primary.Service
		}
		app, err = newrelic.NewApplication(
			newrelic.ConfigAppName(appName),
			newrelic.ConfigLicense(cfg.NewRelic.License),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("new relic agent")
		}
	}

	sampling, err := cfg.Sampling.Build()
	if err != nil {
		logger.Fatal().Err(err).Msg("sampling config")
	}

	registry := sink.DefaultRegistry(logger, app)
	specs, err := cfg.SinkSpecs()
	if err != nil {
		logger.Fatal().Err(err).Msg("sink config")
	}
	sinks, err := registry.Build(specs)
	if err != nil {
		logger.Fatal().Err(err).Msg("build sinks")
	}
	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	if len(names) == 0 {
		names = []string{"stdout"}
	}

	core, err := wideevent.NewCore(wideevent.Config{
		Service:   cfg.Primary.Service,
		Sampling:  sampling,
		Enrichers: []wideevent.Enricher{enrich.Request(), enrich.Host()},
		Sinks:     sinks,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("wide event core")
	}

	srv := server.New(cfg, core, registry, names, logger)
	registerDemoRoutes(srv.Echo)
	logger.Info().Str("port", cfg.Server.Port).Strs("sinks", names).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
