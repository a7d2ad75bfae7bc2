package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/canopyhq/canopylog/internal/sink"
	"github.com/canopyhq/canopylog/internal/wideevent"
)

// Config is the process-wide configuration, read once at startup from
// CANOPYLOG_-prefixed environment variables. Nesting uses a double
// underscore: CANOPYLOG_SERVER__READ_TIMEOUT maps to server.read_timeout.
type Config struct {
	Primary  Primary          `koanf:"primary" validate:"required"`
	Server   ServerConfig     `koanf:"server" validate:"required"`
	Sampling SamplingSettings `koanf:"sampling"`
	Sinks    string           `koanf:"sinks"` // JSON array of sink specs
	NewRelic NewRelicConfig   `koanf:"newrelic"`
	Log      LogConfig        `koanf:"log"`
}

type Primary struct {
	Env     string `koanf:"env" validate:"required"`
	Service string `koanf:"service" validate:"required"`
}

type ServerConfig struct {
	Port         string `koanf:"port" validate:"required"`
	ReadTimeout  int    `koanf:"read_timeout" validate:"required"`
	WriteTimeout int    `koanf:"write_timeout" validate:"required"`
	IdleTimeout  int    `koanf:"idle_timeout" validate:"required"`
}

// SamplingSettings is the raw sampling surface. Rates map level names to
// head-sampling percentages; KeepRules carries the tail rule list as a JSON
// array, since a structured list does not map onto flat environment
// variables.
type SamplingSettings struct {
	Rates     map[string]int `koanf:"rates"`
	KeepRules string         `koanf:"keep_rules"`
}

type NewRelicConfig struct {
	License string `koanf:"license"`
	AppName string `koanf:"app_name"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Build converts the raw settings into a validated sampling policy,
// compiling every keep rule. A malformed policy is a startup error, never a
// request-time one.
func (s SamplingSettings) Build() (wideevent.SamplingConfig, error) {
	cfg := wideevent.SamplingConfig{}
	if len(s.Rates) > 0 {
		cfg.Rates = make(map[wideevent.Level]int, len(s.Rates))
		for name, rate := range s.Rates {
			switch level := wideevent.Level(strings.ToLower(name)); level {
			case wideevent.LevelInfo, wideevent.LevelWarn, wideevent.LevelError:
				cfg.Rates[level] = rate
			default:
				return cfg, fmt.Errorf("unknown sampling level %q", name)
			}
		}
	}
	if s.KeepRules != "" {
		if err := json.Unmarshal([]byte(s.KeepRules), &cfg.KeepRules); err != nil {
			return cfg, fmt.Errorf("parse keep rules: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SinkSpecs parses the JSON sink list. An empty value means the default
// stdout sink.
func (c *Config) SinkSpecs() ([]sink.Spec, error) {
	if c.Sinks == "" {
		return nil, nil
	}
	var specs []sink.Spec
	if err := json.Unmarshal([]byte(c.Sinks), &specs); err != nil {
		return nil, fmt.Errorf("parse sink specs: %w", err)
	}
	return specs, nil
}

func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

func (s ServerConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeout) * time.Second
}

func applyDefaults(c *Config) {
	if c.Primary.Env == "" {
		c.Primary.Env = "development"
	}
	if c.Primary.Service == "" {
		c.Primary.Service = "canopylog"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// LoadConfig loads the configuration from environment variables using koanf.
func LoadConfig() (mainConfig *Config, err error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")
	err = k.Load(env.Provider("CANOPYLOG_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CANOPYLOG_")), "__", ".")
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load initial env variables")
	}

	mainConfig = &Config{}
	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not unmarshal mainconfig")
	}

	applyDefaults(mainConfig)

	validate := validator.New()
	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not validate the struct")
	}

	return mainConfig, nil
}
