package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

const defaultStream = "canopylog:events"

// RedisSink appends kept events to a Redis stream, from where downstream
// consumers (aggregators, archivers) can read them at their own pace.
type RedisSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Write(ctx context.Context, ev wideevent.Fields) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"event": payload},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisSink) Close() error { return s.client.Close() }

// RedisFactory creates Redis stream sinks. Registers as "redis".
type RedisFactory struct{}

func (RedisFactory) Name() string { return "redis" }

func (RedisFactory) ConfigSpec() TypeInfo {
	return TypeInfo{
		Type:        "redis",
		Description: "Appends kept events to a Redis stream via XADD.",
		Fields: []ConfigField{
			{Name: "addr", Type: "string", Required: true, Description: "Redis host:port", Example: "localhost:6379"},
			{Name: "stream", Type: "string", Required: false, Description: "Stream key (default " + defaultStream + ")"},
			{Name: "password", Type: "string", Required: false, Description: "Redis AUTH password"},
			{Name: "db", Type: "number", Required: false, Description: "Redis database number"},
			{Name: "max_len", Type: "number", Required: false, Description: "Approximate stream length cap"},
		},
	}
}

func (RedisFactory) Create(cfg Config) (wideevent.Sink, error) {
	addr := cfg.str("addr")
	if addr == "" {
		return nil, fmt.Errorf("missing 'addr' for redis sink")
	}
	opts := &redis.Options{Addr: addr, Password: cfg.str("password")}
	if db, ok := cfg.num("db"); ok {
		opts.DB = db
	}
	stream := cfg.str("stream")
	if stream == "" {
		stream = defaultStream
	}
	s := &RedisSink{client: redis.NewClient(opts), stream: stream}
	if n, ok := cfg.num("max_len"); ok && n > 0 {
		s.maxLen = int64(n)
	}
	return s, nil
}
