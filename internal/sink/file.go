package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

// FileSink appends kept events as JSON lines to a size-rotated file.
type FileSink struct {
	mu  sync.Mutex
	out *lumberjack.Logger
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Write(_ context.Context, ev wideevent.Fields) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// FileFactory creates rotating-file sinks. Registers as "file".
type FileFactory struct{}

func (FileFactory) Name() string { return "file" }

func (FileFactory) ConfigSpec() TypeInfo {
	return TypeInfo{
		Type:        "file",
		Description: "Appends kept events as JSON lines to a log file with size-based rotation.",
		Fields: []ConfigField{
			{Name: "filename", Type: "string", Required: true, Description: "Path of the log file", Example: "/var/log/canopylog/events.log"},
			{Name: "max_size_mb", Type: "number", Required: false, Description: "Rotate after the file reaches this size (default 100)"},
			{Name: "max_backups", Type: "number", Required: false, Description: "Rotated files to retain (default 3)"},
			{Name: "max_age_days", Type: "number", Required: false, Description: "Days to retain rotated files"},
			{Name: "compress", Type: "bool", Required: false, Description: "Gzip rotated files"},
		},
	}
}

func (FileFactory) Create(cfg Config) (wideevent.Sink, error) {
	filename := cfg.str("filename")
	if filename == "" {
		return nil, fmt.Errorf("missing 'filename' for file sink")
	}
	out := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 3,
		Compress:   cfg.boolean("compress"),
	}
	if n, ok := cfg.num("max_size_mb"); ok && n > 0 {
		out.MaxSize = n
	}
	if n, ok := cfg.num("max_backups"); ok && n > 0 {
		out.MaxBackups = n
	}
	if n, ok := cfg.num("max_age_days"); ok && n > 0 {
		out.MaxAge = n
	}
	return &FileSink{out: out}, nil
}
