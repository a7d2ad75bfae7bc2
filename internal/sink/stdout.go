package sink

import (
	"os"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

// StdoutFactory creates console sinks. Registers as "stdout".
type StdoutFactory struct{}

func (StdoutFactory) Name() string { return "stdout" }

func (StdoutFactory) ConfigSpec() TypeInfo {
	return TypeInfo{
		Type:        "stdout",
		Description: "Writes kept events as JSON lines to standard output (or standard error).",
		Fields: []ConfigField{
			{Name: "stderr", Type: "bool", Required: false, Description: "Write to stderr instead of stdout"},
		},
	}
}

func (StdoutFactory) Create(cfg Config) (wideevent.Sink, error) {
	w := os.Stdout
	if cfg.boolean("stderr") {
		w = os.Stderr
	}
	return wideevent.NewStdoutSink(w), nil
}
