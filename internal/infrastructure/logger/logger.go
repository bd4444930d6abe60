package logger

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

var (
	Info  *log.Logger
	Error *log.Logger
	Debug *log.Logger
	Warn  *log.Logger

	root hclog.Logger
)

type Config struct {
	Level  string // "debug" | "info" | "warn" | "error"
	Format string // "text" | "json"
	Output io.Writer
}

func init() {
	Setup(Config{Level: "info"})
}

// Setup rebuilds the package loggers. Each *log.Logger is pinned to one hclog level,
// so call sites keep the plain Printf API.
func Setup(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	root = hclog.New(&hclog.LoggerOptions{
		Name:            "segbench",
		Level:           hclog.LevelFromString(strings.ToLower(cfg.Level)),
		Output:          out,
		JSONFormat:      strings.EqualFold(cfg.Format, "json"),
		IncludeLocation: true,
		TimeFormat:      "2006-01-02T15:04:05.000Z0700",
	})

	Info = standard(hclog.Info)
	Error = standard(hclog.Error)
	Debug = standard(hclog.Debug)
	Warn = standard(hclog.Warn)
}

func standard(level hclog.Level) *log.Logger {
	return root.StandardLogger(&hclog.StandardLoggerOptions{ForceLevel: level})
}
