package obs

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger builds the process logger: tinted console output for dev
// and local runs, JSON lines otherwise. Debug level can be forced with
// LOG_DEBUG=1 regardless of env.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if v, ok := os.LookupEnv("LOG_DEBUG"); ok && v != "0" && !strings.EqualFold(v, "false") {
		level = slog.LevelDebug
	}
	if env == "dev" || env == "local" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}))
}
