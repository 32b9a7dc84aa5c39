package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a zap logger configured for structured production logging.
// The "console" level prefix switches to the human readable development encoder,
// e.g. "console:debug".
func NewLogger(level string) (*zap.Logger, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))

	cfg := zap.NewProductionConfig()
	if rest, ok := strings.CutPrefix(normalized, "console:"); ok {
		cfg = zap.NewDevelopmentConfig()
		normalized = rest
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(normalized))
	cfg.InitialFields = map[string]interface{}{"service": "legalpro-api"}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
