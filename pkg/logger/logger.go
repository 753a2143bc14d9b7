package logger

import (
	"context"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey string

const LoggerKey loggerKey = "logger"

// Run builds the process-wide sugared logger. The level string comes
// from LOG_LEVEL ("debug", "info", "warn", "error", "fatal"); anything
// unparsable falls back to info.
func Run(level string) *zap.SugaredLogger {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		log.Fatalln("logger: can't build zap logger:", err)
	}
	return l.Sugar()
}

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, LoggerKey, l)
}

// Log returns the request-scoped logger, or a no-op logger when the
// context carries none (e.g. in tests calling handlers directly).
func Log(ctx context.Context) *zap.SugaredLogger {
	l, ok := ctx.Value(LoggerKey).(*zap.SugaredLogger)
	if !ok || l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
