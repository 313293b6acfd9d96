package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

var logKey contextKey = "log"

// GetLogger returns the logger carried by ctx, falling back to the global
// logger when none is set.
func GetLogger(ctx context.Context) *zap.Logger {
	l := ctx.Value(logKey)
	if l == nil {
		return zap.L()
	}
	return l.(*zap.Logger)
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, logKey, logger)
}

// New builds a console logger writing to stderr. The level defaults to info
// and can be changed through TBPULUMI_LOG_LEVEL (any level name zap parses).
func New() *zap.Logger {
	level := zap.InfoLevel
	if v, ok := os.LookupEnv("TBPULUMI_LOG_LEVEL"); ok {
		if parsed, err := zapcore.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}
