// Package logging builds the application's zap logger.
package logging

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config options used in creating the logger.
type Config struct {
	Env      string // "development" or "production"
	Level    string // debug, info, warn, error
	FilePath string // optional; stderr when empty
}

type ctxKey struct{}

// NewLogger returns a zap logger for cfg. Development builds use a colored
// console encoder, production builds a JSON encoder with UTC timestamps.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("unknown logging level %q: %w", cfg.Level, err)
	}

	var encoder zapcore.Encoder
	switch cfg.Env {
	case "production":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
		}
		ec.TimeKey = "@timestamp"
		ec.MessageKey = "message"
		encoder = zapcore.NewJSONEncoder(ec)
	default:
		ec := zap.NewDevelopmentEncoderConfig()
		if cfg.FilePath == "" {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(ec)
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = zapcore.Lock(f)
	}

	core := zapcore.NewCore(encoder, out, level)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
