package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
)

// L returns the process logger. It is a no-op logger until Set is called.
func L() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Set replaces the process logger.
func Set(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// New builds a zap logger from the given options.
func New(opts ...Option) (*zap.Logger, error) {
	o := NewOptions(opts...)

	level, err := zapcore.ParseLevel(o.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if o.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = o.Encoding
	cfg.OutputPaths = o.OutputPaths
	cfg.ErrorOutputPaths = o.ErrorOutputPaths
	if o.Encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *zap.Logger {
	l, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return l
}
