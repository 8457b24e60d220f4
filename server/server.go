package server

import (
	"errors"
	"fmt"

	"github.com/aura-studio/edgeworker/http"
	"github.com/aura-studio/edgeworker/lambda"
	"github.com/aura-studio/edgeworker/logger"
	"go.uber.org/zap"
)

// Serve installs the process logger and serves the module on the host
// surface selected by Mode.
func Serve(opts ...Option) error {
	options := NewOptions(opts...)

	l, err := logger.New(options.Logger...)
	if err != nil {
		return err
	}
	logger.Set(l)
	defer func() { _ = l.Sync() }()

	l.Info("starting", zap.String("mode", options.Mode))

	switch options.Mode {
	case ModeLambda:
		return lambda.Serve(options.Lambda...)
	case ModeHTTP:
		return http.Serve(options.HTTP...)
	default:
		return fmt.Errorf("server: unknown mode %q", options.Mode)
	}
}

// Close stops whichever host surface is running.
func Close() error {
	return errors.Join(http.Close(), lambda.Close())
}
