package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	mu     sync.Mutex
	srv    *http.Server
	engine *Engine
)

// Serve builds an Engine from opts and serves it until Close is called.
func Serve(opts ...ServeOption) error {
	e := NewEngine(opts...)

	mu.Lock()
	engine = e
	srv = &http.Server{
		Addr:    e.Address,
		Handler: e.Engine,
	}
	s := srv
	mu.Unlock()

	if e.Module.Options.Preload {
		go e.Module.Preload(context.Background())
	}

	e.logger.Info("http server listening", zap.String("address", e.Address), zap.String("module", e.Module.SourceName()))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully and releases the module.
func Close() error {
	mu.Lock()
	s, e := srv, engine
	srv, engine = nil, nil
	mu.Unlock()

	if s == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		return err
	}

	e.Dispatcher.Close()
	return e.Module.Close(ctx)
}
