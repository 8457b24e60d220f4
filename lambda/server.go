package lambda

import (
	"context"
	"sync"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

var (
	mu     sync.Mutex
	engine *Engine
)

// Serve runs the Engine as the Lambda handler. It does not return while the
// Lambda runtime is alive.
func Serve(opts ...ServeOption) error {
	e := NewEngine(opts...)

	mu.Lock()
	engine = e
	mu.Unlock()

	if e.Module.Options.Preload {
		e.Module.Preload(context.Background())
	}

	awslambda.Start(e.Invoke)
	return nil
}

// Close stops accepting events and flushes diagnostics.
func Close() error {
	mu.Lock()
	e := engine
	engine = nil
	mu.Unlock()

	if e == nil {
		return nil
	}
	e.Stop()
	e.Dispatcher.Close()
	return e.Module.Close(context.Background())
}
