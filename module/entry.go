package module

import "context"

// EntryPoint is the "main" capability exposed by the compiled module. It takes
// an HTTP/1.1 wire request and returns an HTTP/1.1 wire response.
type EntryPoint interface {
	Invoke(ctx context.Context, wireReq []byte) ([]byte, error)
}

// EntryPointFunc adapts an ordinary function to EntryPoint.
type EntryPointFunc func(ctx context.Context, wireReq []byte) ([]byte, error)

func (f EntryPointFunc) Invoke(ctx context.Context, wireReq []byte) ([]byte, error) {
	return f(ctx, wireReq)
}

// Initializer turns a compiled payload into a ready EntryPoint.
type Initializer interface {
	Initialize(ctx context.Context, payload []byte) (EntryPoint, error)
}

type InitializerFunc func(ctx context.Context, payload []byte) (EntryPoint, error)

func (f InitializerFunc) Initialize(ctx context.Context, payload []byte) (EntryPoint, error) {
	return f(ctx, payload)
}

type closer interface {
	Close(ctx context.Context) error
}
