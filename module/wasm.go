package module

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"
)

// WasmInitializer compiles a WASI preview1 module with wazero.
//
// Guest ABI: every invocation runs a fresh instance whose stdin carries the
// wire request and whose stdout must carry the wire response. The entry
// export runs as the start function; exit code 0 is success.
type WasmInitializer struct {
	EntryPoint       string
	MemoryLimitPages uint32
	Logger           *zap.Logger
}

func NewWasmInitializer(o *Options) *WasmInitializer {
	return &WasmInitializer{
		EntryPoint:       o.EntryPoint,
		MemoryLimitPages: o.MemoryLimitPages,
		Logger:           o.Logger,
	}
}

func (w *WasmInitializer) Initialize(ctx context.Context, payload []byte) (EntryPoint, error) {
	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if w.MemoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(w.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("module: instantiate wasi: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, payload)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("module: compile: %w", err)
	}

	entry := w.EntryPoint
	if entry == "" {
		entry = DefaultEntryPoint
	}
	if _, ok := compiled.ExportedFunctions()[entry]; !ok {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("module: entry point %q not exported", entry)
	}

	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &wasmEntryPoint{
		runtime:  rt,
		compiled: compiled,
		entry:    entry,
		logger:   logger,
	}, nil
}

type wasmEntryPoint struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	entry    string
	logger   *zap.Logger
}

func (e *wasmEntryPoint) Invoke(ctx context.Context, wireReq []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStdin(bytes.NewReader(wireReq)).
		WithStdout(&stdout).
		WithStderr(&stderr).
		WithStartFunctions(e.entry).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)

	mod, err := e.runtime.InstantiateModule(ctx, e.compiled, cfg)
	if mod != nil {
		defer mod.Close(context.WithoutCancel(ctx))
	}

	if stderr.Len() > 0 {
		e.logger.Debug("guest stderr", zap.String("entry", e.entry), zap.ByteString("output", stderr.Bytes()))
	}

	if err != nil {
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 0 {
			return nil, fmt.Errorf("module: entry point %q: %w", e.entry, err)
		}
	}

	return stdout.Bytes(), nil
}

func (e *wasmEntryPoint) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
