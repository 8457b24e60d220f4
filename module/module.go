package module

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const initKey = "init"

type readyEntry struct {
	ep EntryPoint
}

// Module is the process-wide handle on the compiled module. Initialization
// runs lazily, at most once concurrently, and its successful result is shared
// by every later caller.
type Module struct {
	*Options
	group   singleflight.Group
	ready   atomic.Pointer[readyEntry]
	state   atomic.Int32
	inits   atomic.Int64
	lastErr atomic.Value // string
	source  string
	logger  *zap.Logger
}

func NewModule(opts ...Option) *Module {
	m := &Module{
		Options: NewOptions(opts...),
	}
	m.logger = m.Logger
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	m.source = m.describeSource()
	return m
}

// EntryPoint returns the initialized entry point, initializing the module on
// first use. Callers arriving while initialization is in flight wait for it
// and never trigger a second one. A cancelled ctx stops this caller from
// waiting; the shared initialization keeps running for the others.
func (m *Module) EntryPoint(ctx context.Context) (EntryPoint, error) {
	if r := m.ready.Load(); r != nil {
		return r.ep, nil
	}

	initCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(initKey, func() (any, error) {
		if r := m.ready.Load(); r != nil {
			return r.ep, nil
		}
		return m.initialize(initCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(EntryPoint), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Module) initialize(ctx context.Context) (ep EntryPoint, err error) {
	m.state.Store(int32(StateInitializing))
	m.inits.Add(1)
	start := time.Now()

	defer func() {
		if v := recover(); v != nil {
			ep, err = nil, fmt.Errorf("module: panic during initialization: %v", v)
		}
		if err != nil {
			m.state.Store(int32(StateUninitialized))
			m.lastErr.Store(err.Error())
			m.logger.Error("module initialization failed",
				zap.String("source", m.source),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}
		m.ready.Store(&readyEntry{ep: ep})
		m.lastErr.Store("")
		m.state.Store(int32(StateReady))
		m.logger.Info("module initialized",
			zap.String("source", m.source),
			zap.String("entry", m.EntryPointName()),
			zap.Duration("elapsed", time.Since(start)))
	}()

	return m.load(ctx)
}

func (m *Module) load(ctx context.Context) (EntryPoint, error) {
	if m.StaticEntryPoint != nil {
		return m.StaticEntryPoint, nil
	}

	src, err := NewSource(m.Options)
	if err != nil {
		return nil, err
	}
	payload, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	init := m.Initializer
	if init == nil {
		init = NewWasmInitializer(m.Options)
	}
	ep, err := init.Initialize(ctx, payload)
	if err != nil {
		return nil, err
	}
	if ep == nil {
		return nil, fmt.Errorf("module: initializer returned no entry point")
	}
	return ep, nil
}

// Preload initializes the module eagerly. Failures are logged and left for
// the first request to retry.
func (m *Module) Preload(ctx context.Context) {
	if _, err := m.EntryPoint(ctx); err != nil {
		m.logger.Warn("module preload failed", zap.String("source", m.source), zap.Error(err))
	}
}

func (m *Module) State() State {
	return State(m.state.Load())
}

// Initializations reports how many times initialization actually ran.
func (m *Module) Initializations() int64 {
	return m.inits.Load()
}

// LastError returns the message of the most recent failed initialization,
// or "" once the module is ready.
func (m *Module) LastError() string {
	if v, ok := m.lastErr.Load().(string); ok {
		return v
	}
	return ""
}

func (m *Module) EntryPointName() string {
	if m.StaticEntryPoint != nil {
		return "static"
	}
	if m.Options.EntryPoint == "" {
		return DefaultEntryPoint
	}
	return m.Options.EntryPoint
}

func (m *Module) SourceName() string {
	return m.source
}

// Close releases the initialized entry point, if it holds resources.
func (m *Module) Close(ctx context.Context) error {
	r := m.ready.Load()
	if r == nil {
		return nil
	}
	if c, ok := r.ep.(closer); ok {
		return c.Close(ctx)
	}
	return nil
}

func (m *Module) describeSource() string {
	if m.StaticEntryPoint != nil {
		return "static"
	}
	src, err := NewSource(m.Options)
	if err != nil {
		return ""
	}
	return src.String()
}
