package module

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func echoEntryPoint() EntryPoint {
	return EntryPointFunc(func(_ context.Context, wireReq []byte) ([]byte, error) {
		return wireReq, nil
	})
}

// blockingInitializer signals started on each run and waits for release.
type blockingInitializer struct {
	started chan struct{}
	release chan struct{}
	ep      EntryPoint
}

func newBlockingInitializer() *blockingInitializer {
	return &blockingInitializer{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
		ep:      echoEntryPoint(),
	}
}

func (b *blockingInitializer) Initialize(ctx context.Context, payload []byte) (EntryPoint, error) {
	b.started <- struct{}{}
	<-b.release
	return b.ep, nil
}

func TestEntryPointConcurrentCallersInitializeOnce(t *testing.T) {
	init := newBlockingInitializer()
	m := NewModule(WithPayload([]byte("payload")), WithInitializer(init))

	const n = 32
	var wg sync.WaitGroup
	results := make([]EntryPoint, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.EntryPoint(context.Background())
		}(i)
	}

	<-init.started
	assert.Equal(t, StateInitializing, m.State())
	close(init.release)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
	}
	assert.Equal(t, int64(1), m.Initializations())
	assert.Equal(t, StateReady, m.State())

	_, err := m.EntryPoint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Initializations())
}

func TestEntryPointRetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	init := InitializerFunc(func(ctx context.Context, payload []byte) (EntryPoint, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boom")
		}
		return echoEntryPoint(), nil
	})
	m := NewModule(WithPayload([]byte("payload")), WithInitializer(init))

	_, err := m.EntryPoint(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateUninitialized, m.State())
	assert.Equal(t, "boom", m.LastError())
	assert.Equal(t, "boom", gjson.Get(m.Meta(), "module.lastError").String())

	ep, err := m.EntryPoint(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ep)
	assert.Equal(t, StateReady, m.State())
	assert.Equal(t, int64(2), m.Initializations())
	assert.Empty(t, m.LastError())
}

func TestEntryPointWaiterCancelDoesNotAbortInit(t *testing.T) {
	init := newBlockingInitializer()
	m := NewModule(WithPayload([]byte("payload")), WithInitializer(init))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.EntryPoint(ctx)
		done <- err
	}()

	<-init.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled waiter did not return")
	}

	close(init.release)
	ep, err := m.EntryPoint(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ep)
	assert.Equal(t, int64(1), m.Initializations())
}

func TestEntryPointRecoversInitializerPanic(t *testing.T) {
	init := InitializerFunc(func(ctx context.Context, payload []byte) (EntryPoint, error) {
		panic("bad payload")
	})
	m := NewModule(WithPayload([]byte("payload")), WithInitializer(init))

	_, err := m.EntryPoint(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad payload")
	assert.Equal(t, StateUninitialized, m.State())
}

func TestEntryPointWithoutSource(t *testing.T) {
	m := NewModule()
	_, err := m.EntryPoint(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestStaticEntryPoint(t *testing.T) {
	m := NewModule(WithStaticEntryPoint(echoEntryPoint()))

	ep, err := m.EntryPoint(context.Background())
	require.NoError(t, err)
	out, err := ep.Invoke(context.Background(), []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, "ping", string(out))
	assert.Equal(t, "static", m.EntryPointName())
	assert.Equal(t, "static", m.SourceName())
}

func TestPreloadFailureIsNotFatal(t *testing.T) {
	m := NewModule(WithSource("/does/not/exist.wasm"))
	m.Preload(context.Background())
	assert.Equal(t, StateUninitialized, m.State())
	assert.NotEmpty(t, m.LastError())
}

func TestMeta(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "shop-edge-wasm-api-prod")
	m := NewModule(WithSource("s3://bucket/app.wasm"))

	meta := m.Meta()
	require.True(t, gjson.Valid(meta))
	assert.Equal(t, "shop", gjson.Get(meta, "service.business").String())
	assert.Equal(t, "prod", gjson.Get(meta, "service.instance").String())
	assert.Equal(t, "s3://bucket/app.wasm", gjson.Get(meta, "module.source").String())
	assert.Equal(t, DefaultEntryPoint, gjson.Get(meta, "module.entry").String())
	assert.Equal(t, "uninitialized", gjson.Get(meta, "module.state").String())
	assert.Equal(t, int64(0), gjson.Get(meta, "module.initializations").Int())
	assert.False(t, gjson.Get(meta, "module.lastError").Exists())
}

type closingEntryPoint struct {
	EntryPoint
	closed bool
}

func (c *closingEntryPoint) Close(context.Context) error {
	c.closed = true
	return nil
}

func TestCloseReleasesEntryPoint(t *testing.T) {
	ep := &closingEntryPoint{EntryPoint: echoEntryPoint()}
	m := NewModule(WithStaticEntryPoint(ep))

	require.NoError(t, m.Close(context.Background()))
	assert.False(t, ep.closed)

	_, err := m.EntryPoint(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Close(context.Background()))
	assert.True(t, ep.closed)
}
