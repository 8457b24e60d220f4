package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aura-studio/edgeworker/module"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-Id"

// Dispatcher answers inbound requests with the module's entry point. Every
// request is encoded in wire form, handed to the entry point and the wire
// output decoded back into the response value, unchanged.
type Dispatcher struct {
	*Options
	module   *module.Module
	metrics  *Metrics
	recorder *Recorder
	logger   *zap.Logger
}

func NewDispatcher(m *module.Module, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		Options: NewOptions(opts...),
		module:  m,
	}

	d.logger = d.Logger
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	d.metrics = NewMetrics(d.Registerer)
	if d.DiagBuffer > 0 {
		d.recorder = NewRecorder(d.DiagBuffer, d.logger, d.metrics.dropped.Inc)
	}

	return d
}

type result struct {
	resp *http.Response
	err  error
}

// Dispatch produces the response for r.
//
// On a failure the returned response is the failure response and err names
// the failure kind. When ctx is done before a response exists the result is
// (nil, ErrAbandoned) and nothing should be written back.
func (d *Dispatcher) Dispatch(ctx context.Context, r *http.Request) (*http.Response, error) {
	start := time.Now()
	rec := Record{
		RequestID: requestID(r),
		Method:    r.Method,
		Path:      r.URL.Path,
	}

	wire, err := encodeRequest(r)
	if err != nil {
		return d.finish(r, rec, start, nil, fmt.Errorf("%w: %w", ErrEntry, err))
	}

	done := make(chan result, 1)
	go func() {
		resp, err := d.invoke(ctx, r, wire)
		done <- result{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() != nil {
			return d.abandon(rec, start, ctx.Err())
		}
		return d.finish(r, rec, start, res.resp, res.err)
	case <-ctx.Done():
		return d.abandon(rec, start, ctx.Err())
	}
}

func (d *Dispatcher) invoke(ctx context.Context, r *http.Request, wire []byte) (*http.Response, error) {
	ep, err := d.module.EntryPoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	var out []byte
	err = doSafe(func() error {
		var err error
		out, err = ep.Invoke(ctx, wire)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrPanic) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrEntry, err)
	}

	resp, err := decodeResponse(out, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return resp, nil
}

func (d *Dispatcher) finish(r *http.Request, rec Record, start time.Time, resp *http.Response, err error) (*http.Response, error) {
	if err != nil {
		d.metrics.failure(err)
		resp = failureResponse(r, err, d.ExposeErrors)
		if pe := (*panicError)(nil); errors.As(err, &pe) {
			d.logger.Error("entry point panicked",
				zap.String("request_id", rec.RequestID),
				zap.Any("panic", pe.value),
				zap.ByteString("stack", pe.stack))
		}
	}

	elapsed := time.Since(start)
	d.metrics.observe(resp.StatusCode, elapsed)

	rec.Status = resp.StatusCode
	rec.Size = resp.ContentLength
	rec.Duration = elapsed
	rec.Err = err
	d.record(rec)

	return resp, err
}

func (d *Dispatcher) abandon(rec Record, start time.Time, cause error) (*http.Response, error) {
	d.metrics.abandoned.Inc()
	rec.Duration = time.Since(start)
	rec.Err = cause
	d.record(rec)
	return nil, fmt.Errorf("%w: %w", ErrAbandoned, cause)
}

func (d *Dispatcher) record(rec Record) {
	if d.recorder != nil {
		d.recorder.Record(rec)
	}
}

func (d *Dispatcher) Module() *module.Module {
	return d.module
}

func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Handler returns the metrics endpoint handler.
func (d *Dispatcher) Handler() http.Handler {
	return d.metrics.Handler()
}

// Close flushes pending diagnostic records.
func (d *Dispatcher) Close() {
	if d.recorder != nil {
		d.recorder.Close()
	}
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}
