package lambda

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aura-studio/edgeworker/dispatch"
	"go.uber.org/zap"
)

// InvokeRequest is the payload of a direct Lambda invocation. Request holds a
// base64 HTTP/1.1 wire request.
type InvokeRequest struct {
	CorrelationID string `json:"correlationId,omitempty"`
	Request       string `json:"request"`
}

// InvokeResponse answers an InvokeRequest. Errors are reported in band so the
// caller always gets the correlation id back.
type InvokeResponse struct {
	CorrelationID string `json:"correlationId,omitempty"`
	Response      string `json:"response,omitempty"`
	Error         string `json:"error,omitempty"`
}

// HandleInvoke dispatches a direct invocation.
func (e *Engine) HandleInvoke(ctx context.Context, ev InvokeRequest) (InvokeResponse, error) {
	out := InvokeResponse{CorrelationID: ev.CorrelationID}

	wire, err := e.invoke(ctx, ev)
	if err != nil {
		out.Error = err.Error()
		if e.DebugMode {
			e.logger.Info("invoke failed", zap.String("correlation_id", ev.CorrelationID), zap.Error(err))
		}
	}
	if wire != nil {
		out.Response = base64.StdEncoding.EncodeToString(wire)
	}
	return out, nil
}

func (e *Engine) invoke(ctx context.Context, ev InvokeRequest) ([]byte, error) {
	if !e.IsRunning() {
		return nil, ErrStopped
	}

	wire, err := base64.StdEncoding.DecodeString(ev.Request)
	if err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	req, err := dispatch.DecodeRequest(wire)
	if err != nil {
		return nil, fmt.Errorf("decode wire request: %w", err)
	}
	if ev.CorrelationID != "" && req.Header.Get(dispatch.HeaderRequestID) == "" {
		req.Header.Set(dispatch.HeaderRequestID, ev.CorrelationID)
	}
	req = req.WithContext(ctx)

	resp, dispatchErr := e.Dispatcher.Dispatch(ctx, req)
	if resp == nil {
		return nil, dispatchErr
	}
	b, err := dispatch.EncodeResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return b, dispatchErr
}
