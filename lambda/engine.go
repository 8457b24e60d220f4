package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aura-studio/edgeworker/dispatch"
	"github.com/aura-studio/edgeworker/logger"
	"github.com/aura-studio/edgeworker/module"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedEvent = errors.New("lambda: unsupported event")
	ErrStopped          = errors.New("lambda: engine is stopped")
)

type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type EventKind int

const (
	EventUnknown EventKind = iota
	EventAPIGatewayV2
	EventAPIGatewayV1
	EventSQS
	EventInvoke
)

func (k EventKind) String() string {
	switch k {
	case EventAPIGatewayV2:
		return "apigateway-v2"
	case EventAPIGatewayV1:
		return "apigateway-v1"
	case EventSQS:
		return "sqs"
	case EventInvoke:
		return "invoke"
	default:
		return "unknown"
	}
}

// DetectEvent classifies a raw Lambda event payload.
func DetectEvent(payload []byte) EventKind {
	switch {
	case gjson.GetBytes(payload, "requestContext.http.method").Exists():
		return EventAPIGatewayV2
	case gjson.GetBytes(payload, "httpMethod").Exists():
		return EventAPIGatewayV1
	case gjson.GetBytes(payload, "Records.0.eventSource").String() == "aws:sqs":
		return EventSQS
	case gjson.GetBytes(payload, "request").Type == gjson.String:
		return EventInvoke
	default:
		return EventUnknown
	}
}

type Engine struct {
	*Options
	*module.Module
	*dispatch.Dispatcher
	running atomic.Int32
	logger  *zap.Logger

	sqsOnce   sync.Once
	sqsClient SQSClient
	sqsErr    error
}

func NewEngine(opts ...ServeOption) *Engine {
	bag := &serveOptionBag{}
	bag.apply(opts...)

	options := NewOptions(bag.lambda...)
	l := options.Logger
	if l == nil {
		l = logger.L()
	}
	l = l.Named("lambda")

	m := module.NewModule(append([]module.Option{module.WithLogger(l)}, bag.module...)...)
	d := dispatch.NewDispatcher(m, append([]dispatch.Option{dispatch.WithLogger(l)}, bag.dispatch...)...)

	e := &Engine{
		Options:    options,
		Module:     m,
		Dispatcher: d,
		logger:     l,
	}
	e.running.Store(1)
	return e
}

func (e *Engine) Start() {
	e.running.Store(1)
}

func (e *Engine) Stop() {
	e.running.Store(0)
}

func (e *Engine) IsRunning() bool {
	return e.running.Load() == 1
}

// Invoke is the Lambda handler. The event kind decides the response shape.
func (e *Engine) Invoke(ctx context.Context, payload json.RawMessage) (any, error) {
	kind := DetectEvent(payload)
	if e.DebugMode {
		e.logger.Info("event", zap.Stringer("kind", kind), zap.Int("size", len(payload)))
	}

	switch kind {
	case EventAPIGatewayV2:
		var ev events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("lambda: decode %s event: %w", kind, err)
		}
		return e.HandleAPIGatewayV2(ctx, ev)
	case EventAPIGatewayV1:
		var ev events.APIGatewayProxyRequest
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("lambda: decode %s event: %w", kind, err)
		}
		return e.HandleAPIGatewayV1(ctx, ev)
	case EventSQS:
		var ev events.SQSEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("lambda: decode %s event: %w", kind, err)
		}
		return e.HandleSQS(ctx, ev)
	case EventInvoke:
		var ev InvokeRequest
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("lambda: decode %s event: %w", kind, err)
		}
		return e.HandleInvoke(ctx, ev)
	default:
		return nil, ErrUnsupportedEvent
	}
}

func (e *Engine) replyClient(ctx context.Context) (SQSClient, error) {
	if e.SQSClient != nil {
		return e.SQSClient, nil
	}
	e.sqsOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			e.sqsErr = fmt.Errorf("lambda: load aws config: %w", err)
			return
		}
		e.sqsClient = sqs.NewFromConfig(cfg)
	})
	return e.sqsClient, e.sqsErr
}
