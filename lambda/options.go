package lambda

import (
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	SQSClient SQSClient
	// PartialMode reports failed SQS records individually instead of failing
	// the whole batch.
	PartialMode bool
	// ReplyMode sends each SQS response to the queue named by the record's
	// ReplyTo attribute.
	ReplyMode bool
	DebugMode bool
	Logger    *zap.Logger
}

var defaultOptions = &Options{
	SQSClient:   nil,
	PartialMode: false,
	ReplyMode:   false,
	DebugMode:   false,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

func WithSQSClient(client SQSClient) Option {
	return OptionFunc(func(o *Options) {
		o.SQSClient = client
	})
}

func WithPartialMode(partial bool) Option {
	return OptionFunc(func(o *Options) {
		o.PartialMode = partial
	})
}

func WithReplyMode(reply bool) Option {
	return OptionFunc(func(o *Options) {
		o.ReplyMode = reply
	})
}

func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

func WithLogger(l *zap.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = l
	})
}
