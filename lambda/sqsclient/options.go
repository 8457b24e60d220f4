package sqsclient

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/mohae/deepcopy"
)

type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type Options struct {
	SQSClient      SQSClient
	RequestQueue   string
	ReplyQueue     string
	DefaultTimeout time.Duration
	WaitTime       time.Duration
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

var defaultOptions = &Options{
	DefaultTimeout: 30 * time.Second,
	WaitTime:       20 * time.Second,
}

func NewOptions(opts ...Option) *Options {
	o := deepcopy.Copy(defaultOptions).(*Options)
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
	return o
}

func WithSQSClient(client SQSClient) Option {
	return OptionFunc(func(o *Options) {
		o.SQSClient = client
	})
}

// WithRequestQueue sets the queue URL the Lambda consumes.
func WithRequestQueue(url string) Option {
	return OptionFunc(func(o *Options) {
		o.RequestQueue = url
	})
}

// WithReplyQueue sets the queue URL replies are read from. Without it Call
// is unavailable and only Send can be used.
func WithReplyQueue(url string) Option {
	return OptionFunc(func(o *Options) {
		o.ReplyQueue = url
	})
}

func WithDefaultTimeout(timeout time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultTimeout = timeout
	})
}

// WithWaitTime sets the long-polling wait of each receive on the reply queue.
func WithWaitTime(wait time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.WaitTime = wait
	})
}
