package dispatch

import (
	"github.com/mohae/deepcopy"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	// ExposeErrors writes the failure cause into the failure response body.
	ExposeErrors bool
	// DiagBuffer bounds the diagnostic queue. Zero disables diagnostics.
	DiagBuffer int
	Logger     *zap.Logger
	Registerer prometheus.Registerer
}

var defaultOptions = &Options{
	ExposeErrors: false,
	DiagBuffer:   256,
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

func WithExposeErrors(expose bool) Option {
	return OptionFunc(func(o *Options) {
		o.ExposeErrors = expose
	})
}

func WithDiagBuffer(size int) Option {
	return OptionFunc(func(o *Options) {
		o.DiagBuffer = size
	})
}

func WithLogger(l *zap.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = l
	})
}

// WithRegisterer registers the dispatcher metrics with reg instead of a
// private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return OptionFunc(func(o *Options) {
		o.Registerer = reg
	})
}
