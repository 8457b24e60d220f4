package http

import (
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
)

type Option interface {
	Apply(o *Options)
}

type HttpOption func(*Options)

func (f HttpOption) Apply(o *Options) { f(o) }

type Options struct {
	Address         string
	DebugMode       bool
	CorsMode        bool
	HealthCheckPath string
	MetaPath        string
	MetricsPath     string
	Logger          *zap.Logger
}

var defaultOptions = &Options{
	Address:         ":8080",
	DebugMode:       false,
	CorsMode:        false,
	HealthCheckPath: "/_/health-check",
	MetaPath:        "/_/meta",
	MetricsPath:     "",
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

func WithAddress(addr string) Option {
	return HttpOption(func(o *Options) {
		o.Address = addr
	})
}

func WithDebugMode() Option {
	return HttpOption(func(o *Options) {
		o.DebugMode = true
	})
}

func WithCors() Option {
	return HttpOption(func(o *Options) {
		o.CorsMode = true
	})
}

// WithHealthCheckPath moves the health check route. An empty path removes it
// and leaves the path to the module.
func WithHealthCheckPath(path string) Option {
	return HttpOption(func(o *Options) {
		o.HealthCheckPath = path
	})
}

func WithMetaPath(path string) Option {
	return HttpOption(func(o *Options) {
		o.MetaPath = path
	})
}

// WithMetricsPath exposes the Prometheus endpoint at path.
func WithMetricsPath(path string) Option {
	return HttpOption(func(o *Options) {
		o.MetricsPath = path
	})
}

func WithLogger(l *zap.Logger) Option {
	return HttpOption(func(o *Options) {
		o.Logger = l
	})
}
