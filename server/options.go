package server

import (
	"os"

	"github.com/aura-studio/edgeworker/dispatch"
	"github.com/aura-studio/edgeworker/http"
	"github.com/aura-studio/edgeworker/lambda"
	"github.com/aura-studio/edgeworker/logger"
	"github.com/aura-studio/edgeworker/module"
)

const (
	ModeHTTP   = "http"
	ModeLambda = "lambda"
)

type Option interface {
	Apply(*Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Mode   string
	Logger []logger.Option
	HTTP   []http.ServeOption
	Lambda []lambda.ServeOption
}

func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
	if o.Mode == "" {
		o.Mode = DetectMode()
	}
	return o
}

// DetectMode reports lambda when the process runs under the Lambda runtime
// and http otherwise.
func DetectMode() string {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		return ModeLambda
	}
	return ModeHTTP
}

func WithMode(mode string) Option {
	return OptionFunc(func(o *Options) {
		o.Mode = mode
	})
}

func WithLoggerOptions(opts ...logger.Option) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = append(o.Logger, opts...)
	})
}

func WithHTTPOptions(opts ...http.ServeOption) Option {
	return OptionFunc(func(o *Options) {
		o.HTTP = append(o.HTTP, opts...)
	})
}

func WithLambdaOptions(opts ...lambda.ServeOption) Option {
	return OptionFunc(func(o *Options) {
		o.Lambda = append(o.Lambda, opts...)
	})
}

// WithModuleOptions applies module options to whichever host surface is served.
func WithModuleOptions(opts ...module.Option) Option {
	return OptionFunc(func(o *Options) {
		for _, opt := range opts {
			o.HTTP = append(o.HTTP, opt)
			o.Lambda = append(o.Lambda, opt)
		}
	})
}

// WithDispatchOptions applies dispatch options to whichever host surface is served.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return OptionFunc(func(o *Options) {
		for _, opt := range opts {
			o.HTTP = append(o.HTTP, opt)
			o.Lambda = append(o.Lambda, opt)
		}
	})
}
