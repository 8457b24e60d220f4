package module

import (
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
)

const DefaultEntryPoint = "_start"

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Source           string
	EntryPoint       string
	MemoryLimitPages uint32
	Preload          bool
	S3Region         string
	Payload          []byte
	StaticEntryPoint EntryPoint
	Initializer      Initializer
	Logger           *zap.Logger
}

var defaultOptions = &Options{
	Source:           "",
	EntryPoint:       DefaultEntryPoint,
	MemoryLimitPages: 0,
	Preload:          false,
	S3Region:         "",
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

// WithSource sets where the compiled payload is fetched from: a local path,
// a file:// URI or an s3://bucket/key URI.
func WithSource(source string) Option {
	return OptionFunc(func(o *Options) {
		o.Source = source
	})
}

// WithPayload provides the compiled payload inline. It takes precedence over Source.
func WithPayload(payload []byte) Option {
	return OptionFunc(func(o *Options) {
		o.Payload = payload
	})
}

func WithEntryPoint(name string) Option {
	return OptionFunc(func(o *Options) {
		o.EntryPoint = name
	})
}

func WithMemoryLimitPages(pages uint32) Option {
	return OptionFunc(func(o *Options) {
		o.MemoryLimitPages = pages
	})
}

func WithPreload(preload bool) Option {
	return OptionFunc(func(o *Options) {
		o.Preload = preload
	})
}

func WithS3Region(region string) Option {
	return OptionFunc(func(o *Options) {
		o.S3Region = region
	})
}

// WithStaticEntryPoint registers an in-process entry point. Initialization then
// skips fetching and compiling a payload.
func WithStaticEntryPoint(ep EntryPoint) Option {
	return OptionFunc(func(o *Options) {
		o.StaticEntryPoint = ep
	})
}

// WithInitializer replaces the wasm initializer.
func WithInitializer(init Initializer) Option {
	return OptionFunc(func(o *Options) {
		o.Initializer = init
	})
}

func WithLogger(l *zap.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = l
	})
}
