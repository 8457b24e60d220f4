package logger

import (
	"fmt"

	"github.com/mohae/deepcopy"
	yaml "gopkg.in/yaml.v2"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Level            string
	Encoding         string
	Development      bool
	OutputPaths      []string
	ErrorOutputPaths []string
}

var defaultOptions = &Options{
	Level:            "info",
	Encoding:         "json",
	Development:      false,
	OutputPaths:      []string{"stderr"},
	ErrorOutputPaths: []string{"stderr"},
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

func WithLevel(level string) Option {
	return OptionFunc(func(o *Options) {
		o.Level = level
	})
}

func WithEncoding(encoding string) Option {
	return OptionFunc(func(o *Options) {
		o.Encoding = encoding
	})
}

func WithDevelopment() Option {
	return OptionFunc(func(o *Options) {
		o.Development = true
	})
}

func WithOutputPaths(paths ...string) Option {
	return OptionFunc(func(o *Options) {
		o.OutputPaths = paths
	})
}

type yamlConfig struct {
	Logger struct {
		Level       string   `yaml:"level"`
		Encoding    string   `yaml:"encoding"`
		Development bool     `yaml:"development"`
		Output      []string `yaml:"output"`
	} `yaml:"logger"`
}

// WithConfig parses YAML bytes with a top-level `logger:` section and applies
// it to Options. It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	var cfg yamlConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("logger.WithConfig: %w", err))
		})
	}
	return OptionFunc(func(o *Options) {
		if cfg.Logger.Level != "" {
			o.Level = cfg.Logger.Level
		}
		if cfg.Logger.Encoding != "" {
			o.Encoding = cfg.Logger.Encoding
		}
		o.Development = cfg.Logger.Development
		if len(cfg.Logger.Output) > 0 {
			o.OutputPaths = cfg.Logger.Output
		}
	})
}
