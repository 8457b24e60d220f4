package client

import (
	"net/http"
	"time"

	"github.com/mohae/deepcopy"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	HTTPClient      HTTPClient
	BaseURL         string
	DefaultTimeout  time.Duration
	Headers         map[string]string
	HealthCheckPath string
	MetaPath        string
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

var defaultOptions = &Options{
	BaseURL:         "http://127.0.0.1:8080",
	DefaultTimeout:  30 * time.Second,
	Headers:         map[string]string{},
	HealthCheckPath: "/_/health-check",
	MetaPath:        "/_/meta",
}

func NewOptions(opts ...Option) *Options {
	o := deepcopy.Copy(defaultOptions).(*Options)
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return o
}

func WithHTTPClient(client HTTPClient) Option {
	return OptionFunc(func(o *Options) {
		o.HTTPClient = client
	})
}

func WithBaseURL(url string) Option {
	return OptionFunc(func(o *Options) {
		o.BaseURL = url
	})
}

func WithDefaultTimeout(timeout time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultTimeout = timeout
	})
}

func WithHeader(key, value string) Option {
	return OptionFunc(func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	})
}

func WithHealthCheckPath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.HealthCheckPath = path
	})
}

func WithMetaPath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.MetaPath = path
	})
}
