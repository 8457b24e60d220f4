package server

import (
	"fmt"
	"os"

	"github.com/aura-studio/edgeworker/http"
	"github.com/aura-studio/edgeworker/lambda"
	"github.com/aura-studio/edgeworker/logger"
	yaml "gopkg.in/yaml.v2"
)

type yamlServerConfig struct {
	Mode string `yaml:"mode"`
}

type serveConfigOption struct {
	mode      string
	loggerOpt logger.Option
	httpOpt   http.ServeOption
	lambdaOpt lambda.ServeOption
}

func (o serveConfigOption) Apply(opts *Options) {
	if o.mode != "" {
		opts.Mode = o.mode
	}
	opts.Logger = append(opts.Logger, o.loggerOpt)
	opts.HTTP = append(opts.HTTP, o.httpOpt)
	opts.Lambda = append(opts.Lambda, o.lambdaOpt)
}

// WithServeConfig parses YAML bytes following edgeworker.yaml structure. The
// whole document is handed to every section owner, so one file carries
// `mode`, `logger`, `http`, `lambda`, `module` and `dispatch`.
func WithServeConfig(yamlBytes []byte) Option {
	var cfg yamlServerConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	}
	switch cfg.Mode {
	case "", ModeHTTP, ModeLambda:
	default:
		panic(fmt.Errorf("server.WithServeConfig: unknown mode %q", cfg.Mode))
	}

	return serveConfigOption{
		mode:      cfg.Mode,
		loggerOpt: logger.WithConfig(yamlBytes),
		httpOpt:   http.WithServeConfig(yamlBytes),
		lambdaOpt: lambda.WithServeConfig(yamlBytes),
	}
}

// WithServeConfigFile loads a YAML file and applies it as Option.
func WithServeConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("server.WithServeConfigFile(%s): %w", path, err))
	}
	return WithServeConfig(b)
}
