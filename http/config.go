package http

import (
	"fmt"
	"os"

	"github.com/aura-studio/edgeworker/dispatch"
	"github.com/aura-studio/edgeworker/module"
	yaml "gopkg.in/yaml.v2"
)

type yamlConfig struct {
	HTTP struct {
		Address         string  `yaml:"address"`
		Debug           bool    `yaml:"debug"`
		Cors            bool    `yaml:"cors"`
		HealthCheckPath *string `yaml:"healthCheckPath"`
		MetaPath        *string `yaml:"metaPath"`
		MetricsPath     *string `yaml:"metricsPath"`
	} `yaml:"http"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return HttpOption(func(o *Options) {
		if cfg.HTTP.Address != "" {
			o.Address = cfg.HTTP.Address
		}
		o.DebugMode = cfg.HTTP.Debug
		o.CorsMode = cfg.HTTP.Cors
		if cfg.HTTP.HealthCheckPath != nil {
			o.HealthCheckPath = *cfg.HTTP.HealthCheckPath
		}
		if cfg.HTTP.MetaPath != nil {
			o.MetaPath = *cfg.HTTP.MetaPath
		}
		if cfg.HTTP.MetricsPath != nil {
			o.MetricsPath = *cfg.HTTP.MetricsPath
		}
	}), nil
}

// WithConfig parses YAML bytes following http.yaml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("http.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("http.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}

// serveConfigOption carries every section of one http.yaml: the http section
// itself plus the embedded module and dispatch sections.
type serveConfigOption struct {
	err  error
	opts []ServeOption
}

// WithServeConfig parses YAML bytes and returns a ServeOption covering the
// http, module and dispatch sections.
func WithServeConfig(yamlBytes []byte) ServeOption {
	var probe map[string]any
	if err := yaml.Unmarshal(yamlBytes, &probe); err != nil {
		return serveConfigOption{err: fmt.Errorf("http.WithServeConfig: %w", err)}
	}

	opts := []ServeOption{WithConfig(yamlBytes)}
	if _, ok := probe["module"]; ok {
		opts = append(opts, module.WithConfig(yamlBytes))
	}
	if _, ok := probe["dispatch"]; ok {
		opts = append(opts, dispatch.WithConfig(yamlBytes))
	}
	return serveConfigOption{opts: opts}
}

// WithServeConfigFile loads a YAML file as a ServeOption.
func WithServeConfigFile(path string) ServeOption {
	b, err := os.ReadFile(path)
	if err != nil {
		return serveConfigOption{err: fmt.Errorf("http.WithServeConfigFile(%s): %w", path, err)}
	}
	return WithServeConfig(b)
}
