package lambda

import (
	"fmt"
	"os"

	"github.com/aura-studio/edgeworker/dispatch"
	"github.com/aura-studio/edgeworker/module"
	yaml "gopkg.in/yaml.v2"
)

type yamlLambdaConfig struct {
	Debug   bool `yaml:"debug"`
	Partial bool `yaml:"partial"`
	Reply   bool `yaml:"reply"`
}

type yamlConfig struct {
	Lambda yamlLambdaConfig `yaml:"lambda"`
}

func optionFromLambdaConfig(cfg yamlLambdaConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Debug
		o.PartialMode = cfg.Partial
		o.ReplyMode = cfg.Reply
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return optionFromLambdaConfig(cfg.Lambda), nil
}

// WithConfig parses YAML bytes following lambda.yaml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("lambda.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("lambda.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}

type serveConfigOption struct {
	err  error
	opts []ServeOption
}

// WithServeConfig parses YAML bytes following lambda.yaml structure, with
// optional `module:` and `dispatch:` sections next to `lambda:`.
func WithServeConfig(yamlBytes []byte) ServeOption {
	var probe map[string]any
	if err := yaml.Unmarshal(yamlBytes, &probe); err != nil {
		return serveConfigOption{err: fmt.Errorf("lambda.WithServeConfig: %w", err)}
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

// WithServeConfigFile loads a YAML file and applies it as ServeOption.
func WithServeConfigFile(path string) ServeOption {
	b, err := os.ReadFile(path)
	if err != nil {
		return serveConfigOption{err: fmt.Errorf("lambda.WithServeConfigFile(%s): %w", path, err)}
	}
	return WithServeConfig(b)
}
