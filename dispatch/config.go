package dispatch

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlConfig struct {
	Dispatch struct {
		ExposeErrors bool `yaml:"exposeErrors"`
		DiagBuffer   *int `yaml:"diagBuffer"`
	} `yaml:"dispatch"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return OptionFunc(func(o *Options) {
		o.ExposeErrors = cfg.Dispatch.ExposeErrors
		if cfg.Dispatch.DiagBuffer != nil {
			o.DiagBuffer = *cfg.Dispatch.DiagBuffer
		}
	}), nil
}

// WithConfig parses YAML bytes with a top-level `dispatch:` section.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("dispatch.WithConfig: %w", err))
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
			panic(fmt.Errorf("dispatch.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
