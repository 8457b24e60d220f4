package module

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlConfig struct {
	Module struct {
		Source           string `yaml:"source"`
		EntryPoint       string `yaml:"entryPoint"`
		MemoryLimitPages uint32 `yaml:"memoryLimitPages"`
		Preload          bool   `yaml:"preload"`
		S3Region         string `yaml:"s3Region"`
	} `yaml:"module"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return OptionFunc(func(o *Options) {
		if cfg.Module.Source != "" {
			o.Source = cfg.Module.Source
		}
		if cfg.Module.EntryPoint != "" {
			o.EntryPoint = cfg.Module.EntryPoint
		}
		o.MemoryLimitPages = cfg.Module.MemoryLimitPages
		o.Preload = cfg.Module.Preload
		if cfg.Module.S3Region != "" {
			o.S3Region = cfg.Module.S3Region
		}
	}), nil
}

// WithConfig parses YAML bytes following module.yaml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("module.WithConfig: %w", err))
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
			panic(fmt.Errorf("module.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
