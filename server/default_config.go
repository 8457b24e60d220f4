package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aura-studio/edgeworker/http"
	"github.com/aura-studio/edgeworker/lambda"
	"github.com/aura-studio/edgeworker/module"
)

// DefaultServeConfigCandidates returns relative paths that will be checked (in order)
// when searching for a default server config.
func DefaultServeConfigCandidates() []string {
	return []string{
		"edgeworker.yaml",
		"edgeworker.yml",
		"server.yaml",
		"server.yml",
		"app.yaml",
		"app.yml",
		"config.yaml",
		"config.yml",
	}
}

// DefaultSurfaceConfigCandidates returns the per-surface config files used
// when no server config exists.
func DefaultSurfaceConfigCandidates(mode string) []string {
	return []string{
		mode + ".yaml",
		mode + ".yml",
		filepath.Join(mode, mode+".yaml"),
		filepath.Join(mode, mode+".yml"),
	}
}

// findConfigFile returns the first candidate present in the CWD, then in the
// executable directory.
func findConfigFile(candidates []string) (string, bool) {
	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		for _, rel := range candidates {
			p := rel
			if dir != "." {
				p = filepath.Join(dir, rel)
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}

// FindDefaultServeConfigFile searches for a server config file in a small set of
// well-known locations (CWD then executable directory).
func FindDefaultServeConfigFile() (string, error) {
	candidates := DefaultServeConfigCandidates()
	if p, ok := findConfigFile(candidates); ok {
		return p, nil
	}
	return "", fmt.Errorf("server config not found (expected %v)", candidates)
}

// WithDefaultServeConfig loads the server config when one exists. Otherwise it
// loads the config of the selected surface (http.yaml or lambda.yaml) and a
// standalone module.yaml, whichever are present. Mode must already be set by
// an earlier option, or is detected from the environment.
func WithDefaultServeConfig() Option {
	return OptionFunc(func(o *Options) {
		if p, ok := findConfigFile(DefaultServeConfigCandidates()); ok {
			WithServeConfigFile(p).Apply(o)
			return
		}

		mode := o.Mode
		if mode == "" {
			mode = DetectMode()
		}
		if p, ok := findConfigFile(DefaultSurfaceConfigCandidates(mode)); ok {
			switch mode {
			case ModeHTTP:
				o.HTTP = append(o.HTTP, http.WithServeConfigFile(p))
			case ModeLambda:
				o.Lambda = append(o.Lambda, lambda.WithServeConfigFile(p))
			}
		}
		if p, ok := findConfigFile(DefaultSurfaceConfigCandidates("module")); ok {
			WithModuleOptions(module.WithConfigFile(p)).Apply(o)
		}
	})
}
