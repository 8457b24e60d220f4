package module

import (
	"os"
	"runtime/debug"
	"strings"

	"github.com/tidwall/sjson"
)

// ServiceInfo is parsed from AWS_LAMBDA_FUNCTION_NAME,
// formatted as business-framework-runtime-resource-instance.
type ServiceInfo struct {
	Business  string `json:"business"`
	Framework string `json:"framework"`
	Runtime   string `json:"runtime"`
	Resource  string `json:"resource"`
	Instance  string `json:"instance"`
}

type BuildInfo struct {
	Module  string `json:"module"`
	Version string `json:"version"`
	Built   string `json:"built"`
}

func parseServiceInfo() ServiceInfo {
	funcName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	if funcName == "" {
		return ServiceInfo{}
	}
	parts := strings.SplitN(funcName, "-", 5)
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	return ServiceInfo{
		Business:  parts[0],
		Framework: parts[1],
		Runtime:   parts[2],
		Resource:  parts[3],
		Instance:  parts[4],
	}
}

func parseBuildInfo() BuildInfo {
	info := BuildInfo{}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	info.Module = buildInfo.Main.Path
	info.Version = buildInfo.Main.Version
	for _, setting := range buildInfo.Settings {
		if setting.Key == "vcs.time" {
			info.Built = setting.Value
			break
		}
	}

	return info
}

// ReadBuildInfo reports the main module path, version and VCS time of the
// running binary.
func ReadBuildInfo() BuildInfo {
	return parseBuildInfo()
}

// Meta renders the module status as JSON: service and build identity plus the
// module's source, entry point, state and initialization counters.
func (m *Module) Meta() string {
	out := "{}"
	set := func(path string, value any) {
		if s, err := sjson.Set(out, path, value); err == nil {
			out = s
		}
	}

	set("service", parseServiceInfo())
	set("build", parseBuildInfo())
	set("module.source", m.source)
	set("module.entry", m.EntryPointName())
	set("module.state", m.State().String())
	set("module.initializations", m.Initializations())
	if lastErr := m.LastError(); lastErr != "" {
		set("module.lastError", lastErr)
	}

	return out
}
