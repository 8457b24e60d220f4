package http

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPWithConfig(t *testing.T) {
	o := NewOptions(WithConfig([]byte(`http:
  address: ":9090"
  debug: true
  cors: true
  healthCheckPath: /healthz
  metaPath: ""
  metricsPath: /metrics
`)))

	if o.Address != ":9090" {
		t.Fatalf("Address = %q", o.Address)
	}
	if !o.DebugMode || !o.CorsMode {
		t.Fatalf("DebugMode = %v, CorsMode = %v", o.DebugMode, o.CorsMode)
	}
	if o.HealthCheckPath != "/healthz" {
		t.Fatalf("HealthCheckPath = %q", o.HealthCheckPath)
	}
	if o.MetaPath != "" {
		t.Fatalf("MetaPath = %q", o.MetaPath)
	}
	if o.MetricsPath != "/metrics" {
		t.Fatalf("MetricsPath = %q", o.MetricsPath)
	}
}

func TestHTTPWithConfigKeepsDefaults(t *testing.T) {
	o := NewOptions(WithConfig([]byte("http:\n  cors: true\n")))
	if o.Address != ":8080" {
		t.Fatalf("Address = %q", o.Address)
	}
	if o.HealthCheckPath != "/_/health-check" || o.MetaPath != "/_/meta" || o.MetricsPath != "" {
		t.Fatalf("paths = %q %q %q", o.HealthCheckPath, o.MetaPath, o.MetricsPath)
	}
}

func TestHTTPWithServeConfig(t *testing.T) {
	yaml := []byte(`http:
  address: ":9091"
module:
  source: s3://bucket/app.wasm
  entryPoint: run
dispatch:
  exposeErrors: true
  diagBuffer: 0
`)

	e := NewEngine(WithServeConfig(yaml))
	if e.Address != ":9091" {
		t.Fatalf("Address = %q", e.Address)
	}
	if e.Module.SourceName() != "s3://bucket/app.wasm" {
		t.Fatalf("module source = %q", e.Module.SourceName())
	}
	if e.Module.EntryPointName() != "run" {
		t.Fatalf("module entry = %q", e.Module.EntryPointName())
	}
	if !e.Dispatcher.ExposeErrors || e.Dispatcher.DiagBuffer != 0 {
		t.Fatalf("dispatch options = %+v", e.Dispatcher.Options)
	}
}

func TestHTTPWithServeConfigInvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewEngine(WithServeConfig([]byte("http: [")))
}

func TestHTTPWithServeConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "http.yaml")
	if err := os.WriteFile(p, []byte("http:\n  address: \":7070\"\nmodule:\n  source: ./app.wasm\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if o := NewOptions(WithConfigFile(p)); o.Address != ":7070" {
		t.Fatalf("Address = %q", o.Address)
	}
	e := NewEngine(WithServeConfigFile(p))
	if e.Address != ":7070" || e.Module.SourceName() != "./app.wasm" {
		t.Fatalf("engine = %q %q", e.Address, e.Module.SourceName())
	}
}

func TestHTTPWithServeConfigFileMissingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewEngine(WithServeConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
