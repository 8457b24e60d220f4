package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ewhttp "github.com/aura-studio/edgeworker/http"
	"github.com/aura-studio/edgeworker/http/client"
	"github.com/aura-studio/edgeworker/logger"
	"github.com/aura-studio/edgeworker/module"
)

var okEntryPoint = module.EntryPointFunc(func(ctx context.Context, wireReq []byte) ([]byte, error) {
	return []byte("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 2\r\n\r\nhi"), nil
})

func TestNewOptionsDetectsMode(t *testing.T) {
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "")
	if got := NewOptions().Mode; got != ModeHTTP {
		t.Fatalf("mode = %q, want http", got)
	}

	t.Setenv("AWS_LAMBDA_RUNTIME_API", "127.0.0.1:9001")
	if got := NewOptions().Mode; got != ModeLambda {
		t.Fatalf("mode = %q, want lambda", got)
	}
	if got := NewOptions(WithMode(ModeHTTP)).Mode; got != ModeHTTP {
		t.Fatalf("explicit mode = %q, want http", got)
	}
}

func TestWithModuleOptionsReachesBothSurfaces(t *testing.T) {
	o := NewOptions(WithModuleOptions(module.WithPreload(true)), WithHTTPOptions(ewhttp.WithAddress(":1")))
	if len(o.HTTP) != 2 || len(o.Lambda) != 1 {
		t.Fatalf("HTTP=%d Lambda=%d", len(o.HTTP), len(o.Lambda))
	}
}

func TestWithServeConfig(t *testing.T) {
	yml := []byte(`
mode: lambda
logger:
  level: debug
http:
  address: ":9999"
module:
  source: s3://bucket/app.wasm
`)
	o := NewOptions(WithServeConfig(yml))
	if o.Mode != ModeLambda {
		t.Fatalf("mode = %q", o.Mode)
	}
	if got := logger.NewOptions(o.Logger...).Level; got != "debug" {
		t.Fatalf("logger level = %q", got)
	}
	if len(o.HTTP) != 1 || len(o.Lambda) != 1 {
		t.Fatalf("HTTP=%d Lambda=%d", len(o.HTTP), len(o.Lambda))
	}

	e := ewhttp.NewEngine(o.HTTP...)
	if e.Address != ":9999" {
		t.Fatalf("address = %q", e.Address)
	}
	if e.Module.SourceName() != "s3://bucket/app.wasm" {
		t.Fatalf("source = %q", e.Module.SourceName())
	}
}

func TestWithServeConfigRejectsUnknownMode(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(error).Error(), "unknown mode") {
			t.Fatalf("recover() = %v", r)
		}
	}()
	WithServeConfig([]byte("mode: grpc\n"))
}

func TestWithServeConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "edgeworker.yaml")
	if err := os.WriteFile(p, []byte("mode: http\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := NewOptions(WithServeConfigFile(p)).Mode; got != ModeHTTP {
		t.Fatalf("mode = %q", got)
	}
}

func TestFindDefaultServeConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	if err := os.WriteFile("config.yaml", []byte("mode: http\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("edgeworker.yml", []byte("mode: http\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := FindDefaultServeConfigFile()
	if err != nil {
		t.Fatalf("FindDefaultServeConfigFile() error: %v", err)
	}
	if p != "edgeworker.yml" {
		t.Fatalf("path = %q, want edgeworker.yml", p)
	}
}

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWithDefaultServeConfigPrefersServerConfig(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "edgeworker.yaml", "mode: lambda\nhttp:\n  address: \":7001\"\n")
	writeFile(t, "http.yaml", "http:\n  address: \":7002\"\n")

	o := NewOptions(WithDefaultServeConfig())
	if o.Mode != ModeLambda {
		t.Fatalf("mode = %q", o.Mode)
	}
	if e := ewhttp.NewEngine(o.HTTP...); e.Address != ":7001" {
		t.Fatalf("address = %q, want :7001", e.Address)
	}
}

func TestWithDefaultServeConfigFallsBackToSurfaceFiles(t *testing.T) {
	chdirTemp(t)
	writeFile(t, filepath.Join("http", "http.yaml"), "http:\n  address: \":7003\"\n")
	writeFile(t, "lambda.yaml", "lambda:\n  reply: true\n")
	writeFile(t, "module.yml", "module:\n  source: ./found.wasm\n")

	o := NewOptions(WithMode(ModeHTTP), WithDefaultServeConfig())
	if len(o.Lambda) != 1 || len(o.HTTP) != 2 {
		t.Fatalf("HTTP=%d Lambda=%d", len(o.HTTP), len(o.Lambda))
	}
	e := ewhttp.NewEngine(o.HTTP...)
	if e.Address != ":7003" {
		t.Fatalf("address = %q, want :7003", e.Address)
	}
	if e.Module.SourceName() != "./found.wasm" {
		t.Fatalf("source = %q", e.Module.SourceName())
	}

	o = NewOptions(WithMode(ModeLambda), WithDefaultServeConfig())
	if len(o.Lambda) != 2 || len(o.HTTP) != 1 {
		t.Fatalf("HTTP=%d Lambda=%d", len(o.HTTP), len(o.Lambda))
	}
}

func TestWithDefaultServeConfigWithoutFiles(t *testing.T) {
	chdirTemp(t)
	o := NewOptions(WithMode(ModeHTTP), WithDefaultServeConfig())
	if len(o.HTTP) != 0 || len(o.Lambda) != 0 || len(o.Logger) != 0 {
		t.Fatalf("options = %+v", o)
	}
}

func TestServeRejectsBadLogger(t *testing.T) {
	err := Serve(WithMode(ModeHTTP), WithLoggerOptions(logger.WithLevel("loud")))
	if err == nil {
		t.Fatalf("Serve() error = nil")
	}
}

func TestServeUnknownMode(t *testing.T) {
	err := Serve(WithMode("grpc"), WithLoggerOptions(logger.WithOutputPaths("stdout")))
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Fatalf("Serve() error = %v", err)
	}
}

func TestServeHTTPAndClose(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(
			WithMode(ModeHTTP),
			WithLoggerOptions(logger.WithOutputPaths("stdout")),
			WithHTTPOptions(ewhttp.WithAddress(addr)),
			WithModuleOptions(module.WithStaticEntryPoint(okEntryPoint)),
		)
	}()
	defer logger.Set(nil)

	c := client.NewClient(client.WithBaseURL("http://" + addr))
	deadline := time.Now().Add(3 * time.Second)
	for {
		if err := c.Health(context.Background()); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server not ready")
		}
		time.Sleep(25 * time.Millisecond)
	}

	resp, err := c.Get(context.Background(), "/anything")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "hi" {
		t.Fatalf("GET = %d %q", resp.StatusCode, resp.Body)
	}

	if err := Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Serve() error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Serve() did not return after Close()")
	}
}
