package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientHealthAndMeta(t *testing.T) {
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/_/health-check":
			gotRequestID = r.Header.Get("X-Request-Id")
			_, _ = io.WriteString(w, "OK")
		case "/_/meta":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"module":{"state":"ready"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if gotRequestID == "" {
		t.Fatalf("request id not set")
	}

	meta, err := c.Meta(context.Background())
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Get("module.state").String() != "ready" {
		t.Fatalf("meta = %s", meta.Raw)
	}
}

func TestClientHealthFailsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if err := c.Health(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClientHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Header.Get("X-Default")+","+r.Header.Get("X-Request-Id"))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeader("X-Default", "d"))
	resp, err := c.Do(context.Background(), http.MethodGet, "/", nil, map[string]string{"X-Request-Id": "fixed"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(resp.Body) != "d,fixed" {
		t.Fatalf("Body = %q", resp.Body)
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(WithBaseURL(srv.URL), WithDefaultTimeout(50*time.Millisecond))
	if _, err := c.Get(context.Background(), "/slow"); err == nil {
		t.Fatalf("expected timeout error")
	}
}
