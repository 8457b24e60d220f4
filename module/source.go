package module

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoSource = errors.New("module: no payload source configured")

// Source fetches the compiled payload handed to the Initializer.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads the payload from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("module: read %s: %w", s.Path, err)
	}
	return b, nil
}

func (s *FileSource) String() string { return "file://" + s.Path }

// BytesSource serves a payload that is already in memory.
type BytesSource struct {
	Payload []byte
}

func (s *BytesSource) Fetch(context.Context) ([]byte, error) {
	if len(s.Payload) == 0 {
		return nil, ErrNoSource
	}
	return s.Payload, nil
}

func (s *BytesSource) String() string { return fmt.Sprintf("bytes://%d", len(s.Payload)) }

// NewSource resolves the configured source. Inline payloads win over the
// source URI.
func NewSource(o *Options) (Source, error) {
	if len(o.Payload) > 0 {
		return &BytesSource{Payload: o.Payload}, nil
	}

	switch {
	case o.Source == "":
		return nil, ErrNoSource
	case strings.HasPrefix(o.Source, "s3://"):
		bucket, key, err := parseS3URI(o.Source)
		if err != nil {
			return nil, err
		}
		return &S3Source{Bucket: bucket, Key: key, Region: o.S3Region}, nil
	case strings.HasPrefix(o.Source, "file://"):
		return &FileSource{Path: strings.TrimPrefix(o.Source, "file://")}, nil
	case strings.Contains(o.Source, "://"):
		return nil, fmt.Errorf("module: unsupported source scheme: %q", o.Source)
	default:
		return &FileSource{Path: o.Source}, nil
	}
}

func parseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("module: invalid s3 source: %q", uri)
	}
	return bucket, key, nil
}
