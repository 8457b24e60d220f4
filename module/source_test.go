package module

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name   string
		opts   *Options
		want   string
		errIs  error
		hasErr bool
	}{
		{name: "empty", opts: NewOptions(), errIs: ErrNoSource},
		{name: "payload wins", opts: NewOptions(WithSource("s3://b/k"), WithPayload([]byte("abc"))), want: "bytes://3"},
		{name: "plain path", opts: NewOptions(WithSource("./app.wasm")), want: "file://./app.wasm"},
		{name: "file uri", opts: NewOptions(WithSource("file:///srv/app.wasm")), want: "file:///srv/app.wasm"},
		{name: "s3 uri", opts: NewOptions(WithSource("s3://bucket/dir/app.wasm")), want: "s3://bucket/dir/app.wasm"},
		{name: "s3 without key", opts: NewOptions(WithSource("s3://bucket")), hasErr: true},
		{name: "unknown scheme", opts: NewOptions(WithSource("ftp://host/app.wasm")), hasErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.opts)
			switch {
			case tt.errIs != nil:
				assert.ErrorIs(t, err, tt.errIs)
			case tt.hasErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, src.String())
			}
		})
	}
}

func TestFileSourceFetch(t *testing.T) {
	p := filepath.Join(t.TempDir(), "app.wasm")
	require.NoError(t, os.WriteFile(p, []byte("wasm"), 0o644))

	b, err := (&FileSource{Path: p}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wasm", string(b))

	_, err = (&FileSource{Path: p + ".missing"}).Fetch(context.Background())
	assert.Error(t, err)
}

type fakeS3 struct {
	bucket, key string
	body        []byte
	err         error
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestS3SourceFetch(t *testing.T) {
	client := &fakeS3{body: []byte("compiled")}
	src := &S3Source{Bucket: "bucket", Key: "dir/app.wasm", Client: client}

	b, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "compiled", string(b))
	assert.Equal(t, "bucket", client.bucket)
	assert.Equal(t, "dir/app.wasm", client.key)

	client.err = errors.New("access denied")
	_, err = src.Fetch(context.Background())
	assert.ErrorContains(t, err, "access denied")
}
