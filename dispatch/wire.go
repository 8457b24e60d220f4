package dispatch

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// encodeRequest renders r in HTTP/1.1 wire format. The body is buffered and
// restored so r stays readable for the caller.
func encodeRequest(r *http.Request) ([]byte, error) {
	var data []byte
	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("dispatch: read request body: %w", err)
		}
		data = b
		r.Body = io.NopCloser(bytes.NewReader(data))
		r.ContentLength = int64(len(data))
		r.TransferEncoding = nil
	}

	var buf bytes.Buffer
	err := r.Write(&buf)
	if data != nil {
		r.Body = io.NopCloser(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("dispatch: encode request: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeResponse parses an HTTP/1.1 wire response and reads its body fully so
// the result does not depend on the wire buffer.
func decodeResponse(wire []byte, r *http.Request) (*http.Response, error) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(wire)), r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

// EncodeResponse renders resp in HTTP/1.1 wire format, consuming its body.
func EncodeResponse(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if err := resp.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRequest parses an HTTP/1.1 wire request. RequestURI is cleared so
// the result can be handed to Dispatch again.
func DecodeRequest(wire []byte) (*http.Request, error) {
	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(wire)))
	if err != nil {
		return nil, err
	}
	req.RequestURI = ""
	return req, nil
}

func failureResponse(r *http.Request, err error, expose bool) *http.Response {
	body := http.StatusText(http.StatusInternalServerError)
	if expose && err != nil {
		body = err.Error()
	}
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)),
		StatusCode:    http.StatusInternalServerError,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader([]byte(body))),
		ContentLength: int64(len(body)),
		Request:       r,
	}
}
