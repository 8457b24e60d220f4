package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	b, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("lambda: decode base64 body: %w", err)
	}
	return b, nil
}

// encodeBody returns the body as text when it is valid UTF-8, base64 otherwise.
func encodeBody(b []byte) (string, bool) {
	if utf8.Valid(b) {
		return string(b), false
	}
	return base64.StdEncoding.EncodeToString(b), true
}

func newRequest(ctx context.Context, method, host, path, rawQuery string, body []byte) (*http.Request, error) {
	if host == "" {
		host = "localhost"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := "https://" + host + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	var r io.Reader = http.NoBody
	if len(body) > 0 {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, fmt.Errorf("lambda: build request: %w", err)
	}
	return req, nil
}

func (e *Engine) dispatchHTTP(req *http.Request) (status int, header http.Header, body []byte, err error) {
	if !e.IsRunning() {
		return 0, nil, nil, ErrStopped
	}

	resp, err := e.Dispatcher.Dispatch(req.Context(), req)
	if resp == nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, rerr := io.ReadAll(resp.Body)
	if rerr != nil {
		return 0, nil, nil, fmt.Errorf("lambda: read response body: %w", rerr)
	}
	if e.DebugMode {
		e.logger.Info("response", zap.String("path", req.URL.Path), zap.Int("status", resp.StatusCode), zap.Error(err))
	}
	return resp.StatusCode, resp.Header, body, nil
}

// HandleAPIGatewayV2 serves an HTTP API (payload 2.0) or Function URL event.
func (e *Engine) HandleAPIGatewayV2(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := decodeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	host := ev.RequestContext.DomainName
	for k, v := range ev.Headers {
		if strings.EqualFold(k, "host") {
			host = v
		}
	}

	req, err := newRequest(ctx, ev.RequestContext.HTTP.Method, host, ev.RawPath, ev.RawQueryString, body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}
	if len(ev.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(ev.Cookies, "; "))
	}
	req.RemoteAddr = ev.RequestContext.HTTP.SourceIP
	if ev.RequestContext.RequestID != "" && req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", ev.RequestContext.RequestID)
	}

	status, header, respBody, err := e.dispatchHTTP(req)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{},
	}
	for k, v := range header {
		if k == "Set-Cookie" {
			out.Cookies = append(out.Cookies, v...)
			continue
		}
		out.Headers[k] = strings.Join(v, ",")
	}
	out.Body, out.IsBase64Encoded = encodeBody(respBody)
	return out, nil
}

// HandleAPIGatewayV1 serves a REST API proxy event.
func (e *Engine) HandleAPIGatewayV1(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body, err := decodeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	header := http.Header{}
	if len(ev.MultiValueHeaders) > 0 {
		for k, vs := range ev.MultiValueHeaders {
			for _, v := range vs {
				header.Add(k, v)
			}
		}
	} else {
		for k, v := range ev.Headers {
			header.Set(k, v)
		}
	}

	query := url.Values{}
	if len(ev.MultiValueQueryStringParameters) > 0 {
		for k, vs := range ev.MultiValueQueryStringParameters {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
	} else {
		for k, v := range ev.QueryStringParameters {
			query.Set(k, v)
		}
	}

	host := header.Get("Host")
	if host == "" {
		host = ev.RequestContext.DomainName
	}

	req, err := newRequest(ctx, ev.HTTPMethod, host, ev.Path, query.Encode(), body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	req.RemoteAddr = ev.RequestContext.Identity.SourceIP
	if ev.RequestContext.RequestID != "" && req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", ev.RequestContext.RequestID)
	}

	status, respHeader, respBody, err := e.dispatchHTTP(req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	out := events.APIGatewayProxyResponse{
		StatusCode:        status,
		MultiValueHeaders: map[string][]string{},
	}
	for k, v := range respHeader {
		out.MultiValueHeaders[k] = append([]string(nil), v...)
	}
	out.Body, out.IsBase64Encoded = encodeBody(respBody)
	return out, nil
}
