package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/aura-studio/edgeworker/dispatch"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead, http.MethodOptions}

func (e *Engine) InstallHandlers() {
	if e.HealthCheckPath != "" {
		e.HandleAllMethods(e.HealthCheckPath, e.OK)
	}
	if e.MetaPath != "" {
		e.HandleAllMethods(e.MetaPath, e.Meta)
	}
	if e.MetricsPath != "" {
		e.HandleAllMethods(e.MetricsPath, gin.WrapH(e.Dispatcher.Handler()))
	}

	// Everything else belongs to the module.
	e.NoRoute(e.Dispatch)
	e.NoMethod(e.Dispatch)
}

func (e *Engine) HandleAllMethods(relativePath string, handlers ...gin.HandlerFunc) {
	for _, method := range methods {
		e.Handle(method, relativePath, handlers...)
	}
}

func (e *Engine) OK(c *gin.Context) {
	c.String(http.StatusOK, "OK")
	c.Abort()
}

func (e *Engine) Meta(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(e.Module.Meta()))
	c.Abort()
}

// Dispatch hands the request to the module and writes back exactly what it
// produced. Abandoned requests get no response at all: the handler is aborted
// with http.ErrAbortHandler so the server drops the connection silently.
func (e *Engine) Dispatch(c *gin.Context) {
	resp, err := e.Dispatcher.Dispatch(c.Request.Context(), c.Request)
	if resp == nil {
		if !errors.Is(err, dispatch.ErrAbandoned) {
			e.logger.Error("dispatch returned no response", zap.Error(err))
		}
		c.Abort()
		panic(http.ErrAbortHandler)
	}
	defer resp.Body.Close()

	header := c.Writer.Header()
	for k, v := range resp.Header {
		header[k] = append([]string(nil), v...)
	}
	if _, ok := resp.Header["Content-Type"]; !ok {
		// no sniffing
		header["Content-Type"] = nil
	}
	c.Status(resp.StatusCode)
	c.Writer.WriteHeaderNow()
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		e.logger.Debug("write response body", zap.Error(err))
	}
	c.Abort()
}

// Recovery turns handler panics into a bare 500. http.ErrAbortHandler is
// passed through to the server.
func (e *Engine) Recovery(c *gin.Context) {
	defer func() {
		if v := recover(); v != nil {
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}
			e.logger.Error("handler panicked", zap.Any("panic", v), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}()
	c.Next()
}
