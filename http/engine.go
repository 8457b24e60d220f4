package http

import (
	"github.com/aura-studio/edgeworker/dispatch"
	"github.com/aura-studio/edgeworker/logger"
	"github.com/aura-studio/edgeworker/module"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Engine struct {
	*Options
	*gin.Engine
	*module.Module
	*dispatch.Dispatcher
	logger *zap.Logger
}

func NewEngine(opts ...ServeOption) *Engine {
	bag := &serveOptionBag{}
	bag.apply(opts...)

	options := NewOptions(bag.http...)
	if !options.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	l := options.Logger
	if l == nil {
		l = logger.L()
	}
	l = l.Named("http")

	m := module.NewModule(append([]module.Option{module.WithLogger(l)}, bag.module...)...)
	d := dispatch.NewDispatcher(m, append([]dispatch.Option{dispatch.WithLogger(l)}, bag.dispatch...)...)

	e := &Engine{
		Options:    options,
		Engine:     gin.New(),
		Module:     m,
		Dispatcher: d,
		logger:     l,
	}

	// Reserved routes must not redirect module paths that merely resemble them.
	e.Engine.RedirectTrailingSlash = false
	e.Engine.RedirectFixedPath = false

	e.Use(e.Recovery)
	if e.DebugMode {
		e.Use(gin.Logger())
	}
	if e.CorsMode {
		e.Use(Cors())
	}

	e.InstallHandlers()

	return e
}
