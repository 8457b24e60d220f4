package http

import (
	"github.com/aura-studio/edgeworker/dispatch"
	"github.com/aura-studio/edgeworker/module"
)

// ServeOption is an http.Option, a module.Option, a dispatch.Option or a
// config option produced by WithServeConfig.
type ServeOption any

type serveOptionBag struct {
	http     []Option
	module   []module.Option
	dispatch []dispatch.Option
}

func (b *serveOptionBag) apply(opts ...ServeOption) {
	for _, opt := range opts {
		switch o := opt.(type) {
		case Option:
			b.http = append(b.http, o)
		case module.Option:
			b.module = append(b.module, o)
		case dispatch.Option:
			b.dispatch = append(b.dispatch, o)
		case serveConfigOption:
			if o.err != nil {
				panic(o.err)
			}
			b.apply(o.opts...)
		}
	}
}
