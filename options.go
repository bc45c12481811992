package stave

import (
	"github.com/gogpu/stave/cull"
	"github.com/gogpu/stave/interact"
	"github.com/gogpu/stave/lanes"
	"github.com/gogpu/stave/layout"
	"github.com/gogpu/stave/route"
	"github.com/gogpu/stave/scene"
	"github.com/gogpu/stave/schedule"
)

// DefaultBackendName is the backend New selects when no explicit
// backend or name is configured. The recording backend is always
// registered, so a bare New() never fails on backend lookup.
const DefaultBackendName = "record"

// DefaultBaseDayWidth is the on-screen width of one day at zoom 1,
// in pixels.
const DefaultBaseDayWidth = 60.0

// Option is a functional option for configuring an Engine.
type Option func(*options)

// options holds the resolved engine configuration. It is fixed at New
// and never mutated afterwards, so the render loop can read it without
// synchronization.
type options struct {
	backend     scene.Backend
	backendName string

	baseDayWidth float64

	laneMetrics   lanes.Metrics
	layoutMetrics layout.Metrics
	cullParams    cull.Params
	routeParams   route.Params
	interParams   interact.Params
	theme         Theme

	sink         func(schedule.Command)
	poolCapacity int
	workers      int
}

func defaultOptions() options {
	return options{
		backendName:   DefaultBackendName,
		baseDayWidth:  DefaultBaseDayWidth,
		laneMetrics:   lanes.DefaultMetrics(),
		layoutMetrics: layout.DefaultMetrics(),
		cullParams:    cull.DefaultParams(),
		routeParams:   route.DefaultParams(),
		interParams:   interact.DefaultParams(),
		theme:         DefaultTheme(),
	}
}

// WithBackend uses an explicit backend instance instead of looking one
// up in the registry. It overrides WithBackendName.
func WithBackend(b scene.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name. New fails with
// the registry's error when no such backend is registered.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithBaseDayWidth sets the width of one day at zoom 1, in pixels.
// Non-positive values fall back to DefaultBaseDayWidth.
func WithBaseDayWidth(px float64) Option {
	return func(o *options) {
		if px > 0 {
			o.baseDayWidth = px
		}
	}
}

// WithLaneMetrics overrides the vertical staff constants.
func WithLaneMetrics(m lanes.Metrics) Option {
	return func(o *options) {
		o.laneMetrics = m
	}
}

// WithLayoutMetrics overrides the item-sizing constants.
func WithLayoutMetrics(m layout.Metrics) Option {
	return func(o *options) {
		o.layoutMetrics = m
	}
}

// WithCullParams overrides the visibility-pass tuning.
func WithCullParams(p cull.Params) Option {
	return func(o *options) {
		o.cullParams = p
	}
}

// WithRouteParams overrides the connector-shape tuning.
func WithRouteParams(p route.Params) Option {
	return func(o *options) {
		o.routeParams = p
	}
}

// WithInteractParams overrides the gesture tuning. A zero preview
// color picks up the theme's preview color.
func WithInteractParams(p interact.Params) Option {
	return func(o *options) {
		o.interParams = p
	}
}

// WithTheme sets the paint colors.
func WithTheme(t Theme) Option {
	return func(o *options) {
		o.theme = t
	}
}

// WithCommandSink routes commands emitted by gestures directly to the
// host instead of queueing them for DrainCommands. The sink is called
// on the goroutine that delivered the input event.
func WithCommandSink(sink func(schedule.Command)) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithNodePoolCapacity bounds the retained scene's node free list.
// Zero or negative keeps the default capacity.
func WithNodePoolCapacity(n int) Option {
	return func(o *options) {
		o.poolCapacity = n
	}
}

// WithWorkers sets the size of the worker pool used by the visibility
// pass. Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
