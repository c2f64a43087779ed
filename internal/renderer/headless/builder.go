package headless

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/renderer"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/web"
)

// Builder creates headless views.
type Builder struct {
	pumped bool
	logger *logging.Logger
	web    *web.Fetcher

	mu    sync.Mutex
	views []*View
}

// Option configures a Builder.
type Option func(*Builder)

// WithPump makes views run jobs only inside Pump, like engines whose event
// queue belongs to the host frame loop.
func WithPump(pumped bool) Option {
	return func(b *Builder) { b.pumped = pumped }
}

// WithLogger sets the logger views report script errors and console output
// to.
func WithLogger(logger *logging.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithWeb lets views load http and https URLs through fetcher. Without it
// those schemes answer 404 like any other unregistered scheme.
func WithWeb(fetcher *web.Fetcher) Option {
	return func(b *Builder) { b.web = fetcher }
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.OrNop(b.logger).Named("headless")
	return b
}

// Capabilities reports whether views need pumping.
func (b *Builder) Capabilities() renderer.Capabilities {
	return renderer.Capabilities{RequiresPump: b.pumped}
}

// Build creates a view and queues its initial page load.
func (b *Builder) Build(opts renderer.Options) (renderer.Handle, error) {
	v, err := newView(opts, b.pumped, b.logger, b.web)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.views = append(b.views, v)
	b.mu.Unlock()
	return v, nil
}

// Views returns every view built so far, oldest first.
func (b *Builder) Views() []*View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*View(nil), b.views...)
}

// Last returns the most recently built view, or nil.
func (b *Builder) Last() *View {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.views) == 0 {
		return nil
	}
	return b.views[len(b.views)-1]
}
