package embed

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/config"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/geometry"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/input"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/monitoring"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/renderer"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/resource"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/shared/id"
)

// BridgeScript installs window.bridge (invoke, resource, postMessage,
// onMessage) in every page.
//
//go:embed bridge.js
var BridgeScript string

// Host is everything a surface needs from the embedding application. Calls
// may arrive from any goroutine.
type Host interface {
	ipc.Host
	input.Pipeline
	geometry.Layout
	HasFocus() bool
}

// Surface is one embedded web view bound to one host control.
type Surface struct {
	id       id.SurfaceID
	cfg      config.SurfaceConfig
	host     Host
	builder  renderer.Builder
	resolver ipc.Resolver
	extra    []string
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	router     *ipc.Router
	translator *input.Translator
	geometry   *geometry.Synchronizer
	timeout    time.Duration

	mu          sync.Mutex
	state       State
	handle      renderer.Handle
	pumper      renderer.Pumper
	visible     bool
	wantFocus   bool
	hostFocused bool
}

// Option configures a Surface.
type Option func(*Surface)

// WithResolver serves res:// and ipc://localhost/plugin:res requests.
func WithResolver(r ipc.Resolver) Option {
	return func(s *Surface) { s.resolver = r }
}

// WithInitScripts adds scripts that run before page scripts, after the
// bridge and input forwarding scripts.
func WithInitScripts(scripts ...string) Option {
	return func(s *Surface) { s.extra = append(s.extra, scripts...) }
}

// WithID sets the surface id.
func WithID(surfaceID id.SurfaceID) Option {
	return func(s *Surface) { s.id = surfaceID }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Surface) { s.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Surface) { s.metrics = metrics }
}

// New validates cfg and prepares a surface. Nothing is built until Attach.
func New(cfg config.SurfaceConfig, host Host, builder renderer.Builder, opts ...Option) (*Surface, error) {
	if host == nil {
		return nil, errors.New("surface requires a host")
	}
	if builder == nil {
		return nil, errors.New("surface requires a renderer builder")
	}

	s := &Surface{
		cfg:       cfg,
		host:      host,
		builder:   builder,
		visible:   true,
		wantFocus: cfg.Focused,
		timeout:   cfg.InvokeTimeout(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = id.NewSurfaceID()
	}
	s.logger = logging.OrNop(s.logger).Named("surface").With(zap.String("surface_id", s.id.String()))

	warnings, err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid surface configuration: %w", err)
	}
	for _, w := range warnings {
		s.logger.Warn("Surface configuration conflict", zap.String("detail", w))
	}

	s.translator = input.NewTranslator(host, &input.ButtonMaskRegister{},
		input.WithLogger(s.logger),
		input.WithMetrics(s.metrics))
	s.router = ipc.NewRouter(host, s.resolver,
		ipc.WithInput(s.translator),
		ipc.WithLogger(s.logger),
		ipc.WithMetrics(s.metrics))
	s.geometry = geometry.NewSynchronizer(host, cfg.FullWindow)
	return s, nil
}

// ID returns the surface id.
func (s *Surface) ID() id.SurfaceID {
	return s.id
}

// State returns the lifecycle state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Router returns the surface's IPC router.
func (s *Surface) Router() *ipc.Router {
	return s.router
}

// Mask returns the held-button register shared with the translator.
func (s *Surface) Mask() *input.ButtonMaskRegister {
	return s.translator.Mask()
}

// Bounds returns the last computed bounds.
func (s *Surface) Bounds() geometry.Rect {
	return s.geometry.Bounds()
}

// Visible reports the visibility flag.
func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Attach builds the renderer and performs the first geometry pass. It may
// succeed only once.
func (s *Surface) Attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAttached:
		return ErrAlreadyAttached
	case StateDestroyed:
		return ErrDestroyed
	}

	opts, err := s.buildOptions()
	if err != nil {
		return err
	}

	handle, err := s.builder.Build(opts)
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}

	s.handle = handle
	s.state = StateAttached
	s.hostFocused = s.host.HasFocus()
	if s.builder.Capabilities().RequiresPump {
		pumper, ok := handle.(renderer.Pumper)
		if !ok {
			s.logger.Warn("Renderer requires pumping but its handle cannot pump")
		}
		s.pumper = pumper
	}

	s.geometry.Sync(boundsTarget{s: s, handle: handle})
	s.metrics.SurfaceAttached()

	kind, _ := s.cfg.Content()
	s.logger.Info("Surface attached",
		zap.String("content", kind.String()),
		zap.Bool("full_window", s.cfg.FullWindow),
		zap.Bool("pumped", s.pumper != nil))
	return nil
}

func (s *Surface) buildOptions() (renderer.Options, error) {
	background, err := s.cfg.Background()
	if err != nil {
		return renderer.Options{}, fmt.Errorf("invalid background color: %w", err)
	}

	opts := renderer.Options{
		Transparent:      s.cfg.Transparent,
		Background:       background,
		Devtools:         s.cfg.Devtools,
		Headers:          s.cfg.Headers,
		UserAgent:        s.cfg.UserAgent,
		ZoomHotkeys:      s.cfg.ZoomHotkeys,
		Clipboard:        s.cfg.Clipboard,
		Incognito:        s.cfg.Incognito,
		Focused:          s.cfg.Focused,
		AcceptFirstMouse: s.cfg.AcceptFirstMouse,
		Bounds:           s.geometry.Sync(nil),
		Visible:          s.visible,
		InitScripts:      s.initScripts(),
		Protocols: map[string]renderer.ProtocolHandler{
			resource.Scheme: s.serveResource,
			"ipc":           s.router.HandleRequest,
		},
		OnMessage: s.router.HandleMessage,
	}

	switch kind, source := s.cfg.Content(); kind {
	case config.ContentHTML:
		opts.HTML = source
	case config.ContentURL:
		opts.URL = source
	}
	return opts, nil
}

func (s *Surface) initScripts() []string {
	scripts := []string{BridgeScript}
	if s.cfg.ForwardInputEvents {
		scripts = append(scripts, input.ForwardScript)
	}
	return append(scripts, s.extra...)
}

// serveResource answers res:// requests from the renderer.
func (s *Surface) serveResource(req ipc.Request, sink ipc.ResponseSink) {
	if s.resolver == nil {
		sink.Respond(ipc.Response{
			Status:  http.StatusNotFound,
			Headers: map[string]string{"Content-Type": "text/plain"},
			Body:    []byte("resource not found: " + req.URI),
		})
		return
	}

	rr, err := resource.ParseRequest(req.URI)
	var res resource.Response
	if err != nil {
		res = resource.Response{
			Status:      http.StatusNotFound,
			ContentType: "text/plain",
			Body:        []byte("resource not found: " + req.URI),
		}
	} else {
		res = s.resolver.Resolve(rr)
	}
	sink.Respond(ipc.Response{
		Status: res.Status,
		Headers: map[string]string{
			"Content-Type":                res.ContentType,
			"Access-Control-Allow-Origin": "*",
		},
		Body: res.Body,
	})
}

// Process runs once per host frame.
func (s *Surface) Process() {
	s.mu.Lock()
	if s.state != StateAttached {
		s.mu.Unlock()
		return
	}
	handle := s.handle
	pumper := s.pumper

	focused := s.host.HasFocus()
	regained := focused && !s.hostFocused && s.wantFocus
	s.hostFocused = focused
	s.mu.Unlock()

	if pumper != nil {
		pumper.Pump()
	}

	s.geometry.Tick(boundsTarget{s: s, handle: handle})

	if regained {
		s.call("focus", handle.Focus)
	}
	if s.timeout > 0 {
		s.router.Expire(s.timeout)
	}
}

// Destroy answers outstanding invokes with 503 and closes the renderer.
// Calling it again does nothing.
func (s *Surface) Destroy() {
	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return
	}
	wasAttached := s.state == StateAttached
	handle := s.handle
	s.state = StateDestroyed
	s.handle = nil
	s.pumper = nil
	s.mu.Unlock()

	drained := s.router.Close()
	s.translator.Mask().Reset()

	if handle != nil {
		if err := handle.Close(); err != nil {
			s.logger.Debug("Renderer close failed", zap.Error(err))
		}
	}
	if wasAttached {
		s.metrics.SurfaceDestroyed()
	}
	s.logger.Info("Surface destroyed", zap.Int("drained_invokes", drained))
}

// Resolve completes a pending invoke. Unknown tokens return
// ipc.ErrUnknownToken and change nothing. Before Attach it returns
// ErrNotAttached.
func (s *Surface) Resolve(token string, resp ipc.Response) error {
	if s.State() == StateUninitialized {
		return ErrNotAttached
	}
	return s.router.Resolve(token, resp)
}

type boundsTarget struct {
	s      *Surface
	handle renderer.Handle
}

func (t boundsTarget) SetBounds(r geometry.Rect) {
	if err := t.handle.SetBounds(r); err != nil {
		t.s.logger.Debug("Renderer call failed", zap.String("op", "set_bounds"), zap.Error(err))
	}
}

// current returns the live handle, or nil when not attached.
func (s *Surface) current() renderer.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAttached {
		return nil
	}
	return s.handle
}

// call runs fn and logs its error. Renderer failures never reach callers.
func (s *Surface) call(op string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Debug("Renderer call failed", zap.String("op", op), zap.Error(err))
	}
}

func messageScript(msg string) (string, error) {
	detail, err := sonic.ConfigStd.MarshalToString(msg)
	if err != nil {
		return "", err
	}
	return `document.dispatchEvent(new CustomEvent("message", { detail: ` + detail + ` }))`, nil
}
