package headless

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/geometry"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/renderer"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/web"
)

//go:embed prelude.js
var prelude string

// DefaultBase is the base URL of inline HTML.
const DefaultBase = "res://localhost/"

// ErrDevtoolsDisabled is returned by OpenDevtools when the view was built
// without devtools.
var ErrDevtoolsDisabled = errors.New("devtools not enabled")

// View is a renderer handle backed by a JavaScript VM. All VM access happens
// on one goroutine at a time: the internal loop, or the caller of Pump when
// the view is pumped.
type View struct {
	opts   renderer.Options
	pumped bool
	logger *logging.Logger
	web    *web.Fetcher
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	queue     []func()
	closed    bool
	bounds    geometry.Rect
	visible   bool
	devtools  bool
	focused   bool
	url       string
	html      string
	title     string
	prints    int
	clears    int
	loads     int
	lastError error

	runMu sync.Mutex
	wake  chan struct{}
	quit  chan struct{}
	done  chan struct{}

	// Touched only by the goroutine running jobs.
	vm  *goja.Runtime
	gen int
}

func newView(opts renderer.Options, pumped bool, logger *logging.Logger, fetcher *web.Fetcher) (*View, error) {
	v := &View{
		opts:    opts,
		pumped:  pumped,
		logger:  logger,
		web:     fetcher,
		bounds:  opts.Bounds,
		visible: opts.Visible,
		focused: opts.Focused,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())

	switch {
	case opts.HTML != "":
		v.html = opts.HTML
		v.url = DefaultBase
	case opts.URL != "":
		v.url = opts.URL
	}
	v.loads = 1
	v.enqueue(v.loadJob(v.url, v.html))

	if pumped {
		close(v.done)
	} else {
		go v.loop()
	}
	return v, nil
}

// Pump runs every queued job on the calling goroutine.
func (v *View) Pump() {
	v.drain()
}

// Done is closed once the internal loop has exited. Pumped views have no
// loop and return a closed channel.
func (v *View) Done() <-chan struct{} {
	return v.done
}

func (v *View) loop() {
	defer close(v.done)
	for {
		select {
		case <-v.quit:
			return
		case <-v.wake:
			v.drain()
		}
	}
}

func (v *View) drain() {
	v.runMu.Lock()
	defer v.runMu.Unlock()
	for {
		v.mu.Lock()
		if v.closed || len(v.queue) == 0 {
			v.mu.Unlock()
			return
		}
		job := v.queue[0]
		v.queue[0] = nil
		v.queue = v.queue[1:]
		v.mu.Unlock()

		job()
	}
}

func (v *View) enqueue(job func()) bool {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false
	}
	v.queue = append(v.queue, job)
	v.mu.Unlock()

	select {
	case v.wake <- struct{}{}:
	default:
	}
	return true
}

// enqueueFor drops the job if the page it belongs to has been replaced.
func (v *View) enqueueFor(gen int, job func()) {
	v.enqueue(func() {
		if v.gen == gen && v.vm != nil {
			job()
		}
	})
}

func (v *View) loadJob(pageURL, markup string) func() {
	return func() {
		v.gen++
		gen := v.gen
		v.vm = goja.New()
		if err := v.installPrelude(pageURL); err != nil {
			v.fail("prelude", err)
			return
		}
		for i, script := range v.opts.InitScripts {
			v.run(fmt.Sprintf("init-%d.js", i), script)
		}

		switch {
		case markup != "":
			v.loadMarkup(gen, markup, pageURL)
		case pageURL != "":
			v.fetch(gen, pageURL, func(resp ipc.Response) {
				if resp.Status != http.StatusOK {
					v.logger.Warn("Page load failed", zap.String("url", pageURL), zap.Int("status", resp.Status))
					v.finishLoad()
					return
				}
				v.loadMarkup(gen, string(resp.Body), pageURL)
			})
		default:
			v.finishLoad()
		}
	}
}

func (v *View) loadMarkup(gen int, markup, base string) {
	p, err := parsePage(markup, base)
	if err != nil {
		v.fail("parse", err)
		v.finishLoad()
		return
	}
	v.mu.Lock()
	v.title = p.title
	v.mu.Unlock()
	_ = v.vm.Get("document").ToObject(v.vm).Set("title", p.title)
	v.runScripts(gen, p.scripts)
}

// runScripts executes scripts in document order, fetching external ones
// through the protocol handlers before moving on.
func (v *View) runScripts(gen int, scripts []pageScript) {
	for i, s := range scripts {
		if s.src == "" {
			v.run(fmt.Sprintf("inline-%d.js", i), s.source)
			continue
		}
		rest := scripts[i+1:]
		src := s.src
		v.fetch(gen, src, func(resp ipc.Response) {
			if resp.Status == http.StatusOK {
				v.run(src, string(resp.Body))
			} else {
				v.logger.Warn("Script load failed", zap.String("src", src), zap.Int("status", resp.Status))
			}
			v.runScripts(gen, rest)
		})
		return
	}
	v.finishLoad()
}

func (v *View) finishLoad() {
	if v.vm == nil {
		return
	}
	doc := v.vm.Get("document").ToObject(v.vm)
	_ = doc.Set("readyState", "complete")
	v.dispatch("document", "DOMContentLoaded", nil)
	v.dispatch("window", "load", nil)
}

// fetch sends a GET through the handler registered for the URI scheme.
// The callback runs as a job for the same page.
func (v *View) fetch(gen int, uri string, cb func(ipc.Response)) {
	v.request(gen, ipc.Request{Method: http.MethodGet, URI: uri}, cb)
}

func (v *View) request(gen int, req ipc.Request, cb func(ipc.Response)) {
	var once sync.Once
	sink := ipc.SinkFunc(func(resp ipc.Response) {
		once.Do(func() {
			v.enqueueFor(gen, func() { cb(resp) })
		})
	})

	scheme := schemeOf(req.URI)
	handler, ok := v.opts.Protocol(scheme)
	if !ok && v.web != nil && web.Handles(scheme) {
		defaults := web.Defaults{Headers: v.opts.Headers, UserAgent: v.opts.UserAgent}
		go func() { sink.Respond(v.web.Do(v.ctx, req, defaults)) }()
		return
	}
	if !ok {
		sink.Respond(ipc.Response{
			Status: http.StatusNotFound,
			Body:   []byte("no handler for " + req.URI),
		})
		return
	}
	handler(req, sink)
}

func (v *View) installPrelude(pageURL string) error {
	fnValue, err := v.vm.RunScript("prelude.js", prelude)
	if err != nil {
		return err
	}
	fn, ok := goja.AssertFunction(fnValue)
	if !ok {
		return errors.New("prelude did not evaluate to a function")
	}

	native := v.vm.NewObject()
	gen := v.gen
	_ = native.Set("url", pageURL)
	_ = native.Set("userAgent", v.opts.UserAgent)
	_ = native.Set("log", func(level, msg string) {
		v.logger.Debug("console."+level, zap.String("message", msg))
	})
	_ = native.Set("postMessage", func(msg string) {
		if v.opts.OnMessage != nil {
			v.opts.OnMessage([]byte(msg))
		}
	})
	_ = native.Set("request", func(call goja.FunctionCall) goja.Value {
		req := ipc.Request{
			Method:  call.Argument(0).String(),
			URI:     call.Argument(1).String(),
			Headers: exportHeaders(call.Argument(2)),
			Body:    exportBody(call.Argument(3)),
		}
		cb, _ := goja.AssertFunction(call.Argument(4))
		v.request(gen, req, func(resp ipc.Response) {
			if cb == nil {
				return
			}
			result := map[string]any{
				"status":  resp.Status,
				"headers": resp.Headers,
				"body":    string(resp.Body),
			}
			if _, err := cb(goja.Undefined(), v.vm.ToValue(result)); err != nil {
				v.fail("request callback", err)
			}
		})
		return goja.Undefined()
	})

	_, err = fn(goja.Undefined(), native)
	return err
}

func (v *View) run(name, source string) {
	if _, err := v.vm.RunScript(name, source); err != nil {
		v.fail(name, err)
	}
}

func (v *View) dispatch(target, eventType string, props map[string]any) {
	obj := v.vm.Get(target)
	if obj == nil || goja.IsUndefined(obj) {
		return
	}
	ctor, ok := goja.AssertConstructor(v.vm.Get("Event"))
	if !ok {
		return
	}
	var init goja.Value = goja.Undefined()
	if props != nil {
		init = v.vm.ToValue(props)
	}
	ev, err := ctor(nil, v.vm.ToValue(eventType), init)
	if err != nil {
		v.fail("event", err)
		return
	}
	dispatchFn, ok := goja.AssertFunction(obj.ToObject(v.vm).Get("dispatchEvent"))
	if !ok {
		return
	}
	if _, err := dispatchFn(obj, ev); err != nil {
		v.fail("dispatch "+eventType, err)
	}
}

func (v *View) fail(what string, err error) {
	v.mu.Lock()
	v.lastError = err
	v.mu.Unlock()
	v.logger.Debug("Script error", zap.String("where", what), zap.Error(err))
}

func exportHeaders(val goja.Value) map[string]string {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	raw, ok := val.Export().(map[string]any)
	if !ok {
		return nil
	}
	headers := make(map[string]string, len(raw))
	for k, v := range raw {
		headers[k] = fmt.Sprint(v)
	}
	return headers
}

func exportBody(val goja.Value) []byte {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return []byte(val.String())
}
