package headless

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/geometry"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/renderer"
)

var (
	_ renderer.Handle = (*View)(nil)
	_ renderer.Pumper = (*View)(nil)

	errNoPage = errors.New("no page loaded")
)

// SetBounds records the bounds.
func (v *View) SetBounds(r geometry.Rect) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return renderer.ErrClosed
	}
	v.bounds = r
	return nil
}

// SetVisible records visibility.
func (v *View) SetVisible(visible bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return renderer.ErrClosed
	}
	v.visible = visible
	return nil
}

// EvaluateScript queues script on the current page.
func (v *View) EvaluateScript(script string) error {
	if !v.enqueue(func() {
		if v.vm != nil {
			v.run("eval.js", script)
		}
	}) {
		return renderer.ErrClosed
	}
	return nil
}

// LoadURL navigates to url, fetching it through its scheme's handler.
func (v *View) LoadURL(url string) error {
	return v.navigate(url, "")
}

// LoadHTML replaces the page with markup.
func (v *View) LoadHTML(html string) error {
	return v.navigate(DefaultBase, html)
}

// Reload loads the current content again.
func (v *View) Reload() error {
	v.mu.Lock()
	url, html := v.url, v.html
	v.mu.Unlock()
	return v.navigate(url, html)
}

func (v *View) navigate(url, html string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return renderer.ErrClosed
	}
	v.url, v.html = url, html
	v.loads++
	v.mu.Unlock()

	v.enqueue(v.loadJob(url, html))
	return nil
}

// ClearBrowsingData counts the request; the view keeps no storage.
func (v *View) ClearBrowsingData() error {
	return v.update(func() { v.clears++ })
}

// OpenDevtools opens devtools if the view was built with them enabled.
func (v *View) OpenDevtools() error {
	if !v.opts.Devtools {
		return ErrDevtoolsDisabled
	}
	return v.update(func() { v.devtools = true })
}

// CloseDevtools closes devtools.
func (v *View) CloseDevtools() error {
	return v.update(func() { v.devtools = false })
}

// IsDevtoolsOpen reports the devtools state.
func (v *View) IsDevtoolsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.devtools
}

// Focus gives the view keyboard focus.
func (v *View) Focus() error {
	return v.update(func() { v.focused = true })
}

// FocusParent hands keyboard focus back to the host window.
func (v *View) FocusParent() error {
	return v.update(func() { v.focused = false })
}

// Print counts print requests.
func (v *View) Print() error {
	return v.update(func() { v.prints++ })
}

// Close stops the loop and drops queued jobs. It does not wait for a job
// that is already running; use Done for that.
func (v *View) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return renderer.ErrClosed
	}
	v.closed = true
	v.queue = nil
	v.mu.Unlock()

	v.cancel()
	close(v.quit)
	return nil
}

func (v *View) update(fn func()) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return renderer.ErrClosed
	}
	fn()
	return nil
}

// DispatchDOMEvent fires an Event of eventType with props on document, as
// if the user had produced it.
func (v *View) DispatchDOMEvent(eventType string, props map[string]any) error {
	if !v.enqueue(func() {
		if v.vm != nil {
			v.dispatch("document", eventType, props)
		}
	}) {
		return renderer.ErrClosed
	}
	return nil
}

// Query evaluates expr on the page and returns its JSON-decoded value. It
// blocks until the job has run, so a pumped view must be pumped
// concurrently.
func (v *View) Query(expr string) (any, error) {
	type result struct {
		value any
		err   error
	}
	ch := make(chan result, 1)
	if !v.enqueue(func() {
		if v.vm == nil {
			ch <- result{err: errNoPage}
			return
		}
		val, err := v.vm.RunString("JSON.stringify(" + expr + ")")
		if err != nil {
			ch <- result{err: err}
			return
		}
		if goja.IsUndefined(val) || goja.IsNull(val) {
			ch <- result{}
			return
		}
		var out any
		err = sonic.ConfigStd.UnmarshalFromString(val.String(), &out)
		ch <- result{value: out, err: err}
	}) {
		return nil, renderer.ErrClosed
	}

	select {
	case r := <-ch:
		return r.value, r.err
	case <-v.quit:
		return nil, renderer.ErrClosed
	}
}

// State is a snapshot of the view for inspection.
type State struct {
	Bounds       geometry.Rect
	Visible      bool
	DevtoolsOpen bool
	Focused      bool
	URL          string
	Title        string
	Loads        int
	Prints       int
	Clears       int
	Closed       bool
	LastError    error
}

// State returns a snapshot of the view.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Bounds:       v.bounds,
		Visible:      v.visible,
		DevtoolsOpen: v.devtools,
		Focused:      v.focused,
		URL:          v.url,
		Title:        v.title,
		Loads:        v.loads,
		Prints:       v.prints,
		Clears:       v.clears,
		Closed:       v.closed,
		LastError:    v.lastError,
	}
}
