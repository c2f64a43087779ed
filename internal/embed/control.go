package embed

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/renderer"
)

// Every control call is best effort: without a live renderer it does
// nothing, and renderer errors are logged at debug level.

// PostMessage dispatches a "message" CustomEvent on document with msg as
// its detail.
func (s *Surface) PostMessage(msg string) {
	h := s.current()
	if h == nil {
		return
	}
	script, err := messageScript(msg)
	if err != nil {
		s.logger.Debug("Failed to encode message", zap.Error(err))
		return
	}
	s.call("post_message", func() error { return h.EvaluateScript(script) })
}

// Eval runs script in the page without waiting for a result.
func (s *Surface) Eval(script string) {
	s.withHandle("eval", func(h renderer.Handle) error { return h.EvaluateScript(script) })
}

// Resize recomputes and pushes bounds.
func (s *Surface) Resize() {
	h := s.current()
	if h == nil {
		return
	}
	s.geometry.Sync(boundsTarget{s: s, handle: h})
}

// SetVisible shows or hides the renderer, then recomputes bounds.
func (s *Surface) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()

	h := s.current()
	if h == nil {
		return
	}
	s.call("set_visible", func() error { return h.SetVisible(visible) })
	s.geometry.Sync(boundsTarget{s: s, handle: h})
}

// SetFullWindow switches between full-window and embedded bounds.
func (s *Surface) SetFullWindow(on bool) {
	s.geometry.SetFullWindow(on)
	s.Resize()
}

// LoadURL navigates to url.
func (s *Surface) LoadURL(url string) {
	s.withHandle("load_url", func(h renderer.Handle) error { return h.LoadURL(url) })
}

// LoadHTML replaces the page with markup.
func (s *Surface) LoadHTML(html string) {
	s.withHandle("load_html", func(h renderer.Handle) error { return h.LoadHTML(html) })
}

// Reload reloads the current page.
func (s *Surface) Reload() {
	s.withHandle("reload", renderer.Handle.Reload)
}

// ClearBrowsingData clears cookies, storage and cache.
func (s *Surface) ClearBrowsingData() {
	s.withHandle("clear_browsing_data", renderer.Handle.ClearBrowsingData)
}

// OpenDevtools opens the inspector.
func (s *Surface) OpenDevtools() {
	s.withHandle("open_devtools", renderer.Handle.OpenDevtools)
}

// CloseDevtools closes the inspector.
func (s *Surface) CloseDevtools() {
	s.withHandle("close_devtools", renderer.Handle.CloseDevtools)
}

// IsDevtoolsOpen reports the inspector state; false without a renderer.
func (s *Surface) IsDevtoolsOpen() bool {
	h := s.current()
	return h != nil && h.IsDevtoolsOpen()
}

// Focus moves keyboard focus into the page. Focus is reasserted whenever
// the host window regains focus.
func (s *Surface) Focus() {
	s.mu.Lock()
	s.wantFocus = true
	s.mu.Unlock()
	s.withHandle("focus", renderer.Handle.Focus)
}

// FocusParent returns keyboard focus to the host.
func (s *Surface) FocusParent() {
	s.mu.Lock()
	s.wantFocus = false
	s.mu.Unlock()
	s.withHandle("focus_parent", renderer.Handle.FocusParent)
}

// Print opens the print dialog.
func (s *Surface) Print() {
	s.withHandle("print", renderer.Handle.Print)
}

func (s *Surface) withHandle(op string, fn func(renderer.Handle) error) {
	h := s.current()
	if h == nil {
		return
	}
	s.call(op, func() error { return fn(h) })
}
