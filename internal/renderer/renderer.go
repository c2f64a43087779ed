// Package renderer defines the contract between a surface and the web
// engine that draws it.
//
// A Builder creates one Handle per surface. Handles are driven from the
// host frame loop; protocol handlers and the message callback may be called
// from the engine's own goroutine.
package renderer

import (
	"errors"
	"image/color"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/geometry"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
)

// ErrClosed is returned by handle calls after Close.
var ErrClosed = errors.New("renderer closed")

// Handle is a live web view.
type Handle interface {
	SetBounds(r geometry.Rect) error
	SetVisible(visible bool) error
	EvaluateScript(script string) error
	LoadURL(url string) error
	LoadHTML(html string) error
	Reload() error
	ClearBrowsingData() error
	OpenDevtools() error
	CloseDevtools() error
	IsDevtoolsOpen() bool
	Focus() error
	FocusParent() error
	Print() error
	Close() error
}

// Pumper is implemented by handles whose event queue must be drained from
// the host frame loop.
type Pumper interface {
	Pump()
}

// Capabilities describe a builder's platform requirements.
type Capabilities struct {
	// RequiresPump means the host must call Pump once per frame.
	RequiresPump bool
}

// Builder creates handles.
type Builder interface {
	Build(opts Options) (Handle, error)
	Capabilities() Capabilities
}

// ProtocolHandler answers a custom-scheme request. It must respond exactly
// once, possibly later and from another goroutine.
type ProtocolHandler func(req ipc.Request, sink ipc.ResponseSink)

// Options configure a new handle.
type Options struct {
	URL  string
	HTML string

	Transparent      bool
	Background       color.RGBA
	Devtools         bool
	Headers          map[string]string
	UserAgent        string
	ZoomHotkeys      bool
	Clipboard        bool
	Incognito        bool
	Focused          bool
	AcceptFirstMouse bool

	Bounds  geometry.Rect
	Visible bool

	// InitScripts run in order before any page script.
	InitScripts []string
	// Protocols maps a scheme ("res", "ipc") to its handler.
	Protocols map[string]ProtocolHandler
	// OnMessage receives every window.ipc.postMessage body.
	OnMessage func(body []byte)
}

// Protocol returns the handler for scheme.
func (o Options) Protocol(scheme string) (ProtocolHandler, bool) {
	h, ok := o.Protocols[scheme]
	return h, ok && h != nil
}
