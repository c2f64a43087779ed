package hostlink

import (
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/geometry"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/input"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
)

// Outbound frame types.
const (
	FrameAttached = "attached"
	FrameMessage  = "message"
	FrameInvoke   = "invoke"
	FrameInput    = "input"
	FrameError    = "error"
)

// Inbound frame types.
const (
	FrameResolve           = "resolve"
	FramePostMessage       = "post_message"
	FrameEval              = "eval"
	FrameLayout            = "layout"
	FrameResize            = "resize"
	FrameSetVisible        = "set_visible"
	FrameSetFullWindow     = "set_full_window"
	FrameLoadURL           = "load_url"
	FrameLoadHTML          = "load_html"
	FrameReload            = "reload"
	FrameClearBrowsingData = "clear_browsing_data"
	FrameDevtools          = "devtools"
	FrameFocus             = "focus"
	FrameFocusParent       = "focus_parent"
	FramePrint             = "print"
)

// Input routes.
const (
	RoutePush  = "push"
	RouteParse = "parse"
)

// AttachedFrame is the first frame of every session.
type AttachedFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	SurfaceID string `json:"surface_id"`
}

// MessageFrame carries a page message that was not synthetic input.
type MessageFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// InvokeFrame asks the host to complete an invoke. The host answers with a
// resolve frame carrying the same token. Body is base64 on the wire.
type InvokeFrame struct {
	Type    string            `json:"type"`
	Token   string            `json:"token"`
	Method  string            `json:"method"`
	URI     string            `json:"uri"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body"`
}

// InputFrame is a translated input event routed to the host's viewport
// (push) or input parser (parse).
type InputFrame struct {
	Type    string  `json:"type"`
	Route   string  `json:"route"`
	Event   string  `json:"event"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	RelX    float64 `json:"rel_x,omitempty"`
	RelY    float64 `json:"rel_y,omitempty"`
	Button  string  `json:"button,omitempty"`
	Pressed bool    `json:"pressed"`
	Mask    uint32  `json:"mask"`
	Keycode int     `json:"keycode,omitempty"`
	Key     string  `json:"key,omitempty"`
	RawCode int     `json:"raw_code,omitempty"`
}

// ErrorFrame reports a rejected inbound frame.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Frame   string `json:"frame,omitempty"`
}

// Rect is the wire form of geometry.Rect.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size is the wire form of geometry.Size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Command is any inbound frame. Fields not used by a type are ignored.
type Command struct {
	Type string `json:"type"`

	// resolve; Body is base64 on the wire
	Token   string            `json:"token,omitempty"`
	Status  int               `json:"status,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`

	// post_message, eval, load_url, load_html
	Text string `json:"text,omitempty"`

	// layout
	Rect     *Rect `json:"rect,omitempty"`
	Viewport *Size `json:"viewport,omitempty"`
	Focused  *bool `json:"focused,omitempty"`

	// set_visible, set_full_window, devtools
	On bool `json:"on,omitempty"`
}

func (r Rect) geometry() geometry.Rect {
	return geometry.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func (s Size) geometry() geometry.Size {
	return geometry.Size{Width: s.Width, Height: s.Height}
}

func invokeFrame(inv ipc.Invocation) InvokeFrame {
	return InvokeFrame{
		Type:    FrameInvoke,
		Token:   inv.Token,
		Method:  inv.Method,
		URI:     inv.URI,
		Headers: inv.Headers,
		Body:    inv.Body,
	}
}

func inputFrame(route string, ev input.Event) InputFrame {
	f := InputFrame{Type: FrameInput, Route: route, Event: ev.EventType()}
	switch e := ev.(type) {
	case input.PointerMotion:
		f.X, f.Y = e.Position.X, e.Position.Y
		f.RelX, f.RelY = e.Relative.X, e.Relative.Y
		f.Mask = uint32(e.ButtonMask)
	case input.PointerButton:
		f.X, f.Y = e.Position.X, e.Position.Y
		f.Button = e.Button.String()
		f.Pressed = e.Pressed
		f.Mask = uint32(e.ButtonMask)
	case input.Key:
		f.Keycode = int(e.Keycode)
		f.Key = input.KeyName(e.Keycode)
		f.RawCode = e.RawCode
		f.Pressed = e.Pressed
	}
	return f
}

func (c Command) response() ipc.Response {
	status := c.Status
	if status == 0 {
		status = 200
	}
	return ipc.Response{Status: status, Headers: c.Headers, Body: c.Body}
}
