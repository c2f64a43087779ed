package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidColor is returned for background colors that are not #RGB, #RRGGBB or #RRGGBBAA.
var ErrInvalidColor = errors.New("invalid color")

// SurfaceConfig is the host-facing configuration of one embedded surface.
// It is read once, when the surface attaches.
type SurfaceConfig struct {
	FullWindow         bool              `envconfig:"BRIDGE_FULL_WINDOW" default:"false" toml:"full_window" yaml:"full_window"`
	URL                string            `envconfig:"BRIDGE_URL" toml:"url" yaml:"url"`
	HTML               string            `envconfig:"BRIDGE_HTML" toml:"html" yaml:"html"`
	Transparent        bool              `envconfig:"BRIDGE_TRANSPARENT" default:"false" toml:"transparent" yaml:"transparent"`
	BackgroundColor    string            `envconfig:"BRIDGE_BACKGROUND" default:"#ffffff" toml:"background_color" yaml:"background_color"`
	Devtools           bool              `envconfig:"BRIDGE_DEVTOOLS" default:"false" toml:"devtools" yaml:"devtools"`
	Headers            map[string]string `envconfig:"BRIDGE_HEADERS" toml:"headers" yaml:"headers"`
	UserAgent          string            `envconfig:"BRIDGE_USER_AGENT" toml:"user_agent" yaml:"user_agent"`
	ZoomHotkeys        bool              `envconfig:"BRIDGE_ZOOM_HOTKEYS" default:"false" toml:"zoom_hotkeys" yaml:"zoom_hotkeys"`
	Clipboard          bool              `envconfig:"BRIDGE_CLIPBOARD" default:"true" toml:"clipboard" yaml:"clipboard"`
	Incognito          bool              `envconfig:"BRIDGE_INCOGNITO" default:"false" toml:"incognito" yaml:"incognito"`
	Focused            bool              `envconfig:"BRIDGE_FOCUSED" default:"true" toml:"focused" yaml:"focused"`
	AcceptFirstMouse   bool              `envconfig:"BRIDGE_ACCEPT_FIRST_MOUSE" default:"false" toml:"accept_first_mouse" yaml:"accept_first_mouse"`
	ForwardInputEvents bool              `envconfig:"BRIDGE_FORWARD_INPUT" default:"false" toml:"forward_input_events" yaml:"forward_input_events"`

	// InvokeTimeoutMS bounds how long an invoke may stay unresolved. Zero
	// disables the sweep and unresolved calls wait until teardown.
	InvokeTimeoutMS int `envconfig:"BRIDGE_INVOKE_TIMEOUT_MS" default:"0" toml:"invoke_timeout_ms" yaml:"invoke_timeout_ms"`
}

// ContentKind names which content source a surface loads.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentURL
	ContentHTML
)

// String returns the string representation of the kind
func (k ContentKind) String() string {
	switch k {
	case ContentURL:
		return "url"
	case ContentHTML:
		return "html"
	default:
		return "none"
	}
}

// DefaultSurface returns the documented surface defaults.
func DefaultSurface() SurfaceConfig {
	return SurfaceConfig{
		BackgroundColor: "#ffffff",
		Clipboard:       true,
		Focused:         true,
	}
}

// Content returns the source to load. Inline HTML wins when both are set.
func (c SurfaceConfig) Content() (ContentKind, string) {
	switch {
	case c.HTML != "":
		return ContentHTML, c.HTML
	case c.URL != "":
		return ContentURL, c.URL
	default:
		return ContentNone, ""
	}
}

// InvokeTimeout returns the configured invoke timeout; zero means none.
func (c SurfaceConfig) InvokeTimeout() time.Duration {
	if c.InvokeTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.InvokeTimeoutMS) * time.Millisecond
}

// Background parses BackgroundColor. An empty value means opaque white.
func (c SurfaceConfig) Background() (color.RGBA, error) {
	return ParseColor(c.BackgroundColor)
}

// Validate checks the configuration. Conflicts that have a deterministic
// resolution are reported as warnings, everything else as an error.
func (c SurfaceConfig) Validate() (warnings []string, err error) {
	if c.URL != "" && c.HTML != "" {
		warnings = append(warnings, "both url and html are set; html takes precedence")
	}
	if _, err := ParseColor(c.BackgroundColor); err != nil {
		return warnings, fmt.Errorf("background_color: %w", err)
	}
	if c.InvokeTimeoutMS < 0 {
		return warnings, fmt.Errorf("invoke_timeout_ms must not be negative, got %d", c.InvokeTimeoutMS)
	}
	for name := range c.Headers {
		if strings.TrimSpace(name) == "" {
			return warnings, errors.New("headers: empty header name")
		}
	}
	return warnings, nil
}

// ParseColor parses #RGB, #RRGGBB and #RRGGBBAA hex colors.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
