package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8740", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Resource config
	assert.Equal(t, "./www", cfg.Resources.Root)
	assert.Equal(t, "index.html", cfg.Resources.IndexFile)
	assert.Equal(t, []string{"**/.*"}, cfg.Resources.Hidden)

	// Host link config
	assert.Equal(t, 60, cfg.Hostlink.FrameRate)
	assert.True(t, cfg.Hostlink.Pumped)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Surface config
	assert.True(t, cfg.Surface.Clipboard)
	assert.True(t, cfg.Surface.Focused)
	assert.Equal(t, "#ffffff", cfg.Surface.BackgroundColor)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Hostlink, cfg.Hostlink)
	assert.Equal(t, def.RateLimit, cfg.RateLimit)
	assert.Equal(t, def.Surface.BackgroundColor, cfg.Surface.BackgroundColor)
	assert.Equal(t, def.Surface.Clipboard, cfg.Surface.Clipboard)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                 "9000",
		"LOG_LEVEL":            "debug",
		"RESOURCE_ROOT":        "/srv/www",
		"RESOURCE_MIME":        "wasm:application/wasm,map:application/json",
		"HOSTLINK_FPS":         "30",
		"BRIDGE_URL":           "res://localhost/index.html",
		"BRIDGE_DEVTOOLS":      "true",
		"BRIDGE_HEADERS":       "X-Client:engine",
		"BRIDGE_FORWARD_INPUT": "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/srv/www", cfg.Resources.Root)
	assert.Equal(t, map[string]string{"wasm": "application/wasm", "map": "application/json"}, cfg.Resources.MimeOverrides)
	assert.Equal(t, 30, cfg.Hostlink.FrameRate)
	assert.Equal(t, "res://localhost/index.html", cfg.Surface.URL)
	assert.True(t, cfg.Surface.Devtools)
	assert.Equal(t, map[string]string{"X-Client": "engine"}, cfg.Surface.Headers)
	assert.True(t, cfg.Surface.ForwardInputEvents)
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	data := `
[server]
port = "9100"

[resources]
root = "/opt/ui"

[surface]
url = "res://localhost/app.html"
full_window = true
invoke_timeout_ms = 2500
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, "/opt/ui", cfg.Resources.Root)
	assert.True(t, cfg.Surface.FullWindow)
	assert.Equal(t, "res://localhost/app.html", cfg.Surface.URL)
	assert.Equal(t, 2500, cfg.Surface.InvokeTimeoutMS)
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	data := `
logging:
  level: warn
surface:
  html: "<p>hi</p>"
  transparent: true
  headers:
    X-Trace: "1"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "<p>hi</p>", cfg.Surface.HTML)
	assert.True(t, cfg.Surface.Transparent)
	assert.Equal(t, "1", cfg.Surface.Headers["X-Trace"])
}

func TestLoadFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSurfaceContent(t *testing.T) {
	tests := []struct {
		name      string
		cfg       SurfaceConfig
		wantKind  ContentKind
		wantValue string
		warnings  int
	}{
		{"none", SurfaceConfig{}, ContentNone, "", 0},
		{"url only", SurfaceConfig{URL: "https://example.com"}, ContentURL, "https://example.com", 0},
		{"html only", SurfaceConfig{HTML: "<b>x</b>"}, ContentHTML, "<b>x</b>", 0},
		{"both prefers html", SurfaceConfig{URL: "https://example.com", HTML: "<b>x</b>"}, ContentHTML, "<b>x</b>", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, value := tt.cfg.Content()
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantValue, value)

			warnings, err := tt.cfg.Validate()
			require.NoError(t, err)
			assert.Len(t, warnings, tt.warnings)
		})
	}
}

func TestSurfaceValidateErrors(t *testing.T) {
	_, err := SurfaceConfig{BackgroundColor: "tomato"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidColor)

	_, err = SurfaceConfig{InvokeTimeoutMS: -1}.Validate()
	assert.Error(t, err)

	_, err = SurfaceConfig{Headers: map[string]string{" ": "x"}}.Validate()
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"", color.RGBA{255, 255, 255, 255}},
		{"#000", color.RGBA{0, 0, 0, 255}},
		{"#ff8000", color.RGBA{255, 128, 0, 255}},
		{"#11223344", color.RGBA{0x11, 0x22, 0x33, 0x44}},
		{"00000000", color.RGBA{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseColor("#12345")
	assert.ErrorIs(t, err, ErrInvalidColor)
	_, err = ParseColor("#gggggg")
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestInvokeTimeout(t *testing.T) {
	assert.Zero(t, SurfaceConfig{}.InvokeTimeout())
	assert.Equal(t, "1.5s", SurfaceConfig{InvokeTimeoutMS: 1500}.InvokeTimeout().String())
}
