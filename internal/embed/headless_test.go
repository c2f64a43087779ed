package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/config"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/input"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/renderer/headless"
	"github.com/GriffinCanCode/AgentOS/webbridge/tests/helpers/testutil"
)

const appScript = `
bridge.onMessage(function (msg) { bridge.postMessage("echo:" + msg); });
bridge.resource("/localhost/data.json").then(function (r) {
	bridge.postMessage("data:" + r.status + ":" + r.body);
});
bridge.invoke(JSON.stringify({ op: "add", a: 2, b: 3 }), { "X-Op": "add" }).then(function (r) {
	bridge.postMessage("result:" + r.status + ":" + r.body);
});
`

func appResolver(t *testing.T) ipc.Resolver {
	return testutil.MemResolver(t, map[string]string{
		"/localhost/index.html": `<html><head><title>App</title><script src="app.js"></script></head><body></body></html>`,
		"/localhost/app.js":     appScript,
		"/localhost/data.json":  `{"ok":true}`,
	})
}

func TestHeadlessEndToEnd(t *testing.T) {
	cfg := config.DefaultSurface()
	cfg.URL = "res://localhost/index.html"
	cfg.ForwardInputEvents = true

	host := testutil.NewMockHost(t)
	builder := headless.NewBuilder()
	s, err := New(cfg, host, builder, WithResolver(appResolver(t)))
	require.NoError(t, err)
	require.NoError(t, s.Attach())
	view := builder.Last()
	t.Cleanup(func() {
		s.Destroy()
		<-view.Done()
	})

	assert.Equal(t, `data:200:{"ok":true}`, host.WaitMessage(t))

	inv := host.WaitInvocation(t)
	assert.Equal(t, "POST", inv.Method)
	assert.Equal(t, "ipc://localhost/plugin:invoke", inv.URI)
	assert.Equal(t, "add", inv.Headers["X-Op"])
	assert.JSONEq(t, `{"op":"add","a":2,"b":3}`, string(inv.Body))

	require.NoError(t, s.Resolve(inv.Token, ipc.Response{Status: 200, Body: []byte("5")}))
	assert.Equal(t, "result:200:5", host.WaitMessage(t))

	s.PostMessage("ping")
	assert.Equal(t, "echo:ping", host.WaitMessage(t))

	require.NoError(t, view.DispatchDOMEvent("mousedown", map[string]any{"clientX": 3, "clientY": 4, "button": 2}))
	require.NoError(t, view.DispatchDOMEvent("keydown", map[string]any{"key": "a", "keyCode": 65}))
	_, err = view.Query("1")
	require.NoError(t, err)

	require.Len(t, host.Pushed(), 1)
	press := host.Pushed()[0].(input.PointerButton)
	assert.Equal(t, input.MouseButtonRight, press.Button)
	assert.Equal(t, input.Vec2{X: 3, Y: 4}, press.Position)
	assert.Equal(t, input.MaskRight, press.ButtonMask)
	require.Len(t, host.Parsed(), 1)
	assert.Equal(t, input.Key{Keycode: 'A', RawCode: 65, Pressed: true}, host.Parsed()[0])

	assert.Equal(t, "App", view.State().Title)
}

func TestHeadlessPumpedRunsInProcess(t *testing.T) {
	cfg := config.DefaultSurface()
	cfg.HTML = `<script>bridge.postMessage("booted")</script>`

	host := testutil.NewMockHost(t)
	builder := headless.NewBuilder(headless.WithPump(true))
	s, err := New(cfg, host, builder)
	require.NoError(t, err)
	require.NoError(t, s.Attach())
	t.Cleanup(s.Destroy)

	assert.Empty(t, host.Messages())
	s.Process()
	assert.Equal(t, []string{"booted"}, host.Messages())
}

func TestHeadlessDestroyAnswersPendingInvoke(t *testing.T) {
	cfg := config.DefaultSurface()
	cfg.HTML = `<script>bridge.invoke("x").then(function (r) { window.status = r.status; })</script>`

	host := testutil.NewMockHost(t)
	builder := headless.NewBuilder()
	s, err := New(cfg, host, builder)
	require.NoError(t, err)
	require.NoError(t, s.Attach())
	view := builder.Last()

	host.WaitInvocation(t)
	assert.Equal(t, 1, s.Router().Pending().Len())

	s.Destroy()
	<-view.Done()
	assert.Equal(t, 0, s.Router().Pending().Len())
	assert.True(t, view.State().Closed)
}
