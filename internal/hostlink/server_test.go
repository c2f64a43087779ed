package hostlink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/config"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/embed"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/geometry"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/tests/helpers/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const pageScript = `
bridge.onMessage(function (msg) { bridge.postMessage("echo:" + msg); });
bridge.invoke("ping", { "X-Op": "ping" }).then(function (r) {
	bridge.postMessage("result:" + r.status + ":" + r.body);
});
window.ipc.postMessage(JSON.stringify({ type: "mouse_down", x: 5, y: 6, button: 0 }));
`

func startServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	cfg.Hostlink.FrameRate = 200
	cfg.Surface.URL = "res://localhost/index.html"
	if mutate != nil {
		mutate(cfg)
	}

	resolver := testutil.MemResolver(t, map[string]string{
		"/localhost/index.html": `<html><head><script src="app.js"></script></head></html>`,
		"/localhost/app.js":     pageScript,
	})
	srv, err := NewServer(cfg, WithResolver(resolver), WithLogger(logging.NewNop()))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
		ts.Close()
	})
	return srv, ts
}

// client reads frames in the background so tests can wait for a type
// without losing frames of other types.
type client struct {
	conn    *websocket.Conn
	frames  chan gjson.Result
	pending []gjson.Result
}

func dial(t *testing.T, ts *httptest.Server) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()

	c := &client{conn: conn, frames: make(chan gjson.Result, 64)}
	go func() {
		defer close(c.frames)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			c.frames <- gjson.ParseBytes(data)
		}
	}()
	t.Cleanup(func() { conn.Close() })
	return c
}

func (c *client) send(t *testing.T, frame any) {
	t.Helper()
	data, err := sonic.ConfigStd.Marshal(frame)
	require.NoError(t, err)
	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, data))
}

func (c *client) await(t *testing.T, frameType string) gjson.Result {
	t.Helper()
	for i, f := range c.pending {
		if f.Get("type").String() == frameType {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return f
		}
	}
	timeout := time.After(5 * time.Second)
	for {
		select {
		case f, ok := <-c.frames:
			if !ok {
				t.Fatalf("connection closed while waiting for %q", frameType)
			}
			if f.Get("type").String() == frameType {
				return f
			}
			c.pending = append(c.pending, f)
		case <-timeout:
			t.Fatalf("timed out waiting for %q", frameType)
		}
	}
}

func (c *client) closed(t *testing.T) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-c.frames:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("connection was not closed")
		}
	}
}

func sessionFor(srv *Server, sessionID string) *Session {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for id, sess := range srv.sessions {
		if id.String() == sessionID {
			return sess
		}
	}
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	srv, ts := startServer(t, nil)
	c := dial(t, ts)

	attached := c.await(t, FrameAttached)
	assert.True(t, strings.HasPrefix(attached.Get("session_id").String(), "sess_"))
	assert.True(t, strings.HasPrefix(attached.Get("surface_id").String(), "surf_"))

	inv := c.await(t, FrameInvoke)
	assert.Equal(t, "POST", inv.Get("method").String())
	assert.Equal(t, "ipc://localhost/plugin:invoke", inv.Get("uri").String())
	assert.Equal(t, "ping", string(frameBody(t, inv)))
	assert.Equal(t, "ping", inv.Get("headers.X-Op").String())

	in := c.await(t, FrameInput)
	assert.Equal(t, RoutePush, in.Get("route").String())
	assert.Equal(t, "left", in.Get("button").String())
	assert.True(t, in.Get("pressed").Bool())
	assert.Equal(t, 5.0, in.Get("x").Float())

	c.send(t, Command{Type: FrameResolve, Token: inv.Get("token").String(), Status: 200, Body: []byte("pong")})
	assert.Equal(t, "result:200:pong", c.await(t, FrameMessage).Get("text").String())

	c.send(t, Command{Type: FramePostMessage, Text: "hi"})
	assert.Equal(t, "echo:hi", c.await(t, FrameMessage).Get("text").String())

	c.send(t, Command{Type: "explode"})
	assert.Equal(t, "unknown frame type", c.await(t, FrameError).Get("message").String())

	sess := sessionFor(srv, attached.Get("session_id").String())
	require.NotNil(t, sess)
	c.send(t, Command{
		Type:     FrameLayout,
		Rect:     &Rect{X: 10, Y: 20, Width: 300, Height: 200},
		Viewport: &Size{Width: 1280, Height: 720},
	})
	assert.Eventually(t, func() bool {
		return sess.Surface().Bounds() == geometry.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	}, 5*time.Second, 10*time.Millisecond)

	c.send(t, Command{Type: FrameSetFullWindow, On: true})
	assert.Eventually(t, func() bool {
		return sess.Surface().Bounds() == geometry.Rect{Width: 1280, Height: 720}
	}, 5*time.Second, 10*time.Millisecond)

	c.send(t, Command{Type: FrameSetVisible, On: false})
	assert.Eventually(t, func() bool { return !sess.Surface().Visible() }, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, srv.Sessions())
}

func TestDisconnectDestroysSurface(t *testing.T) {
	srv, ts := startServer(t, nil)
	c := dial(t, ts)
	attached := c.await(t, FrameAttached)
	sess := sessionFor(srv, attached.Get("session_id").String())
	require.NotNil(t, sess)

	require.NoError(t, c.conn.Close())

	select {
	case <-sess.stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}
	assert.Equal(t, embed.StateDestroyed, sess.Surface().State())
	assert.Eventually(t, func() bool { return srv.Sessions() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestShutdownClosesSessions(t *testing.T) {
	srv, ts := startServer(t, nil)
	c := dial(t, ts)
	c.await(t, FrameAttached)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	c.closed(t)
	assert.Equal(t, 0, srv.Sessions())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestInvalidSurfaceConfigIsReported(t *testing.T) {
	_, ts := startServer(t, func(cfg *config.Config) {
		cfg.Surface.BackgroundColor = "not-a-color"
	})
	c := dial(t, ts)

	f := c.await(t, FrameError)
	assert.Contains(t, f.Get("message").String(), "invalid surface configuration")
	c.closed(t)
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := startServer(t, nil)
	c := dial(t, ts)
	c.await(t, FrameAttached)
	c.await(t, FrameInvoke)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", gjson.GetBytes(body, "status").String())
	assert.Equal(t, int64(1), gjson.GetBytes(body, "sessions").Int())

	resp, err = ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "bridge_hostlink_sessions 1")
	assert.Contains(t, string(body), `bridge_hostlink_frames_total{direction="out",type="invoke"} 1`)
}

func TestRateLimitedHTTP(t *testing.T) {
	_, ts := startServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1, Enabled: true}
	})

	first, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	first.Body.Close()
	second, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	second.Body.Close()

	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestWebSurfaceLoadsRemotePage(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<script>bridge.postMessage("remote:" + location.href)</script>`))
	}))
	defer page.Close()

	_, ts := startServer(t, func(cfg *config.Config) {
		cfg.Hostlink.Web = true
		cfg.Surface.URL = page.URL + "/app"
	})
	c := dial(t, ts)

	assert.Equal(t, "remote:"+page.URL+"/app", c.await(t, FrameMessage).Get("text").String())
}
