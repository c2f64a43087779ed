package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordIPC("message")
		m.RecordResource(404)
		m.SetPendingCalls(3)
		m.RecordInvoke("resolved", time.Millisecond)
		m.RecordInput("mouse_move")
		m.SurfaceAttached()
		m.SurfaceDestroyed()
		m.IncHostlinkSessions()
		m.DecHostlinkSessions()
		m.RecordHostlinkFrame("in", "eval")
		m.RecordHTTPRequest("GET", "/", "200", time.Millisecond)
		m.RecordWebRequest("ok", time.Millisecond)
	})
}

func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordIPC("message")
	a.RecordIPC("message")
	b.RecordIPC("message")

	assert.Equal(t, 2.0, testutil.ToFloat64(a.IPCMessages.WithLabelValues("message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.IPCMessages.WithLabelValues("message")))
}

func TestRecorders(t *testing.T) {
	m := NewMetrics()

	m.RecordResource(200)
	m.RecordResource(404)
	m.RecordResource(404)
	m.SetPendingCalls(4)
	m.SurfaceAttached()
	m.SurfaceAttached()
	m.SurfaceDestroyed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResourceRequests.WithLabelValues("200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResourceRequests.WithLabelValues("404")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PendingCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SurfacesActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SurfacesTotal))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/healthz", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bridge_http_requests_total")
}
