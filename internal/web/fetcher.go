package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/monitoring"
)

// Default fetcher settings.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 2
	DefaultThreshold = 5
	DefaultCooldown  = 30 * time.Second
)

// Defaults are applied to every request of one view. Request headers win.
type Defaults struct {
	Headers   map[string]string
	UserAgent string
}

// Fetcher performs http and https requests for headless views. Each origin
// has its own circuit breaker, so one dead host does not slow every page
// down.
type Fetcher struct {
	client    *resty.Client
	timeout   time.Duration
	retries   int
	threshold int
	cooldown  time.Duration
	now       func() time.Time
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	mu       sync.Mutex
	breakers map[string]*breaker
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithRetries sets how many times a failed transport attempt is retried.
func WithRetries(n int) Option {
	return func(f *Fetcher) { f.retries = n }
}

// WithBreaker sets the consecutive failures that open an origin's circuit
// and how long it stays open.
func WithBreaker(threshold int, cooldown time.Duration) Option {
	return func(f *Fetcher) {
		f.threshold = threshold
		f.cooldown = cooldown
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(f *Fetcher) { f.metrics = metrics }
}

// NewFetcher creates a fetcher over a pooled transport.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultTimeout,
		retries:   DefaultRetries,
		threshold: DefaultThreshold,
		cooldown:  DefaultCooldown,
		now:       time.Now,
		breakers:  make(map[string]*breaker),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.threshold <= 0 {
		f.threshold = DefaultThreshold
	}
	f.logger = logging.OrNop(f.logger).Named("web")

	pooled := retryablehttp.NewClient()
	pooled.Logger = nil

	f.client = resty.New().
		SetTimeout(f.timeout).
		SetRetryCount(f.retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetTransport(pooled.HTTPClient.Transport)
	return f
}

// Handles reports whether scheme is fetched over the network.
func Handles(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

// State returns the breaker state for the origin of uri.
func (f *Fetcher) State(uri string) BreakerState {
	origin, err := originOf(uri)
	if err != nil {
		return BreakerClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.breakers[origin]
	if !ok {
		return BreakerClosed
	}
	return b.current(f.now())
}

// Do performs req and always returns a response. Network failures become
// 502 and requests to an open circuit 503.
func (f *Fetcher) Do(ctx context.Context, req ipc.Request, defaults Defaults) ipc.Response {
	start := time.Now()
	origin, err := originOf(req.URI)
	if err != nil {
		return f.finish("invalid", start, textResponse(http.StatusBadRequest, err.Error()))
	}
	if !f.allow(origin) {
		return f.finish("circuit_open", start, textResponse(http.StatusServiceUnavailable, "origin unavailable: "+origin))
	}

	r := f.client.R().
		SetContext(ctx).
		SetHeaders(defaults.Headers).
		SetHeaders(req.Headers)
	if defaults.UserAgent != "" {
		r.SetHeader("User-Agent", defaults.UserAgent)
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	resp, err := r.Execute(method, req.URI)
	if err != nil {
		if ctx.Err() != nil {
			f.release(origin)
			return f.finish("canceled", start, textResponse(http.StatusBadGateway, ctx.Err().Error()))
		}
		f.record(origin, false)
		f.logger.Debug("Fetch failed", zap.String("uri", req.URI), zap.Error(err))
		return f.finish("error", start, textResponse(http.StatusBadGateway, err.Error()))
	}

	status := resp.StatusCode()
	f.record(origin, status < http.StatusInternalServerError)

	headers := make(map[string]string, len(resp.Header()))
	for name, values := range resp.Header() {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}
	return f.finish("ok", start, ipc.Response{Status: status, Headers: headers, Body: resp.Body()})
}

// Close drops idle connections.
func (f *Fetcher) Close() {
	f.client.GetClient().CloseIdleConnections()
}

func (f *Fetcher) finish(outcome string, start time.Time, resp ipc.Response) ipc.Response {
	f.metrics.RecordWebRequest(outcome, time.Since(start))
	return resp
}

func (f *Fetcher) breakerFor(origin string) *breaker {
	b, ok := f.breakers[origin]
	if !ok {
		b = &breaker{threshold: f.threshold, cooldown: f.cooldown}
		f.breakers[origin] = b
	}
	return b
}

func (f *Fetcher) allow(origin string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.breakerFor(origin).allow(f.now())
}

func (f *Fetcher) record(origin string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.breakerFor(origin)
	before := b.current(f.now())
	b.record(f.now(), ok)
	if b.state != before {
		f.logger.Info("Origin circuit changed",
			zap.String("origin", origin),
			zap.String("from", before.String()),
			zap.String("to", b.state.String()))
	}
}

// release gives back a half-open trial that ended without a verdict.
func (f *Fetcher) release(origin string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.breakerFor(origin).trial = false
}

var errUnsupported = errors.New("unsupported scheme")

func originOf(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(u.Scheme)
	if !Handles(scheme) || u.Host == "" {
		return "", errUnsupported
	}
	return scheme + "://" + strings.ToLower(u.Host), nil
}

func textResponse(status int, body string) ipc.Response {
	return ipc.Response{
		Status:  status,
		Headers: map[string]string{"Content-Type": "text/plain"},
		Body:    []byte(body),
	}
}
