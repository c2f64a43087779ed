package ipc

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/monitoring"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/resource"
)

// Response bodies for router-generated answers.
const (
	msgUnknownHost   = "Forbidden: Unknown host"
	msgUnknownPath   = "Not Found: Unknown path"
	msgInvokeTimeout = "Gateway Timeout: invoke was not resolved in time"
	msgSurfaceClosed = "Service Unavailable: surface destroyed"
)

// Router classifies inbound IPC traffic and dispatches it.
type Router struct {
	host     Host
	resolver Resolver
	input    InputTranslator
	pending  *PendingCalls
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithInput sets the synthetic input translator. Without one every plain
// message is forwarded to the host.
func WithInput(input InputTranslator) RouterOption {
	return func(r *Router) { r.input = input }
}

// WithPendingCalls shares an existing correlation table.
func WithPendingCalls(pending *PendingCalls) RouterOption {
	return func(r *Router) { r.pending = pending }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *monitoring.Metrics) RouterOption {
	return func(r *Router) { r.metrics = metrics }
}

// NewRouter creates a router forwarding to host and serving resources from
// resolver.
func NewRouter(host Host, resolver Resolver, opts ...RouterOption) *Router {
	r := &Router{
		host:     host,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pending == nil {
		r.pending = NewPendingCalls()
	}
	r.logger = logging.OrNop(r.logger).Named("ipc")

	metrics := r.metrics
	r.pending.Observe(func(outcome string, age time.Duration) {
		metrics.RecordInvoke(outcome, age)
	})
	return r
}

// Pending returns the correlation table.
func (r *Router) Pending() *PendingCalls {
	return r.pending
}

// HandleRequest dispatches a request-style message. Every branch except an
// invoke responds before returning; an invoke responds when the host
// resolves its token.
func (r *Router) HandleRequest(req Request, sink ResponseSink) {
	u, err := url.Parse(req.URI)
	if err != nil {
		r.logger.Debug("Unparseable request uri", zap.String("uri", req.URI), zap.Error(err))
		r.forbid(sink, msgUnknownHost)
		return
	}

	if rest, ok := resourcePath(u.Path); ok {
		r.metrics.RecordIPC("resource")
		sink.Respond(r.serveResource(rest))
		return
	}

	if u.Hostname() != LocalHost {
		r.forbid(sink, msgUnknownHost)
		return
	}

	if u.Path != InvokePath {
		r.forbid(sink, msgUnknownPath)
		return
	}

	inv := Invocation{
		Method:  req.Method,
		URI:     req.URI,
		Headers: copyHeaders(req.Headers),
		Body:    req.Body,
	}
	inv.Token = r.pending.Register(sink, inv)
	r.metrics.RecordIPC("invoke")
	r.metrics.SetPendingCalls(r.pending.Len())

	r.logger.Debug("Forwarding invoke",
		zap.String("token", inv.Token),
		zap.String("method", inv.Method),
		zap.String("uri", inv.URI))
	r.host.Invoke(inv)
}

// HandleMessage dispatches a fire-and-forget message. Reserved input
// envelopes are consumed; everything else reaches the host verbatim.
func (r *Router) HandleMessage(body []byte) {
	if eventType, ok := r.inputType(body); ok {
		r.metrics.RecordIPC("input")
		r.translate(eventType, body)
		return
	}

	r.metrics.RecordIPC("message")
	r.host.EmitMessage(string(body))
}

// Resolve completes the invoke identified by token.
func (r *Router) Resolve(token string, resp Response) error {
	resp.Headers = withDefaultHeaders(resp.Headers, "text/plain")
	err := r.pending.Resolve(token, resp)
	r.metrics.SetPendingCalls(r.pending.Len())
	if err != nil {
		r.logger.Debug("Resolve for unknown token", zap.String("token", token))
	}
	return err
}

// Expire answers invokes older than maxAge with 504.
func (r *Router) Expire(maxAge time.Duration) int {
	n := r.pending.Expire(maxAge, textResponse(http.StatusGatewayTimeout, msgInvokeTimeout))
	if n > 0 {
		r.metrics.SetPendingCalls(r.pending.Len())
		r.logger.Warn("Expired unresolved invokes", zap.Int("count", n), zap.Duration("max_age", maxAge))
	}
	return n
}

// Close answers every outstanding invoke with 503.
func (r *Router) Close() int {
	n := r.pending.Drain(textResponse(http.StatusServiceUnavailable, msgSurfaceClosed))
	r.metrics.SetPendingCalls(0)
	if n > 0 {
		r.logger.Info("Drained unresolved invokes", zap.Int("count", n))
	}
	return n
}

func (r *Router) inputType(body []byte) (string, bool) {
	if r.input == nil || !gjson.ValidBytes(body) {
		return "", false
	}
	envelope := gjson.ParseBytes(body)
	if !envelope.IsObject() {
		return "", false
	}
	t := envelope.Get("type")
	if t.Type != gjson.String || !r.input.Handles(t.Str) {
		return "", false
	}
	return t.Str, true
}

func (r *Router) translate(eventType string, body []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Input translation panicked",
				zap.String("type", eventType),
				zap.Any("panic", rec))
		}
	}()

	if err := r.input.Translate(body); err != nil {
		r.logger.Debug("Dropped input event", zap.String("type", eventType), zap.Error(err))
	}
}

func (r *Router) serveResource(rest string) Response {
	if r.resolver == nil {
		return textResponse(http.StatusNotFound, "resource not found: "+rest)
	}
	res := r.resolver.Resolve(resource.Request{Scheme: resource.Scheme, Path: rest})
	return Response{
		Status:  res.Status,
		Headers: withDefaultHeaders(nil, res.ContentType),
		Body:    res.Body,
	}
}

func (r *Router) forbid(sink ResponseSink, msg string) {
	r.metrics.RecordIPC("forbidden")
	sink.Respond(textResponse(http.StatusForbidden, msg))
}

// resourcePath strips the resource prefix. The prefix must end the path or
// be followed by a slash.
func resourcePath(p string) (string, bool) {
	rest, ok := strings.CutPrefix(p, ResourcePrefix)
	if !ok {
		return "", false
	}
	if rest != "" && rest[0] != '/' {
		return "", false
	}
	return "/" + strings.TrimLeft(rest, "/"), true
}

func textResponse(status int, msg string) Response {
	return Response{
		Status:  status,
		Headers: withDefaultHeaders(nil, "text/plain"),
		Body:    []byte(msg),
	}
}

func withDefaultHeaders(headers map[string]string, contentType string) map[string]string {
	out := copyHeaders(headers)
	if out == nil {
		out = make(map[string]string, 2)
	}
	if _, ok := out["Content-Type"]; !ok && contentType != "" {
		out["Content-Type"] = contentType
	}
	if _, ok := out["Access-Control-Allow-Origin"]; !ok {
		out["Access-Control-Allow-Origin"] = "*"
	}
	return out
}

func copyHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}
