package ipc

import "github.com/GriffinCanCode/AgentOS/webbridge/internal/resource"

// Reserved routing constants for the ipc:// channel.
const (
	LocalHost      = "localhost"
	InvokePath     = "/plugin:invoke"
	ResourcePrefix = "/plugin:res"
)

// Request is an inbound request-style message together with its metadata.
type Request struct {
	Method  string
	URI     string
	Headers map[string]string
	Body    []byte
}

// Response is written into a ResponseSink exactly once.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Header returns the value of header name, or "".
func (r Response) Header(name string) string {
	return r.Headers[name]
}

// ResponseSink receives the terminal response of a request.
type ResponseSink interface {
	Respond(Response)
}

// SinkFunc adapts a function to ResponseSink.
type SinkFunc func(Response)

// Respond calls f(resp).
func (f SinkFunc) Respond(resp Response) { f(resp) }

// Invocation is forwarded to the host for every invoke request. The host
// completes it later by resolving Token.
type Invocation struct {
	Token   string
	Method  string
	URI     string
	Headers map[string]string
	Body    []byte
}

// Host is what the router needs from the embedding application. Methods may
// be called from any goroutine.
type Host interface {
	EmitMessage(text string)
	Invoke(inv Invocation)
}

// Resolver serves resource requests.
type Resolver interface {
	Resolve(req resource.Request) resource.Response
}

// InputTranslator consumes synthetic input envelopes.
type InputTranslator interface {
	Handles(eventType string) bool
	Translate(body []byte) error
}
