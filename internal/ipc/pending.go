package ipc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/shared/id"
)

// ErrUnknownToken is returned when resolving a token that is not pending.
var ErrUnknownToken = errors.New("unknown invoke token")

// Completion outcomes reported to observers.
const (
	OutcomeResolved = "resolved"
	OutcomeExpired  = "expired"
	OutcomeDrained  = "drained"
)

type pendingCall struct {
	sink    ResponseSink
	meta    Invocation
	created time.Time
}

// PendingCalls correlates invoke tokens with their response sinks. Every
// entry is removed exactly once; the sink is always written outside the lock.
type PendingCalls struct {
	mu      sync.Mutex
	calls   map[string]*pendingCall
	now     func() time.Time
	observe func(outcome string, age time.Duration)
}

// NewPendingCalls creates an empty table.
func NewPendingCalls() *PendingCalls {
	return &PendingCalls{
		calls: make(map[string]*pendingCall),
		now:   time.Now,
	}
}

// Observe sets a callback invoked once per removed entry.
func (p *PendingCalls) Observe(fn func(outcome string, age time.Duration)) {
	p.mu.Lock()
	p.observe = fn
	p.mu.Unlock()
}

// Register stores sink under a fresh token and returns the token. The token
// is also written into the stored invocation metadata.
func (p *PendingCalls) Register(sink ResponseSink, meta Invocation) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	token := id.NewToken().String()
	for p.calls[token] != nil {
		token = id.NewToken().String()
	}
	meta.Token = token
	p.calls[token] = &pendingCall{sink: sink, meta: meta, created: p.now()}
	return token
}

// Resolve removes token and writes resp into its sink.
func (p *PendingCalls) Resolve(token string, resp Response) error {
	p.mu.Lock()
	call, ok := p.calls[token]
	if ok {
		delete(p.calls, token)
	}
	observe := p.observe
	now := p.now()
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}
	call.sink.Respond(resp)
	if observe != nil {
		observe(OutcomeResolved, now.Sub(call.created))
	}
	return nil
}

// Len returns the number of outstanding calls.
func (p *PendingCalls) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Tokens returns the outstanding tokens in sorted order.
func (p *PendingCalls) Tokens() []string {
	p.mu.Lock()
	tokens := make([]string, 0, len(p.calls))
	for token := range p.calls {
		tokens = append(tokens, token)
	}
	p.mu.Unlock()

	sort.Strings(tokens)
	return tokens
}

// Lookup returns the invocation stored for token.
func (p *PendingCalls) Lookup(token string) (Invocation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	call, ok := p.calls[token]
	if !ok {
		return Invocation{}, false
	}
	return call.meta, true
}

// Expire answers every call older than maxAge with resp and returns how many
// were removed.
func (p *PendingCalls) Expire(maxAge time.Duration, resp Response) int {
	cutoff := p.now().Add(-maxAge)
	return p.removeWhere(OutcomeExpired, resp, func(c *pendingCall) bool {
		return !c.created.After(cutoff)
	})
}

// Drain answers every outstanding call with resp.
func (p *PendingCalls) Drain(resp Response) int {
	return p.removeWhere(OutcomeDrained, resp, func(*pendingCall) bool { return true })
}

func (p *PendingCalls) removeWhere(outcome string, resp Response, match func(*pendingCall) bool) int {
	p.mu.Lock()
	var removed []*pendingCall
	for token, call := range p.calls {
		if match(call) {
			removed = append(removed, call)
			delete(p.calls, token)
		}
	}
	observe := p.observe
	now := p.now()
	p.mu.Unlock()

	for _, call := range removed {
		call.sink.Respond(resp)
		if observe != nil {
			observe(outcome, now.Sub(call.created))
		}
	}
	return len(removed)
}
