// Package testutil provides mocks and helpers shared by bridge tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/geometry"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/input"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/resource"
)

// MockHost is a mock embedding application. Event-style calls go through
// testify's mock and are also recorded for inspection; layout and focus are
// plain state set by the test.
type MockHost struct {
	mock.Mock

	mu          sync.Mutex
	rect        geometry.Rect
	viewport    geometry.Size
	focused     bool
	messages    []string
	invocations []ipc.Invocation
	pushed      []input.Event
	parsed      []input.Event
	invoked     chan ipc.Invocation
	emitted     chan string
}

// NewMockHost creates a host whose event methods accept any arguments.
func NewMockHost(t *testing.T) *MockHost {
	t.Helper()
	m := &MockHost{
		rect:     geometry.Rect{Width: 640, Height: 360},
		viewport: geometry.Size{Width: 1280, Height: 720},
		focused:  true,
		invoked:  make(chan ipc.Invocation, 64),
		emitted:  make(chan string, 64),
	}
	m.On("EmitMessage", mock.Anything).Maybe()
	m.On("Invoke", mock.Anything).Maybe()
	m.On("PushInput", mock.Anything).Maybe()
	m.On("ParseInput", mock.Anything).Maybe()
	return m
}

// EmitMessage mocks the EmitMessage method.
func (m *MockHost) EmitMessage(text string) {
	m.mu.Lock()
	m.messages = append(m.messages, text)
	m.mu.Unlock()
	m.Called(text)
	select {
	case m.emitted <- text:
	default:
	}
}

// Invoke mocks the Invoke method.
func (m *MockHost) Invoke(inv ipc.Invocation) {
	m.mu.Lock()
	m.invocations = append(m.invocations, inv)
	m.mu.Unlock()
	m.Called(inv)
	select {
	case m.invoked <- inv:
	default:
	}
}

// PushInput mocks the PushInput method.
func (m *MockHost) PushInput(ev input.Event) {
	m.mu.Lock()
	m.pushed = append(m.pushed, ev)
	m.mu.Unlock()
	m.Called(ev)
}

// ParseInput mocks the ParseInput method.
func (m *MockHost) ParseInput(ev input.Event) {
	m.mu.Lock()
	m.parsed = append(m.parsed, ev)
	m.mu.Unlock()
	m.Called(ev)
}

// GlobalRect returns the rect set with SetRect.
func (m *MockHost) GlobalRect() geometry.Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rect
}

// ViewportSize returns the size set with SetViewport.
func (m *MockHost) ViewportSize() geometry.Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// HasFocus returns the focus set with SetFocus.
func (m *MockHost) HasFocus() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// SetRect moves the host control.
func (m *MockHost) SetRect(r geometry.Rect) {
	m.mu.Lock()
	m.rect = r
	m.mu.Unlock()
}

// SetViewport resizes the host window.
func (m *MockHost) SetViewport(s geometry.Size) {
	m.mu.Lock()
	m.viewport = s
	m.mu.Unlock()
}

// SetFocus changes host window focus.
func (m *MockHost) SetFocus(focused bool) {
	m.mu.Lock()
	m.focused = focused
	m.mu.Unlock()
}

// Messages returns every emitted message.
func (m *MockHost) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// Invocations returns every forwarded invocation.
func (m *MockHost) Invocations() []ipc.Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ipc.Invocation(nil), m.invocations...)
}

// Pushed returns every event sent to PushInput.
func (m *MockHost) Pushed() []input.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]input.Event(nil), m.pushed...)
}

// Parsed returns every event sent to ParseInput.
func (m *MockHost) Parsed() []input.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]input.Event(nil), m.parsed...)
}

// WaitMessage waits for the next emitted message.
func (m *MockHost) WaitMessage(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-m.emitted:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for host message")
		return ""
	}
}

// WaitInvocation waits for the next forwarded invocation.
func (m *MockHost) WaitInvocation(t *testing.T) ipc.Invocation {
	t.Helper()
	select {
	case inv := <-m.invoked:
		return inv
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for invocation")
		return ipc.Invocation{}
	}
}

// MockHandle is a mock renderer handle.
type MockHandle struct {
	mock.Mock
}

// NewMockHandle creates a handle whose methods all succeed.
func NewMockHandle(t *testing.T) *MockHandle {
	t.Helper()
	m := new(MockHandle)
	for _, method := range []string{"SetBounds", "SetVisible", "EvaluateScript", "LoadURL", "LoadHTML"} {
		m.On(method, mock.Anything).Return(nil).Maybe()
	}
	for _, method := range []string{"Reload", "ClearBrowsingData", "OpenDevtools", "CloseDevtools", "Focus", "FocusParent", "Print", "Close"} {
		m.On(method).Return(nil).Maybe()
	}
	m.On("IsDevtoolsOpen").Return(false).Maybe()
	return m
}

func (m *MockHandle) SetBounds(r geometry.Rect) error    { return m.Called(r).Error(0) }
func (m *MockHandle) SetVisible(visible bool) error      { return m.Called(visible).Error(0) }
func (m *MockHandle) EvaluateScript(script string) error { return m.Called(script).Error(0) }
func (m *MockHandle) LoadURL(url string) error           { return m.Called(url).Error(0) }
func (m *MockHandle) LoadHTML(html string) error         { return m.Called(html).Error(0) }
func (m *MockHandle) Reload() error                      { return m.Called().Error(0) }
func (m *MockHandle) ClearBrowsingData() error           { return m.Called().Error(0) }
func (m *MockHandle) OpenDevtools() error                { return m.Called().Error(0) }
func (m *MockHandle) CloseDevtools() error               { return m.Called().Error(0) }
func (m *MockHandle) IsDevtoolsOpen() bool               { return m.Called().Bool(0) }
func (m *MockHandle) Focus() error                       { return m.Called().Error(0) }
func (m *MockHandle) FocusParent() error                 { return m.Called().Error(0) }
func (m *MockHandle) Print() error                       { return m.Called().Error(0) }
func (m *MockHandle) Close() error                       { return m.Called().Error(0) }

// MemResolver creates a resolver over an in-memory filesystem holding files.
func MemResolver(t *testing.T, files map[string]string, opts ...resource.Option) *resource.Resolver {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return resource.NewResolverFs(fs, opts...)
}
