package hostlink

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/geometry"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/input"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/monitoring"
)

const writeWait = 10 * time.Second

// Link is the host side of a surface when the host lives in another
// process. Outbound calls are encoded as frames and written by a single
// writer goroutine. Layout is whatever the last layout frame said.
type Link struct {
	conn    *websocket.Conn
	out     chan []byte
	done    chan struct{}
	written chan struct{}
	once    sync.Once
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu       sync.RWMutex
	rect     geometry.Rect
	viewport geometry.Size
	focused  bool
}

func newLink(conn *websocket.Conn, queue int, logger *logging.Logger, metrics *monitoring.Metrics) *Link {
	if queue <= 0 {
		queue = 64
	}
	return &Link{
		conn:    conn,
		out:     make(chan []byte, queue),
		done:    make(chan struct{}),
		written: make(chan struct{}),
		logger:  logging.OrNop(logger),
		metrics: metrics,
		focused: true,
	}
}

// EmitMessage forwards a page message to the host.
func (l *Link) EmitMessage(text string) {
	l.send(FrameMessage, MessageFrame{Type: FrameMessage, Text: text})
}

// Invoke forwards an invoke to the host.
func (l *Link) Invoke(inv ipc.Invocation) {
	l.send(FrameInvoke, invokeFrame(inv))
}

// PushInput forwards a pointer event to the host viewport.
func (l *Link) PushInput(ev input.Event) {
	l.send(FrameInput, inputFrame(RoutePush, ev))
}

// ParseInput forwards a key event to the host input parser.
func (l *Link) ParseInput(ev input.Event) {
	l.send(FrameInput, inputFrame(RouteParse, ev))
}

// GlobalRect returns the control rectangle from the last layout frame.
func (l *Link) GlobalRect() geometry.Rect {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rect
}

// ViewportSize returns the viewport size from the last layout frame.
func (l *Link) ViewportSize() geometry.Size {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.viewport
}

// HasFocus reports the host window focus from the last layout frame.
// Hosts that never send focus are treated as focused.
func (l *Link) HasFocus() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.focused
}

// Done is closed when the link is closed.
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// Close stops the writer and closes the connection. Safe to call more than once.
func (l *Link) Close() {
	l.once.Do(func() { close(l.done) })
}

func (l *Link) applyLayout(c Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c.Rect != nil {
		l.rect = c.Rect.geometry()
	}
	if c.Viewport != nil {
		l.viewport = c.Viewport.geometry()
	}
	if c.Focused != nil {
		l.focused = *c.Focused
	}
}

func (l *Link) sendError(frame, msg string) {
	l.send(FrameError, ErrorFrame{Type: FrameError, Message: msg, Frame: frame})
}

// send blocks while the writer is behind, and drops the frame once the
// link is closed.
func (l *Link) send(frameType string, frame any) {
	data, err := sonic.ConfigStd.Marshal(frame)
	if err != nil {
		l.logger.Error("Failed to encode frame", zap.String("type", frameType), zap.Error(err))
		return
	}
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.out <- data:
		l.metrics.RecordHostlinkFrame("out", frameType)
	case <-l.done:
	}
}

// writeLoop owns every write to the connection.
func (l *Link) writeLoop() {
	defer close(l.written)
	defer l.conn.Close()

	for {
		select {
		case data := <-l.out:
			if err := l.write(websocket.TextMessage, data); err != nil {
				l.logger.Debug("Host link write failed", zap.Error(err))
				l.Close()
				return
			}
		case <-l.done:
			l.flush()
			_ = l.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes frames queued before the link closed.
func (l *Link) flush() {
	for {
		select {
		case data := <-l.out:
			if l.write(websocket.TextMessage, data) != nil {
				return
			}
		default:
			return
		}
	}
}

func (l *Link) write(messageType int, data []byte) error {
	_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return l.conn.WriteMessage(messageType, data)
}
