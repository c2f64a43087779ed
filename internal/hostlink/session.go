package hostlink

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/config"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/embed"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/monitoring"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/shared/id"
)

const maxFrameSize = 4 << 20

// Session binds one connection to one surface.
type Session struct {
	id      id.SessionID
	link    *Link
	surface *embed.Surface
	limiter *rate.Limiter
	queue   chan Command
	tick    time.Duration
	logger  *logging.Logger
	metrics *monitoring.Metrics
	stopped chan struct{}
}

func newSession(sessionID id.SessionID, link *Link, surface *embed.Surface, cfg config.HostlinkConfig, logger *logging.Logger, metrics *monitoring.Metrics) *Session {
	fps := cfg.FrameRate
	if fps <= 0 {
		fps = 60
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 256
	}
	limit, burst := rate.Inf, cfg.CommandBurst
	if cfg.CommandRate > 0 {
		limit = rate.Limit(cfg.CommandRate)
	}
	if burst <= 0 {
		burst = max(cfg.CommandRate, 1)
	}
	return &Session{
		id:      sessionID,
		link:    link,
		surface: surface,
		limiter: rate.NewLimiter(limit, burst),
		queue:   make(chan Command, queue),
		tick:    time.Second / time.Duration(fps),
		logger:  logger,
		metrics: metrics,
		stopped: make(chan struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() id.SessionID {
	return s.id
}

// Surface returns the surface driven by this session.
func (s *Session) Surface() *embed.Surface {
	return s.surface
}

// run is the session frame loop. It returns after the surface is destroyed.
func (s *Session) run(ctx context.Context) {
	defer close(s.stopped)
	defer s.link.Close()
	defer s.surface.Destroy()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.link.Done():
			return
		case <-ticker.C:
			s.drain()
			s.surface.Process()
		}
	}
}

func (s *Session) drain() {
	for {
		select {
		case cmd := <-s.queue:
			s.apply(cmd)
		default:
			return
		}
	}
}

// readLoop decodes inbound frames until the connection fails.
func (s *Session) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxFrameSize)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Host link read ended", zap.Error(err))
			}
			return
		}
		s.receive(data)
	}
}

func (s *Session) receive(data []byte) {
	frameType := gjson.GetBytes(data, "type").String()
	if frameType == "" {
		s.link.sendError("", "frame has no type")
		return
	}
	s.metrics.RecordHostlinkFrame("in", frameType)

	var cmd Command
	if err := sonic.ConfigStd.Unmarshal(data, &cmd); err != nil {
		s.link.sendError(frameType, "malformed frame")
		return
	}

	if cmd.Type == FrameLayout {
		s.link.applyLayout(cmd)
		return
	}
	if !known(cmd.Type) {
		s.link.sendError(cmd.Type, "unknown frame type")
		return
	}
	if !s.limiter.Allow() {
		s.link.sendError(cmd.Type, "rate limit exceeded")
		return
	}
	select {
	case s.queue <- cmd:
	default:
		s.link.sendError(cmd.Type, "command queue full")
	}
}

func known(frameType string) bool {
	switch frameType {
	case FrameResolve, FramePostMessage, FrameEval, FrameResize, FrameSetVisible,
		FrameSetFullWindow, FrameLoadURL, FrameLoadHTML, FrameReload,
		FrameClearBrowsingData, FrameDevtools, FrameFocus, FrameFocusParent, FramePrint:
		return true
	}
	return false
}

// apply runs on the frame loop.
func (s *Session) apply(cmd Command) {
	sf := s.surface
	switch cmd.Type {
	case FrameResolve:
		if err := sf.Resolve(cmd.Token, cmd.response()); err != nil {
			if errors.Is(err, ipc.ErrUnknownToken) {
				s.logger.Debug("Resolve for unknown token", zap.String("token", cmd.Token))
				return
			}
			s.link.sendError(cmd.Type, err.Error())
		}
	case FramePostMessage:
		sf.PostMessage(cmd.Text)
	case FrameEval:
		sf.Eval(cmd.Text)
	case FrameResize:
		sf.Resize()
	case FrameSetVisible:
		sf.SetVisible(cmd.On)
	case FrameSetFullWindow:
		sf.SetFullWindow(cmd.On)
	case FrameLoadURL:
		sf.LoadURL(cmd.Text)
	case FrameLoadHTML:
		sf.LoadHTML(cmd.Text)
	case FrameReload:
		sf.Reload()
	case FrameClearBrowsingData:
		sf.ClearBrowsingData()
	case FrameDevtools:
		if cmd.On {
			sf.OpenDevtools()
		} else {
			sf.CloseDevtools()
		}
	case FrameFocus:
		sf.Focus()
	case FrameFocusParent:
		sf.FocusParent()
	case FramePrint:
		sf.Print()
	}
}
