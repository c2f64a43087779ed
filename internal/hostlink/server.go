package hostlink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/config"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/embed"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/ipc"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/middleware"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/monitoring"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/renderer/headless"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/resource"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/web"
)

// ErrShuttingDown is returned for connections that arrive after Shutdown.
var ErrShuttingDown = errors.New("host link is shutting down")

// Server accepts host link connections. Each connection drives one surface.
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	http     *http.Server
	resolver ipc.Resolver
	web      *web.Fetcher
	upgrader websocket.Upgrader
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	sessions map[id.SessionID]*Session
}

// Option configures a Server.
type Option func(*Server)

// WithResolver replaces the resolver built from the resources section.
func WithResolver(r ipc.Resolver) Option {
	return func(s *Server) { s.resolver = r }
}

// WithLogger replaces the logger built from the logging section.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics sets the metrics collector served on /metrics.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Server) { s.metrics = metrics }
}

// NewServer builds the gin engine and the shared resolver.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:      cfg,
		sessions: make(map[id.SessionID]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin policy is enforced by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		logger, err := newLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		s.logger = logger
	}
	s.logger = s.logger.Named("hostlink")

	if s.metrics == nil {
		s.metrics = monitoring.NewMetrics()
	}

	if s.resolver == nil {
		r, err := resource.NewFromConfig(cfg.Resources,
			resource.WithLogger(s.logger),
			resource.WithMetrics(s.metrics))
		if err != nil {
			return nil, fmt.Errorf("failed to create resource resolver: %w", err)
		}
		s.resolver = r
	}

	if cfg.Hostlink.Web {
		s.web = web.NewFetcher(
			web.WithTimeout(time.Duration(cfg.Hostlink.WebTimeoutMS)*time.Millisecond),
			web.WithLogger(s.logger),
			web.WithMetrics(s.metrics))
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.router = s.routes()
	return s, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	logCfg.File = cfg.File
	return logging.New(logCfg)
}

func (s *Server) routes() *gin.Engine {
	if !s.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if s.cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", s.cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", s.cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.FromConfig(s.cfg.RateLimit)))
	}

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.GET("/ws", s.handleConnection)
	return router
}

// Handler returns the HTTP handler, for embedding or httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Server.Host + ":" + s.cfg.Server.Port
}

// Run listens on Addr until Shutdown.
func (s *Server) Run() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrShuttingDown
	}
	s.http = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	s.logger.Info("Starting host link server", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("host link server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections, destroys every surface and waits
// for sessions to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.http
	s.mu.Unlock()

	s.logger.Info("Shutting down host link server", zap.Int("sessions", s.Sessions()))
	s.cancel()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if s.web != nil {
		s.web.Close()
	}
	_ = s.logger.Sync()
	return err
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.Sessions(),
	})
}

func (s *Server) handleConnection(c *gin.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrShuttingDown.Error()})
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	s.serve(conn)
}

// serve runs one session to completion.
func (s *Server) serve(conn *websocket.Conn) {
	sessionID := id.NewSessionID()
	logger := s.logger.With(zap.String("session_id", sessionID.String()))

	link := newLink(conn, s.cfg.Hostlink.QueueSize, logger, s.metrics)
	go link.writeLoop()
	defer func() { <-link.written }()
	defer link.Close()

	builder := headless.NewBuilder(
		headless.WithPump(s.cfg.Hostlink.Pumped),
		headless.WithWeb(s.web),
		headless.WithLogger(logger))
	surface, err := embed.New(s.cfg.Surface, link, builder,
		embed.WithResolver(s.resolver),
		embed.WithLogger(logger),
		embed.WithMetrics(s.metrics))
	if err != nil {
		logger.Warn("Surface rejected", zap.Error(err))
		link.sendError("", err.Error())
		return
	}

	link.send(FrameAttached, AttachedFrame{
		Type:      FrameAttached,
		SessionID: sessionID.String(),
		SurfaceID: surface.ID().String(),
	})
	if err := surface.Attach(); err != nil {
		logger.Warn("Surface attach failed", zap.Error(err))
		link.sendError("", err.Error())
		surface.Destroy()
		return
	}

	sess := newSession(sessionID, link, surface, s.cfg.Hostlink, logger, s.metrics)
	s.track(sess)
	defer s.untrack(sess)

	logger.Info("Host link session started", zap.String("surface_id", surface.ID().String()))
	go sess.run(s.ctx)
	sess.readLoop(conn)

	link.Close()
	<-sess.stopped
	logger.Info("Host link session ended")
}

func (s *Server) track(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.IncHostlinkSessions()
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.metrics.DecHostlinkSessions()
}
