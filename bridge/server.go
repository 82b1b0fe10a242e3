package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/walletmux/component"
	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/provider"
	"github.com/kbukum/walletmux/sse"
)

const componentName = "bridge"

var (
	_ component.Component   = (*Server)(nil)
	_ component.Describable = (*Server)(nil)
)

// HealthFunc reports the health of the components behind the bridge.
type HealthFunc func(ctx context.Context) []component.Health

// Server serves a Proxy over HTTP.
type Server struct {
	cfg     Config
	proxy   *provider.Proxy
	hub     *sse.Hub
	health  HealthFunc
	engine  *gin.Engine
	handler http.Handler
	log     *logger.Logger

	mu            sync.Mutex
	relays        map[string]provider.Listener
	httpServer    *http.Server
	listener      net.Listener
	streams       context.Context
	cancelStreams context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithHealth sets the source of /health reports.
func WithHealth(fn HealthFunc) Option {
	return func(s *Server) { s.health = fn }
}

// WithLogger sets the server logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a Server. hub must be running for /events to stream.
func New(cfg Config, proxy *provider.Proxy, hub *sse.Hub, opts ...Option) *Server {
	cfg.ApplyDefaults()

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:   cfg,
		proxy: proxy,
		hub:   hub,
		log:   logger.Get(componentName),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(recovery(s.log), requestID(), cors(cfg.AllowedOrigins), bodyLimit(cfg.MaxBodyBytes), requestLogger(s.log))
	s.routes()

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(cfg.IdleTimeout) * time.Second,
	}
	s.handler = h2c.NewHandler(s.engine, h2s)
	s.streams, s.cancelStreams = context.WithCancel(context.Background())
	return s
}

func (s *Server) routes() {
	s.engine.POST("/rpc", s.handleRPC)
	s.engine.GET("/providers", s.handleProviders)
	s.engine.GET("/providers/current", s.handleCurrent)
	s.engine.PUT("/providers/current", s.handleSelect)
	s.engine.GET("/events", s.handleEvents)
	s.engine.GET("/health", s.handleHealth)
}

// Handler returns the HTTP handler, including h2c support.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// streamContext returns a context that ends when the server stops.
func (s *Server) streamContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams
}

// Name implements component.Component.
func (s *Server) Name() string { return componentName }

// Start binds the configured address and begins serving. It returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge failed to bind %s: %w", addr, err)
	}
	if err := s.Serve(ln); err != nil {
		_ = ln.Close()
		return err
	}
	return nil
}

// Serve subscribes to proxied events and serves on ln in the background.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("bridge already serving on %s", s.listener.Addr())
	}

	srv := &http.Server{
		Addr:         ln.Addr().String(),
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeout) * time.Second,
	}
	if s.streams.Err() != nil {
		s.streams, s.cancelStreams = context.WithCancel(context.Background())
	}
	s.httpServer = srv
	s.listener = ln
	s.attachRelaysLocked()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("bridge listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop detaches from the proxy, ends open event streams and shuts the server
// down within the configured deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.detachRelaysLocked()
	srv := s.httpServer
	s.httpServer = nil
	s.listener = nil
	cancelStreams := s.cancelStreams
	s.mu.Unlock()

	cancelStreams()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("bridge shutdown: %w", err)
	}
	s.log.Info("bridge stopped")
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr()
}

// Health implements component.Component.
func (s *Server) Health(_ context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy, Message: s.listener.Addr().String()}
}

// Describe implements component.Describable.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "Wallet Bridge",
		Type:    "server",
		Details: s.cfg.Addr(),
	}
}

// attachRelaysLocked forwards every proxied event to the SSE hub.
func (s *Server) attachRelaysLocked() {
	if s.relays != nil || s.hub == nil {
		return
	}
	s.relays = make(map[string]provider.Listener)
	for _, name := range s.proxy.Events() {
		l := provider.NewListener(s.broadcast)
		s.relays[name] = l
		s.proxy.On(name, l)
	}
}

func (s *Server) detachRelaysLocked() {
	for name, l := range s.relays {
		s.proxy.RemoveListener(name, l)
	}
	s.relays = nil
}

func (s *Server) broadcast(ev provider.Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		s.log.Warn("event payload not encodable", logger.Fields(
			logger.FieldEvent, ev.Name,
			logger.FieldError, err.Error(),
		))
		return
	}
	s.hub.Broadcast(ev.Name, data)
}
