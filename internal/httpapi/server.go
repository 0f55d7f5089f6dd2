package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/post-publisher-bot/pkg/config"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
)

// Scheduler accepts a new publish time for a post.
type Scheduler interface {
	Schedule(ctx context.Context, postID, senderID int64, desiredAt time.Time) error
}

// Reconciler runs an early payment check.
type Reconciler interface {
	Trigger() bool
}

type Server struct {
	engine *gin.Engine
	srv    *http.Server
	logger logger.Logger
}

func NewServer(cfg *config.Config, log logger.Logger, scheduler Scheduler, reconciler Reconciler) *Server {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log = log.WithComponent("HTTP")
	h := &handler{scheduler: scheduler, reconciler: reconciler, logger: log}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))
	engine.GET("/healthz", h.health)
	engine.POST("/webhook/yookassa", h.yookassaWebhook)
	engine.POST("/posts/:id/schedule", h.schedule)

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.App.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listener synchronously and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", "error", err)
		}
	}()

	s.logger.Info("HTTP server started", "addr", s.srv.Addr)
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start).String())
	}
}
