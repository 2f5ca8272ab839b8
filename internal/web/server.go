// Package web serves the browser dashboard: a small JSON API plus a
// websocket chat, both backed by the agent loop.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jobpilot/jobpilot/internal/artifact"
	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/config/gateway"
	"github.com/jobpilot/jobpilot/internal/session"
)

// Agent runs one message through the assistant.
type Agent interface {
	ProcessDirect(ctx context.Context, msg bus.InboundMessage, onProgress func(string)) bus.OutboundMessage
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg       gateway.WebConfig
	agent     Agent
	sessions  *session.Manager
	artifacts *artifact.Store
	engine    *gin.Engine
	upgrader  websocket.Upgrader
}

// New builds the dashboard routes.
func New(cfg gateway.WebConfig, agent Agent, sessions *session.Manager, artifacts *artifact.Store) *Server {
	s := &Server{
		cfg:       cfg,
		agent:     agent,
		sessions:  sessions,
		artifacts: artifacts,
		engine:    gin.New(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.initRouter()
	return s
}

func (s *Server) initRouter() {
	g := s.engine
	g.Use(gin.Recovery())
	g.Use(s.cors())

	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := g.Group("/api")
	{
		api.POST("/sessions", s.createSession)

		sess := api.Group("/sessions/:id", s.requireSession)
		sess.PUT("/resume", s.setResume)
		sess.POST("/chat", s.chat)
		sess.GET("/artifact", s.downloadArtifact)
		sess.GET("/artifacts/:callID", s.downloadCallArtifact)
		sess.GET("/ws", s.serveWS)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web: listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("web: shutdown", "err", err)
		}
		return ctx.Err()
	}
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	return s.originAllowed(origin)
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.originAllowed(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
