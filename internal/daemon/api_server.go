package daemon

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mediasort/internal/logging"
	"mediasort/internal/services"
	"mediasort/internal/stats"
)

// APIServer exposes the daemon over HTTP.
type APIServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	engine *gin.Engine

	listener net.Listener
	server   *http.Server
}

type importRequest struct {
	Dir string `json:"dir" binding:"required"`
}

// NewAPIServer builds the HTTP API. It returns nil when bind is empty. A
// non-empty token requires "Authorization: Bearer <token>" on /api routes.
func NewAPIServer(d *Daemon, bind, token string, logger *slog.Logger) *APIServer {
	bind = strings.TrimSpace(bind)
	if d == nil || bind == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &APIServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	s.engine = s.routes(token)
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed engine for tests.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

func (s *APIServer) routes(token string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/metrics", gin.WrapH(stats.Handler(s.daemon.MetricsRegistry())))

	api := r.Group("/api", authMiddleware(token))
	api.GET("/status", s.handleStatus)
	api.GET("/stats", s.handleStats)
	api.GET("/history", s.handleHistory)
	api.GET("/logs", s.handleLogs)
	api.GET("/parse", s.handleParse)
	api.POST("/import", s.handleImport)
	return r
}

// Start begins serving until ctx ends or Stop is called.
func (s *APIServer) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *APIServer) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

// Addr returns the bound address once started.
func (s *APIServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *APIServer) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.daemon.Status(c.Request.Context()))
}

func (s *APIServer) handleStats(c *gin.Context) {
	snap := s.daemon.Stats()
	c.JSON(http.StatusOK, gin.H{
		"tv":     snap.TV,
		"movies": snap.Movies,
		"music":  snap.Music,
		"other":  snap.Other,
		"total":  snap.Total(),
	})
}

func (s *APIServer) handleHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := s.daemon.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *APIServer) handleLogs(c *gin.Context) {
	since, _ := strconv.ParseUint(c.Query("since"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))
	follow := c.Query("follow") == "1" || strings.EqualFold(c.Query("follow"), "true")
	component := strings.TrimSpace(c.Query("component"))

	events, next, err := s.daemon.Logs(c.Request.Context(), since, limit, follow)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if component != "" {
		filtered := events[:0]
		for _, evt := range events {
			if strings.EqualFold(evt.Component, component) {
				filtered = append(filtered, evt)
			}
		}
		events = filtered
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "next": next})
}

func (s *APIServer) handleParse(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter is required"})
		return
	}
	c.JSON(http.StatusOK, s.daemon.Parse(c.Request.Context(), name))
}

func (s *APIServer) handleImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dir is required"})
		return
	}
	result, err := s.daemon.Import(c.Request.Context(), req.Dir)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrNotFound):
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *APIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("api request",
			logging.String("method", c.Request.Method),
			logging.String("route", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}

// authMiddleware validates bearer tokens. An empty token disables the check.
func authMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		provided, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
