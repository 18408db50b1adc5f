// Package server exposes the analyzer over HTTP
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/polscope/internal/model"
	"github.com/ppiankov/polscope/internal/pipeline"
	"github.com/ppiankov/polscope/internal/worker"
)

const (
	loggerKey       = "logger"
	requestIDHeader = "X-Request-ID"
)

// Server is the gin-backed HTTP surface
type Server struct {
	analyzer     worker.Analyzer
	engine       *gin.Engine
	logger       *zap.Logger
	addr         string
	requestLimit time.Duration
}

// AnalyzeRequest is the POST /analyze body
type AnalyzeRequest struct {
	Name string `json:"name"`
}

// New builds the router. An empty mode leaves gin's global mode untouched.
func New(analyzer worker.Analyzer, cfg model.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	s := &Server{
		analyzer:     analyzer,
		engine:       gin.New(),
		logger:       logger,
		addr:         cfg.Addr,
		requestLimit: cfg.RequestLimit,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), cors())

	s.engine.GET("/health", s.health)
	s.engine.GET("/analyze", s.analyzeQuery)
	s.engine.POST("/analyze", s.analyzeBody)

	return s
}

// Handler returns the router for embedding or testing
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// analyzeQuery handles GET /analyze?name=
func (s *Server) analyzeQuery(c *gin.Context) {
	s.analyze(c, c.Query("name"))
}

// analyzeBody handles POST /analyze
func (s *Server) analyzeBody(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	s.analyze(c, req.Name)
}

func (s *Server) analyze(c *gin.Context, name string) {
	ctx := c.Request.Context()
	if s.requestLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestLimit)
		defer cancel()
	}

	a, err := s.analyzer.Analyze(ctx, name)
	if err != nil {
		if pipeline.IsInputError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		loggerFrom(c).Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, a)
}

// requestLogger tags each request with a uuid and logs its outcome
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		logger := s.logger.With(zap.String("request_id", requestID))

		c.Set(loggerKey, logger)
		c.Header(requestIDHeader, requestID)

		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func loggerFrom(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// cors allows any origin; the API is read-only and unauthenticated
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
