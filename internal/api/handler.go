package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"PocketSim/internal/model"
	"PocketSim/pkg/logger"
)

// Engine is the session surface exposed over HTTP.
type Engine interface {
	Snapshot() model.Snapshot
	Settings() model.BotSettings
	ReplaceSettings(next model.BotSettings) (model.BotSettings, error)
	Indicators(pair string) (model.IndicatorVector, bool)
	Series(pair string) ([]model.PriceSample, bool)
	Stats() model.Stats
	Pairs() []string
}

var (
	errMissingPair    = errors.New("pair query param required")
	errUnknownPair    = errors.New("unknown pair")
	errAmountsSwapped = errors.New("min_trade_amount exceeds max_trade_amount")
)

// Handler serves the dashboard JSON API.
type Handler struct {
	router *gin.Engine
	engine Engine
}

// NewHandler builds the router around engine.
func NewHandler(engine Engine) *Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	h := &Handler{router: router, engine: engine}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := h.router.Group("/api")
	api.GET("/snapshot", h.getSnapshot)
	api.GET("/settings", h.getSettings)
	api.PUT("/settings", h.putSettings)
	api.GET("/indicators", h.getIndicators)
	api.GET("/series", h.getSeries)
	api.GET("/stats", h.getStats)
	api.GET("/pairs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pairs": h.engine.Pairs()})
	})
}

func (h *Handler) getSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Settings())
}

func (h *Handler) putSettings(c *gin.Context) {
	var req model.BotSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MinTradeAmount > req.MaxTradeAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": errAmountsSwapped.Error()})
		return
	}
	applied, err := h.engine.ReplaceSettings(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "settings": applied})
		return
	}
	c.JSON(http.StatusOK, applied)
}

func (h *Handler) getIndicators(c *gin.Context) {
	pair := c.Query("pair")
	if pair == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingPair.Error()})
		return
	}
	ind, ok := h.engine.Indicators(pair)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownPair.Error(), "pair": pair})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pair": pair, "indicators": ind})
}

func (h *Handler) getSeries(c *gin.Context) {
	pair := c.Query("pair")
	if pair == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingPair.Error()})
		return
	}
	series, ok := h.engine.Series(pair)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownPair.Error(), "pair": pair})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pair": pair, "samples": series})
}

func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Stats())
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

// corsMiddleware lets a browser dashboard on another origin read the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Server runs the handler until its context ends.
type Server struct {
	srv *http.Server
}

// NewServer binds handler to addr.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
