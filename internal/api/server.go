package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bilalabdelkadir/teftef-trader/internal/analysis"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
	"github.com/bilalabdelkadir/teftef-trader/internal/recorder"
	"github.com/bilalabdelkadir/teftef-trader/internal/settings"
)

// Analyzer runs a single market analysis.
type Analyzer interface {
	AnalyzeMarket(ctx context.Context, req analysis.Request) (*model.AnalysisResult, error)
}

// Server exposes market data, analysis and the signal ledger over HTTP.
type Server struct {
	Data     provider.Provider
	Analyzer Analyzer
	Settings *settings.Manager
	Recorder recorder.Recorder

	engine *gin.Engine
	srv    *http.Server
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, data provider.Provider, an Analyzer, sm *settings.Manager, rec recorder.Recorder) *Server {
	s := &Server{
		Data:     data,
		Analyzer: an,
		Settings: sm,
		Recorder: rec,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.setupRoutes()

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	r := s.engine.Group("/api")
	r.GET("/health", s.getHealth)

	r.GET("/price", s.getPrice)
	r.GET("/prices", s.getPrices)
	r.GET("/time-series", s.getTimeSeries)
	r.GET("/indicators/:name", s.getIndicator)
	r.GET("/market-data", s.getMarketData)
	r.GET("/symbols", s.getSymbols)

	r.POST("/analyze", s.postAnalyze)
	r.GET("/signals", s.getSignals)

	r.GET("/settings", s.getSettings)
	r.PUT("/settings", s.putSettings)
	r.POST("/watchlist", s.postWatchlist)
	r.DELETE("/watchlist", s.deleteWatchlist)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[INFO] HTTP API listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Printf("[WARN] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
		}
	}
}
