package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bilalabdelkadir/teftef-trader/internal/analysis"
	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
	"github.com/bilalabdelkadir/teftef-trader/internal/recorder"
)

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// symbolParam returns the normalized symbol query parameter, writing a 400 if it is missing.
func symbolParam(c *gin.Context) (string, bool) {
	sym := market.Normalize(c.Query("symbol"))
	if sym == "" {
		badRequest(c, "symbol is required")
		return "", false
	}
	return sym, true
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		badRequest(c, key+" must be a positive integer")
		return 0, false
	}
	return n, true
}

func (s *Server) getPrice(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	price, err := s.Data.Price(c.Request.Context(), sym)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": sym, "price": price})
}

func (s *Server) getPrices(c *gin.Context) {
	var symbols []string
	for _, part := range strings.Split(c.Query("symbols"), ",") {
		if sym := market.Normalize(part); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		badRequest(c, "symbols is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": s.Data.Prices(c.Request.Context(), symbols)})
}

func (s *Server) getTimeSeries(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	size, ok := intQuery(c, "outputsize", provider.DefaultSeriesSize)
	if !ok {
		return
	}
	ts, err := s.Data.TimeSeries(c.Request.Context(), sym, c.DefaultQuery("interval", analysis.DefaultInterval), size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

func (s *Server) getIndicator(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	size, ok := intQuery(c, "outputsize", provider.DefaultIndicatorSize)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	interval := c.DefaultQuery("interval", analysis.DefaultInterval)

	name := strings.ToLower(c.Param("name"))
	if name == "macd" {
		points, err := s.Data.MACD(ctx, sym, interval, size)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"symbol": sym, "interval": interval, "values": points})
		return
	}

	defaults := map[string]int{"rsi": provider.RSIPeriod, "sma": provider.SMAPeriod, "ema": provider.EMAPeriod}
	def, known := defaults[name]
	if !known {
		badRequest(c, "unknown indicator "+name)
		return
	}
	period, ok := intQuery(c, "period", def)
	if !ok {
		return
	}

	fetch := map[string]func() (any, error){
		"rsi": func() (any, error) { return s.Data.RSI(ctx, sym, interval, period, size) },
		"sma": func() (any, error) { return s.Data.SMA(ctx, sym, interval, period, size) },
		"ema": func() (any, error) { return s.Data.EMA(ctx, sym, interval, period, size) },
	}[name]
	points, err := fetch()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": sym, "interval": interval, "period": period, "values": points})
}

func (s *Server) getMarketData(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	bundle, err := s.Data.MarketData(c.Request.Context(), sym, c.DefaultQuery("interval", analysis.DefaultInterval))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (s *Server) getSymbols(c *gin.Context) {
	if label := c.Query("market"); label != "" {
		c.JSON(http.StatusOK, gin.H{"market": label, "symbols": market.SymbolsByMarket(label)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"forex":  market.ForexSymbols,
		"crypto": market.CryptoSymbols,
		"stocks": market.StockSymbols,
	})
}

type analyzeRequest struct {
	Symbol         string  `json:"symbol" binding:"required"`
	Strategy       string  `json:"strategy"`
	AccountSize    float64 `json:"accountSize" binding:"omitempty,gt=0"`
	RiskPercentage float64 `json:"riskPercentage" binding:"omitempty,gt=0,lte=100"`
	Interval       string  `json:"interval"`
	StrategyID     string  `json:"strategyId"`
	UserID         string  `json:"userId"`
}

func (s *Server) postAnalyze(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	cfg := s.Settings.Get()
	req := analysis.Request{
		Symbol:         body.Symbol,
		Strategy:       body.Strategy,
		AccountSize:    body.AccountSize,
		RiskPercentage: body.RiskPercentage,
		Interval:       body.Interval,
		StrategyID:     body.StrategyID,
		UserID:         body.UserID,
	}
	if req.Strategy == "" {
		req.Strategy = cfg.DefaultStrategy
	}
	if req.AccountSize == 0 {
		req.AccountSize = cfg.AccountSize
	}
	if req.RiskPercentage == 0 {
		req.RiskPercentage = cfg.RiskPerTrade
	}
	if req.Interval == "" {
		req.Interval = cfg.Interval
	}

	result, err := s.Analyzer.AnalyzeMarket(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.Recorder.RecordSignal(c.Request.Context(), recorder.NewSignalRecord(result)); err != nil {
		log.Printf("[ERROR] record signal %s: %v", result.Symbol, err)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getSignals(c *gin.Context) {
	limit, ok := intQuery(c, "limit", recorder.DefaultRecentLimit)
	if !ok {
		return
	}
	records, err := s.Recorder.RecentSignals(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Code: "STORAGE_ERROR"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": records})
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.Settings.Get())
}

type settingsRequest struct {
	AccountSize  float64 `json:"account_size" binding:"required"`
	RiskPerTrade float64 `json:"risk_per_trade" binding:"required"`
}

func (s *Server) putSettings(c *gin.Context) {
	var body settingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.Settings.UpdateRisk(body.AccountSize, body.RiskPerTrade); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "INVALID_SETTINGS"})
		return
	}
	c.JSON(http.StatusOK, s.Settings.Get())
}

type watchlistRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

func (s *Server) postWatchlist(c *gin.Context) {
	var body watchlistRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	added, err := s.Settings.AddSymbol(body.Symbol)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"watchlist": s.Settings.Get().Watchlist})
}

func (s *Server) deleteWatchlist(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	removed, err := s.Settings.RemoveSymbol(sym)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Code: "STORAGE_ERROR"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, errorResponse{Error: sym + " is not on the watchlist", Code: "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlist": s.Settings.Get().Watchlist})
}
