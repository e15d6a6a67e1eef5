package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/bilalabdelkadir/teftef-trader/internal/analysis"
	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/notifier"
	"github.com/bilalabdelkadir/teftef-trader/internal/recorder"
	"github.com/bilalabdelkadir/teftef-trader/internal/settings"
)

const sendRetries = 3

// Analyzer runs single and batch market analyses.
type Analyzer interface {
	AnalyzeMarket(ctx context.Context, req analysis.Request) (*model.AnalysisResult, error)
	BatchAnalyze(ctx context.Context, symbols []string, opts analysis.BatchOptions) []*model.AnalysisResult
}

// PriceSource prices a batch of symbols.
type PriceSource interface {
	Prices(ctx context.Context, symbols []string) map[string]float64
}

// Notifier delivers messages to the user.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options tunes the market scan.
type Options struct {
	ScanDelay     time.Duration
	MaxDuration   time.Duration
	MinConfidence float64
}

// Scheduler manages the market scan job and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Prices   PriceSource
	Settings *settings.Manager
	// Notifier may be nil, in which case nothing is sent.
	Notifier Notifier
	Recorder recorder.Recorder
	Ctx      context.Context

	opts     Options
	scanning atomic.Bool
	now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an Analyzer, prices PriceSource, sm *settings.Manager, n Notifier, rec recorder.Recorder, opts Options) *Scheduler {
	if opts.ScanDelay <= 0 {
		opts.ScanDelay = analysis.DefaultBatchDelay
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = time.Hour
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = analysis.DefaultMinConfidence
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: an,
		Prices:   prices,
		Settings: sm,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
		opts:     opts,
		now:      time.Now,
	}
}

// RegisterAll registers the market scan task.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the market scan immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	if _, _, err := s.RunScan(s.Ctx); err != nil {
		log.Printf("[WARN] scan skipped: %v", err)
	}
}

// ErrScanRunning is returned by RunScan while another scan is in progress.
var ErrScanRunning = errors.New("scan already running")

// WatchedSymbols returns the watchlist, or every supported symbol if it is empty.
func (s *Scheduler) WatchedSymbols() []string {
	if wl := s.Settings.Get().Watchlist; len(wl) > 0 {
		return wl
	}
	return market.AllSymbols()
}

// RunScan analyzes every watched symbol, records and announces each valid
// setup, and records a summary of the run. At most one scan runs at a time.
func (s *Scheduler) RunScan(ctx context.Context) (*recorder.ScanSummary, []*model.AnalysisResult, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		return nil, nil, ErrScanRunning
	}
	defer s.scanning.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.opts.MaxDuration)
	defer cancel()

	cfg := s.Settings.Get()
	symbols := s.WatchedSymbols()
	summary := &recorder.ScanSummary{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
		Symbols:   len(symbols),
	}
	log.Printf("[INFO] starting market scan of %d symbols", len(symbols))

	results := s.Analyzer.BatchAnalyze(ctx, symbols, analysis.BatchOptions{
		Request: analysis.Request{
			Strategy:       cfg.DefaultStrategy,
			AccountSize:    cfg.AccountSize,
			RiskPercentage: cfg.RiskPerTrade,
			Interval:       cfg.Interval,
			StrategyID:     cfg.StrategyID,
		},
		Delay: s.opts.ScanDelay,
	})
	summary.Analyzed = len(results)
	summary.Failed = len(symbols) - len(results)

	var setups []*model.AnalysisResult
	for _, r := range results {
		if !r.Signal.HasValidSetup {
			continue
		}
		setups = append(setups, r)
		rec := recorder.NewSignalRecord(r)
		if rec.Status == string(model.StatusCaution) {
			log.Printf("[WARN] low confidence signal for %s: %.0f%% below %.0f%%", r.Symbol, r.Signal.Confidence, recorder.CautionBelow)
		}
		// The scan deadline must not prevent recording finished work.
		if err := s.Recorder.RecordSignal(s.Ctx, rec); err != nil {
			log.Printf("[ERROR] record signal %s: %v", r.Symbol, err)
		}
		s.trySend(notifier.FormatSignalAlert(r))
	}
	summary.Signals = len(setups)
	summary.FinishedAt = s.now()

	if err := s.Recorder.RecordScan(s.Ctx, summary); err != nil {
		log.Printf("[ERROR] record scan: %v", err)
	}
	log.Printf("[INFO] market scan finished: %d/%d analyzed, %d signals in %s",
		summary.Analyzed, summary.Symbols, summary.Signals, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second))
	s.trySend(notifier.FormatScanSummary(summary, analysis.FilterHighConfidence(setups, s.opts.MinConfidence)))

	return summary, setups, nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
