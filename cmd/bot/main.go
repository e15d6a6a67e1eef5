package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bilalabdelkadir/teftef-trader/internal/analysis"
	"github.com/bilalabdelkadir/teftef-trader/internal/api"
	"github.com/bilalabdelkadir/teftef-trader/internal/cache"
	"github.com/bilalabdelkadir/teftef-trader/internal/config"
	"github.com/bilalabdelkadir/teftef-trader/internal/llm"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
	"github.com/bilalabdelkadir/teftef-trader/internal/notifier"
	"github.com/bilalabdelkadir/teftef-trader/internal/provider"
	"github.com/bilalabdelkadir/teftef-trader/internal/recorder"
	"github.com/bilalabdelkadir/teftef-trader/internal/router"
	"github.com/bilalabdelkadir/teftef-trader/internal/scheduler"
	"github.com/bilalabdelkadir/teftef-trader/internal/settings"
	"github.com/bilalabdelkadir/teftef-trader/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] teftef-trader starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newCache(ctx, cfg)

	finnhub := provider.NewFinnhubSource(cfg.Providers.Finnhub.APIKey, cfg.Proxy)
	if cfg.Providers.Finnhub.BaseURL != "" {
		finnhub.BaseURL = cfg.Providers.Finnhub.BaseURL
	}
	twelve := provider.NewTwelveDataSource(cfg.Providers.TwelveData.APIKey, cfg.Proxy)
	if cfg.Providers.TwelveData.BaseURL != "" {
		twelve.BaseURL = cfg.Providers.TwelveData.BaseURL
	}
	data := router.New(
		provider.NewClient(finnhub, store, cfg.Providers.StaleTTL),
		provider.NewClient(twelve, store, cfg.Providers.StaleTTL),
	)

	var gen *llm.Client
	if cfg.LLM.Provider == "gemini" {
		gen = llm.NewGemini(cfg.LLM.GeminiKey, cfg.LLM.Model, cfg.Proxy)
	} else {
		gen = llm.NewOpenRouter(cfg.LLM.OpenRouterKey, cfg.LLM.Model, cfg.Proxy)
	}
	log.Printf("[INFO] llm: %s (%s)", gen.Name, gen.Model)

	lib, err := strategy.NewLibrary(cfg.Strategies)
	if err != nil {
		log.Fatalf("[FATAL] load strategies: %v", err)
	}
	analyzer := analysis.NewAnalyzer(data, gen, lib)

	sm, err := settings.NewManager(cfg.Settings.StateFile, model.Settings{
		AccountSize:     cfg.Analysis.AccountSize,
		RiskPerTrade:    cfg.Analysis.RiskPerTrade,
		DefaultStrategy: cfg.Analysis.Strategy,
		StrategyID:      cfg.Analysis.StrategyID,
		Interval:        cfg.Analysis.Interval,
		Watchlist:       cfg.Analysis.Watchlist,
	})
	if err != nil {
		log.Fatalf("[FATAL] init settings: %v", err)
	}

	rec := newRecorder(cfg)
	defer rec.Close()

	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[WARN] telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, analyzer, data, sm, n, rec, scheduler.Options{
		ScanDelay:     cfg.Schedule.ScanDelay,
		MaxDuration:   cfg.Schedule.ScanMaxDuration,
		MinConfidence: cfg.Analysis.MinConfidence,
	})
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	srv := api.NewServer(cfg.Server.Addr, data, analyzer, sm, rec)
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, scanning now")
		go sched.RunScanNow()
	}

	log.Println("[INFO] teftef-trader is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] teftef-trader stopped")
}

func newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	switch cfg.Cache.Backend {
	case "redis":
		rc := cache.NewRedisCache(cache.RedisOptions{
			Addr:      cfg.Cache.Addr,
			Password:  cfg.Cache.Password,
			DB:        cfg.Cache.DB,
			Namespace: cfg.Cache.Namespace,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			log.Printf("[WARN] redis ping %s: %v (cache reads will miss until it recovers)", cfg.Cache.Addr, err)
		}
		log.Printf("[INFO] cache: redis %s", cfg.Cache.Addr)
		return rc
	case "none":
		log.Println("[INFO] cache: disabled")
		return cache.NewNoopCache()
	default:
		log.Println("[INFO] cache: memory")
		return cache.NewMemory()
	}
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.Driver == "none" {
		return recorder.NewNoopRecorder()
	}
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == "sqlite" {
		dsn = cfg.Database.SQLitePath
	}
	rec, err := recorder.Open(cfg.Database.Driver, dsn)
	if err != nil {
		log.Printf("[WARN] init %s recorder failed, using noop: %v", cfg.Database.Driver, err)
		return recorder.NewNoopRecorder()
	}
	log.Printf("[INFO] recorder: %s", cfg.Database.Driver)
	return rec
}
