package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bilalabdelkadir/teftef-trader/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Providers struct {
		Finnhub struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"finnhub"`
		TwelveData struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"twelve_data"`
		// StaleTTL is how long fetched data stays available for rate-limit fallback.
		StaleTTL time.Duration `yaml:"stale_ttl"`
	} `yaml:"providers"`
	LLM struct {
		Provider      string `yaml:"provider"` // "openrouter" or "gemini"
		OpenRouterKey string `yaml:"openrouter_api_key"`
		GeminiKey     string `yaml:"gemini_api_key"`
		Model         string `yaml:"model"`
	} `yaml:"llm"`
	Cache struct {
		Backend   string `yaml:"backend"` // "redis", "memory" or "none"
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		Namespace string `yaml:"namespace"`
	} `yaml:"cache"`
	Database struct {
		Driver     string `yaml:"driver"` // "sqlite", "postgres" or "none"
		DSN        string `yaml:"dsn"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		ScanCron        string        `yaml:"scan_cron"`
		ScanDelay       time.Duration `yaml:"scan_delay"`
		ScanMaxDuration time.Duration `yaml:"scan_max_duration"`
	} `yaml:"schedule"`
	Analysis struct {
		MinConfidence float64  `yaml:"min_confidence"`
		AccountSize   float64  `yaml:"account_size"`
		RiskPerTrade  float64  `yaml:"risk_per_trade"`
		Strategy      string   `yaml:"strategy"`
		StrategyID    string   `yaml:"strategy_id"`
		Interval      string   `yaml:"interval"`
		Watchlist     []string `yaml:"watchlist"`
	} `yaml:"analysis"`
	Settings struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"settings"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Strategies []strategy.Definition `yaml:"strategies"`
	Proxy      string                `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Providers.Finnhub.APIKey, "FINNHUB_API_KEY")
	// TEWELEVE_DATA is the key name older deployments used.
	setString(&c.Providers.TwelveData.APIKey, "TEWELEVE_DATA")
	setString(&c.Providers.TwelveData.APIKey, "TWELVE_DATA_API_KEY")
	setString(&c.LLM.Provider, "AI_PROVIDER")
	setString(&c.LLM.OpenRouterKey, "OPENROUTER_API_KEY")
	setString(&c.LLM.GeminiKey, "GOOGLE_GENERATIVE_AI_API_KEY")
	setString(&c.LLM.Model, "AI_MODEL")
	setString(&c.Cache.Addr, "REDIS_ADDR")
	setString(&c.Cache.Password, "REDIS_PASSWORD")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Schedule.ScanCron, "CRON_SCAN")
	setString(&c.Server.Addr, "HTTP_ADDR")
	setString(&c.Proxy, "HTTPS_PROXY")

	if v := os.Getenv("ACCOUNT_SIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Analysis.AccountSize = f
		}
	}
	if v := os.Getenv("RISK_PER_TRADE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Analysis.RiskPerTrade = f
		}
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Analysis.Watchlist = splitList(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Providers.StaleTTL == 0 {
		c.Providers.StaleTTL = 24 * time.Hour
	}
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openrouter"
	}
	if c.LLM.Provider == "gemini" && c.LLM.GeminiKey == "" && c.LLM.OpenRouterKey != "" {
		c.LLM.Provider = "openrouter"
	}
	if c.Cache.Backend == "" {
		if c.Cache.Addr != "" {
			c.Cache.Backend = "redis"
		} else {
			c.Cache.Backend = "memory"
		}
	}
	if c.Database.Driver == "" {
		if c.Database.DSN != "" {
			c.Database.Driver = "postgres"
		} else {
			c.Database.Driver = "sqlite"
		}
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/signals.db"
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 0 7,13 * * 1-5"
	}
	if c.Schedule.ScanDelay == 0 {
		c.Schedule.ScanDelay = 2 * time.Second
	}
	if c.Schedule.ScanMaxDuration == 0 {
		c.Schedule.ScanMaxDuration = time.Hour
	}
	if c.Analysis.MinConfidence == 0 {
		c.Analysis.MinConfidence = 70
	}
	if c.Analysis.AccountSize == 0 {
		c.Analysis.AccountSize = 10000
	}
	if c.Analysis.RiskPerTrade == 0 {
		c.Analysis.RiskPerTrade = 1
	}
	if c.Analysis.Strategy == "" {
		c.Analysis.Strategy = strategy.DefaultStrategy
	}
	if c.Analysis.Interval == "" {
		c.Analysis.Interval = "1h"
	}
	if c.Settings.StateFile == "" {
		c.Settings.StateFile = "data/settings.json"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// LLMKey returns the API key of the selected LLM provider.
func (c *Config) LLMKey() string {
	if c.LLM.Provider == "gemini" {
		return c.LLM.GeminiKey
	}
	return c.LLM.OpenRouterKey
}

// TelegramEnabled reports whether notifications and chat commands are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Providers.Finnhub.APIKey == "" && c.Providers.TwelveData.APIKey == "" {
		return errors.New("at least one of providers.finnhub.api_key or providers.twelve_data.api_key is required")
	}
	switch c.LLM.Provider {
	case "openrouter", "gemini":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLMKey() == "" {
		return fmt.Errorf("an api key for llm provider %s is required", c.LLM.Provider)
	}
	switch c.Cache.Backend {
	case "redis":
		if c.Cache.Addr == "" {
			return errors.New("cache.addr is required for the redis backend")
		}
	case "memory", "none":
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	switch c.Database.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Analysis.AccountSize <= 0 {
		return errors.New("analysis.account_size must be positive")
	}
	if c.Analysis.RiskPerTrade <= 0 {
		return errors.New("analysis.risk_per_trade must be positive")
	}
	if c.Analysis.MinConfidence < 0 || c.Analysis.MinConfidence > 100 {
		return errors.New("analysis.min_confidence must be within [0, 100]")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
