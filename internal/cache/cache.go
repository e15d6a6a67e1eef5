package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TTLs per data kind.
const (
	PriceTTL     = 60 * time.Second
	SeriesTTL    = 300 * time.Second
	IndicatorTTL = 300 * time.Second
	BundleTTL    = 300 * time.Second
)

// KeyPrefix is the namespace of every market data key.
const KeyPrefix = "market"

// Cache is a fail-open key-value store. Get reports a miss on any error and
// Set never surfaces failures; implementations log them instead.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
}

// Key builds a deterministic cache key:
//
//	market:{kind}:{symbol}:{param1}:{param2}...
//
// Slashes in the symbol are replaced with dashes, so "EUR/USD" becomes "EUR-USD".
func Key(kind, symbol string, params ...any) string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	b.WriteByte(':')
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(NormalizeSymbol(symbol))
	for _, p := range params {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// NormalizeSymbol replaces every "/" with "-".
func NormalizeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

// NoopCache never stores anything. Used when no cache backend is configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) Get(_ context.Context, _ string, _ any) bool             { return false }
func (NoopCache) Set(_ context.Context, _ string, _ any, _ time.Duration) {}
