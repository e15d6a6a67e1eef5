package market

import (
	"strings"
	"unicode"
)

// AssetClass is the market a symbol belongs to.
type AssetClass string

const (
	Stock  AssetClass = "stock"
	Forex  AssetClass = "forex"
	Crypto AssetClass = "crypto"
)

// Label returns the market label used in analysis results ("stocks", "forex", "crypto").
func (a AssetClass) Label() string {
	if a == Stock {
		return "stocks"
	}
	return string(a)
}

// IsPair reports whether symbols of this class are quoted as BASE/QUOTE pairs.
func (a AssetClass) IsPair() bool {
	return a == Forex || a == Crypto
}

var (
	ForexSymbols  = []string{"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CAD", "NZD/USD"}
	CryptoSymbols = []string{"BTC/USD", "ETH/USD", "SOL/USD", "XRP/USD"}
	StockSymbols  = []string{"AAPL", "TSLA", "GOOGL", "MSFT", "AMZN", "NVDA"}
)

// Names maps catalogue symbols to display names.
var Names = map[string]string{
	"EUR/USD": "Euro / US Dollar",
	"GBP/USD": "British Pound / US Dollar",
	"USD/JPY": "US Dollar / Japanese Yen",
	"AUD/USD": "Australian Dollar / US Dollar",
	"USD/CAD": "US Dollar / Canadian Dollar",
	"NZD/USD": "New Zealand Dollar / US Dollar",
	"BTC/USD": "Bitcoin",
	"ETH/USD": "Ethereum",
	"SOL/USD": "Solana",
	"XRP/USD": "Ripple",
	"AAPL":    "Apple Inc.",
	"TSLA":    "Tesla Inc.",
	"GOOGL":   "Alphabet Inc.",
	"MSFT":    "Microsoft Corp.",
	"AMZN":    "Amazon.com Inc.",
	"NVDA":    "NVIDIA Corp.",
}

func contains(list []string, symbol string) bool {
	for _, s := range list {
		if s == symbol {
			return true
		}
	}
	return false
}

// Classify returns the asset class of symbol. Listed symbols take their list's
// class. Unlisted symbols without a "/" are treated as stocks, and unlisted
// pairs as forex.
func Classify(symbol string) AssetClass {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case contains(StockSymbols, s):
		return Stock
	case contains(ForexSymbols, s):
		return Forex
	case contains(CryptoSymbols, s):
		return Crypto
	case !strings.Contains(s, "/"):
		return Stock
	default:
		return Forex
	}
}

// SymbolsByMarket returns the catalogue for a market label ("forex", "crypto", "stocks").
// Unknown labels return an empty list.
func SymbolsByMarket(label string) []string {
	switch strings.ToLower(label) {
	case "forex":
		return append([]string(nil), ForexSymbols...)
	case "crypto":
		return append([]string(nil), CryptoSymbols...)
	case "stocks", "stock":
		return append([]string(nil), StockSymbols...)
	default:
		return []string{}
	}
}

// AllSymbols returns every catalogue symbol.
func AllSymbols() []string {
	all := make([]string, 0, len(ForexSymbols)+len(CryptoSymbols)+len(StockSymbols))
	all = append(all, ForexSymbols...)
	all = append(all, CryptoSymbols...)
	return append(all, StockSymbols...)
}

// Normalize upper-cases a symbol and turns a six-letter pair such as "EURUSD"
// into "EUR/USD". Other symbols are returned trimmed and upper-cased.
func Normalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(s, "/") || len(s) != 6 {
		return s
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return s
		}
	}
	pair := s[:3] + "/" + s[3:]
	if contains(ForexSymbols, pair) || contains(CryptoSymbols, pair) {
		return pair
	}
	return s
}
