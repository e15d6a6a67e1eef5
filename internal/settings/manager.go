package settings

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/bilalabdelkadir/teftef-trader/internal/market"
	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

// Accepted ranges for UpdateRisk.
const (
	MinAccountSize = 100.0
	MaxAccountSize = 100_000_000.0
	MinRisk        = 0.1
	MaxRisk        = 10.0
)

var ErrInvalidSymbol = errors.New("invalid symbol")

// Manager owns the persisted user settings with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.Settings
	filePath string
}

// NewManager creates a Manager, loading state from disk and filling unset
// fields from defaults.
func NewManager(filePath string, defaults model.Settings) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}

	if state.AccountSize == 0 {
		state.AccountSize = defaults.AccountSize
	}
	if state.RiskPerTrade == 0 {
		state.RiskPerTrade = defaults.RiskPerTrade
	}
	if state.DefaultStrategy == "" {
		state.DefaultStrategy = defaults.DefaultStrategy
	}
	if state.StrategyID == "" {
		state.StrategyID = defaults.StrategyID
	}
	if state.Interval == "" {
		state.Interval = defaults.Interval
	}
	if state.Watchlist == nil {
		state.Watchlist = append([]string{}, defaults.Watchlist...)
	}

	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() model.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *m.state
	s.Watchlist = slices.Clone(m.state.Watchlist)
	return s
}

// AddSymbol adds a normalized symbol to the watchlist. It reports false if the
// symbol was already present.
func (m *Manager) AddSymbol(symbol string) (bool, error) {
	sym := market.Normalize(symbol)
	if sym == "" {
		return false, ErrInvalidSymbol
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.state.Watchlist, sym) {
		return false, nil
	}
	m.state.Watchlist = append(m.state.Watchlist, sym)
	if err := m.save(); err != nil {
		return false, fmt.Errorf("save settings: %w", err)
	}
	return true, nil
}

// RemoveSymbol drops a symbol from the watchlist. It reports false if the
// symbol was not present.
func (m *Manager) RemoveSymbol(symbol string) (bool, error) {
	sym := market.Normalize(symbol)

	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.Index(m.state.Watchlist, sym)
	if i < 0 {
		return false, nil
	}
	m.state.Watchlist = slices.Delete(m.state.Watchlist, i, i+1)
	if err := m.save(); err != nil {
		return false, fmt.Errorf("save settings: %w", err)
	}
	return true, nil
}

// UpdateRisk sets the account size and per-trade risk percentage.
func (m *Manager) UpdateRisk(accountSize, riskPerTrade float64) error {
	if accountSize < MinAccountSize || accountSize > MaxAccountSize {
		return fmt.Errorf("account size %.2f out of range [%.0f, %.0f]", accountSize, MinAccountSize, MaxAccountSize)
	}
	if riskPerTrade < MinRisk || riskPerTrade > MaxRisk {
		return fmt.Errorf("risk per trade %.2f%% out of range [%.1f, %.1f]", riskPerTrade, MinRisk, MaxRisk)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.AccountSize = accountSize
	m.state.RiskPerTrade = riskPerTrade
	if err := m.save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
