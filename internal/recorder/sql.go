package recorder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLRecorder persists the ledger through database/sql. Queries are written
// with ? placeholders and rebound for the driver.
type SQLRecorder struct {
	db     *sqlx.DB
	driver string
	mu     sync.Mutex
}

func newSQLRecorder(db *sqlx.DB, driver string) (*SQLRecorder, error) {
	r := &SQLRecorder{db: db, driver: driver}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id               TEXT PRIMARY KEY,
			created_at       BIGINT NOT NULL,
			symbol           TEXT NOT NULL,
			market           TEXT,
			strategy         TEXT,
			timeframe        TEXT,
			direction        TEXT,
			has_valid_setup  INTEGER,
			entry_price      DOUBLE PRECISION,
			stop_loss        DOUBLE PRECISION,
			take_profit      DOUBLE PRECISION,
			confidence       DOUBLE PRECISION,
			risk_reward      DOUBLE PRECISION,
			position_size    DOUBLE PRECISION,
			reasoning        TEXT,
			market_structure TEXT,
			status           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_created ON signals(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,

		`CREATE TABLE IF NOT EXISTS scans (
			id          TEXT PRIMARY KEY,
			started_at  BIGINT NOT NULL,
			finished_at BIGINT NOT NULL,
			symbols     INTEGER,
			analyzed    INTEGER,
			signals     INTEGER,
			failed      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_started ON scans(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// signalRow mirrors the signals table.
type signalRow struct {
	ID              string  `db:"id"`
	CreatedAt       int64   `db:"created_at"`
	Symbol          string  `db:"symbol"`
	Market          string  `db:"market"`
	Strategy        string  `db:"strategy"`
	Timeframe       string  `db:"timeframe"`
	Direction       string  `db:"direction"`
	HasValidSetup   int     `db:"has_valid_setup"`
	EntryPrice      float64 `db:"entry_price"`
	StopLoss        float64 `db:"stop_loss"`
	TakeProfit      float64 `db:"take_profit"`
	Confidence      float64 `db:"confidence"`
	RiskReward      float64 `db:"risk_reward"`
	PositionSize    float64 `db:"position_size"`
	Reasoning       string  `db:"reasoning"`
	MarketStructure string  `db:"market_structure"`
	Status          string  `db:"status"`
}

func (r *SQLRecorder) RecordSignal(ctx context.Context, rec *SignalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	valid := 0
	if rec.HasValidSetup {
		valid = 1
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO signals
		(id, created_at, symbol, market, strategy, timeframe, direction, has_valid_setup,
		 entry_price, stop_loss, take_profit, confidence, risk_reward, position_size,
		 reasoning, market_structure, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		rec.ID, created.UnixMilli(), rec.Symbol, rec.Market, rec.Strategy, rec.Interval,
		rec.Direction, valid,
		rec.EntryPrice, rec.StopLoss, rec.TakeProfit, rec.Confidence, rec.RiskReward, rec.PositionSize,
		rec.Reasoning, rec.MarketStructure, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("insert signal %s: %w", rec.Symbol, err)
	}
	return nil
}

func (r *SQLRecorder) RecentSignals(ctx context.Context, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var rows []signalRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT
		id, created_at, symbol, market, strategy, timeframe, direction, has_valid_setup,
		entry_price, stop_loss, take_profit, confidence, risk_reward, position_size,
		reasoning, market_structure, status
		FROM signals ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("select signals: %w", err)
	}

	out := make([]SignalRecord, len(rows))
	for i, row := range rows {
		out[i] = SignalRecord{
			ID:              row.ID,
			Symbol:          row.Symbol,
			Market:          row.Market,
			Strategy:        row.Strategy,
			Interval:        row.Timeframe,
			Direction:       row.Direction,
			HasValidSetup:   row.HasValidSetup != 0,
			EntryPrice:      row.EntryPrice,
			StopLoss:        row.StopLoss,
			TakeProfit:      row.TakeProfit,
			Confidence:      row.Confidence,
			RiskReward:      row.RiskReward,
			PositionSize:    row.PositionSize,
			Reasoning:       row.Reasoning,
			MarketStructure: row.MarketStructure,
			Status:          row.Status,
			CreatedAt:       time.UnixMilli(row.CreatedAt).UTC(),
		}
	}
	return out, nil
}

func (r *SQLRecorder) RecordScan(ctx context.Context, s *ScanSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO scans
		(id, started_at, finished_at, symbols, analyzed, signals, failed)
		VALUES (?,?,?,?,?,?,?)`),
		s.ID, s.StartedAt.UnixMilli(), s.FinishedAt.UnixMilli(),
		s.Symbols, s.Analyzed, s.Signals, s.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

func (r *SQLRecorder) Close() error {
	log.Printf("[INFO] closing %s recorder", r.driver)
	return r.db.Close()
}
