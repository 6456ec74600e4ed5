package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"PocketSim/internal/model"
	"PocketSim/pkg/logger"
)

// MemoryDSN keeps the journal for the process lifetime only.
const MemoryDSN = ":memory:"

// SQLiteRecorder journals trades and pre-signal events into SQLite.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
// An empty path opens an in-memory database.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dbPath == "" {
		dbPath = MemoryDSN
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// each connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if !isMemory(dbPath) {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func isMemory(path string) bool {
	return path == MemoryDSN || strings.Contains(path, "mode=memory")
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			trade_id      TEXT NOT NULL UNIQUE,
			pair          TEXT NOT NULL,
			direction     TEXT NOT NULL,
			result        TEXT NOT NULL,
			amount        REAL,
			profit        REAL,
			open_price    REAL,
			close_price   REAL,
			strategy      TEXT,
			confidence    REAL,
			opened_at     INTEGER,
			closed_at     INTEGER NOT NULL,
			balance_after REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_closed ON trades(closed_at)`,

		`CREATE TABLE IF NOT EXISTS signal_events (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			signal_id       TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			pair            TEXT NOT NULL,
			direction       TEXT NOT NULL,
			event_type      TEXT NOT NULL,
			win_probability REAL,
			expiration      INTEGER,
			strategy        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_events_ts ON signal_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(rec *TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	closed := rec.ClosedAt
	if closed.IsZero() {
		closed = r.now()
	}
	_, err := r.db.Exec(`INSERT INTO trades
		(trade_id, pair, direction, result, amount, profit, open_price, close_price,
		 strategy, confidence, opened_at, closed_at, balance_after)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.TradeID, rec.Pair, string(rec.Direction), string(rec.Result),
		rec.Amount, rec.Profit, rec.OpenPrice, rec.ClosePrice,
		rec.StrategyName, rec.Confidence, rec.OpenedAt.Unix(), closed.Unix(), rec.BalanceAfter,
	)
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", rec.TradeID, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(evt *SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	_, err := r.db.Exec(`INSERT INTO signal_events
		(signal_id, timestamp, pair, direction, event_type, win_probability, expiration, strategy)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.SignalID, ts.Unix(), evt.Pair, string(evt.Direction), evt.EventType,
		evt.WinProbability, evt.Expiration, evt.StrategyName,
	)
	if err != nil {
		return fmt.Errorf("insert signal event: %w", err)
	}
	return nil
}

// StrategyPerformance aggregates win rate, count, profit factor and average profit.
// Strategies without trades report zeros.
func (r *SQLiteRecorder) StrategyPerformance(names []string) ([]model.StrategyPerformance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT strategy,
			COUNT(*),
			SUM(CASE WHEN result = 'WIN' THEN 1 ELSE 0 END),
			COALESCE(SUM(CASE WHEN profit > 0 THEN profit ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN profit < 0 THEN -profit ELSE 0 END), 0),
			COALESCE(AVG(profit), 0),
			MAX(closed_at)
		FROM trades GROUP BY strategy`)
	if err != nil {
		return nil, fmt.Errorf("query performance: %w", err)
	}
	defer rows.Close()

	type agg struct {
		total, wins         int
		grossWin, grossLoss float64
		avg                 float64
		last                int64
	}
	byName := make(map[string]agg)
	for rows.Next() {
		var name sql.NullString
		var a agg
		if err := rows.Scan(&name, &a.total, &a.wins, &a.grossWin, &a.grossLoss, &a.avg, &a.last); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		byName[name.String] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance: %w", err)
	}

	now := r.now()
	out := make([]model.StrategyPerformance, len(names))
	for i, name := range names {
		p := model.StrategyPerformance{Name: name, LastUpdate: now, IsActive: true}
		if a, ok := byName[name]; ok && a.total > 0 {
			p.TotalTrades = a.total
			p.WinRate = round2(float64(a.wins) / float64(a.total) * 100)
			p.AvgProfit = round2(a.avg)
			if a.grossLoss > 0 {
				p.ProfitFactor = round2(a.grossWin / a.grossLoss)
			} else {
				p.ProfitFactor = round2(a.grossWin)
			}
			p.LastUpdate = time.Unix(a.last, 0)
		}
		out[i] = p
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}
