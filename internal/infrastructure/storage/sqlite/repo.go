// Package sqlite stores the formation dataset and the decision journal
// in an embedded sqlite database.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"qhedge/internal/application/port"
	"qhedge/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS calibrations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  pair TEXT NOT NULL,
  hedge_ratio REAL NOT NULL,
  spread_mean REAL NOT NULL,
  spread_std REAL NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE(pair)
);

CREATE TABLE IF NOT EXISTS signals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  name TEXT NOT NULL,
  value REAL NOT NULL,
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(ts_ms);
CREATE INDEX IF NOT EXISTS idx_signals_name ON signals(name);

CREATE TABLE IF NOT EXISTS decisions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  strategy TEXT NOT NULL,
  symbol TEXT NOT NULL,
  quantity REAL NOT NULL,
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(ts_ms);
CREATE INDEX IF NOT EXISTS idx_decisions_strategy ON decisions(strategy);
`)
	return err
}

// Load reads the persisted formation dataset. An empty table reports
// model.ErrNoCalibration so the caller recalibrates.
func (r *Repo) Load(ctx context.Context) (model.FormationDataset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT pair, hedge_ratio, spread_mean, spread_std FROM calibrations ORDER BY id`)
	if err != nil {
		return model.FormationDataset{}, err
	}
	defer rows.Close()

	var dataset model.FormationDataset
	for rows.Next() {
		var key string
		var rec model.CalibrationRecord
		if err := rows.Scan(&key, &rec.HedgeRatio, &rec.SpreadMean, &rec.SpreadStd); err != nil {
			return model.FormationDataset{}, err
		}
		rec.Pair, err = model.ParsePairKey(key)
		if err != nil {
			return model.FormationDataset{}, err
		}
		dataset.Records = append(dataset.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return model.FormationDataset{}, err
	}
	if dataset.Len() == 0 {
		return model.FormationDataset{}, model.ErrNoCalibration
	}
	return dataset, nil
}

// Save replaces the stored dataset wholesale inside one transaction.
func (r *Repo) Save(ctx context.Context, dataset model.FormationDataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM calibrations`); err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	for _, rec := range dataset.Records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO calibrations(pair, hedge_ratio, spread_mean, spread_std, created_at)
			 VALUES(?, ?, ?, ?, ?)`,
			rec.Pair.Key(), rec.HedgeRatio, rec.SpreadMean, rec.SpreadStd, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) RecordSignal(ctx context.Context, ts int64, name string, value float64, payload string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO signals(ts_ms, name, value, payload, created_at) VALUES(?, ?, ?, ?, ?)`,
		ts, name, value, payload, time.Now().UnixMilli())
	return err
}

func (r *Repo) RecordDecision(ctx context.Context, ts int64, strategy, symbol string, quantity float64, payload string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO decisions(ts_ms, strategy, symbol, quantity, payload, created_at) VALUES(?, ?, ?, ?, ?, ?)`,
		ts, strategy, symbol, quantity, payload, time.Now().UnixMilli())
	return err
}

var (
	_ port.CalibrationRepository = (*Repo)(nil)
	_ port.DecisionJournal       = (*Repo)(nil)
)
