// Package postgres journals signals and decisions to a shared postgres
// instance, for deployments where several engines report to one place.
package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"qhedge/internal/application/port"
)

type Journal struct {
	db *sql.DB
}

func New(dsn string) (*Journal, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	j := &Journal{db: db}
	if err := j.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS signals (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  name TEXT NOT NULL,
  value DOUBLE PRECISION NOT NULL,
  payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(ts_ms);

CREATE TABLE IF NOT EXISTS decisions (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  strategy TEXT NOT NULL,
  symbol TEXT NOT NULL,
  quantity DOUBLE PRECISION NOT NULL,
  payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(ts_ms);
`)
	return err
}

func (j *Journal) RecordSignal(ctx context.Context, ts int64, name string, value float64, payload string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO signals(ts_ms, name, value, payload) VALUES($1, $2, $3, $4)`,
		ts, name, value, payload)
	return err
}

func (j *Journal) RecordDecision(ctx context.Context, ts int64, strategy, symbol string, quantity float64, payload string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO decisions(ts_ms, strategy, symbol, quantity, payload) VALUES($1, $2, $3, $4, $5)`,
		ts, strategy, symbol, quantity, payload)
	return err
}

var _ port.DecisionJournal = (*Journal)(nil)
