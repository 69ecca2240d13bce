package service

import (
	"context"
	"time"

	"qhedge/internal/domain/model"
)

// memRepo is an in-memory CalibrationRepository.
type memRepo struct {
	dataset model.FormationDataset
	has     bool
	saves   int
}

func (r *memRepo) Load(ctx context.Context) (model.FormationDataset, error) {
	if !r.has {
		return model.FormationDataset{}, model.ErrNoCalibration
	}
	return r.dataset, nil
}

func (r *memRepo) Save(ctx context.Context, dataset model.FormationDataset) error {
	r.dataset = dataset
	r.has = true
	r.saves++
	return nil
}

func (r *memRepo) Close() error { return nil }

type journalEntry struct {
	name     string
	value    float64
	strategy string
	symbol   string
	quantity float64
}

// memJournal records signal and decision rows in memory.
type memJournal struct {
	signals   []journalEntry
	decisions []journalEntry
}

func (j *memJournal) RecordSignal(ctx context.Context, ts int64, name string, value float64, payload string) error {
	j.signals = append(j.signals, journalEntry{name: name, value: value})
	return nil
}

func (j *memJournal) RecordDecision(ctx context.Context, ts int64, strategy, symbol string, quantity float64, payload string) error {
	j.decisions = append(j.decisions, journalEntry{strategy: strategy, symbol: symbol, quantity: quantity})
	return nil
}

func (j *memJournal) Close() error { return nil }

// memSink records decision and alert lines in memory.
type memSink struct {
	decisions []string
	alerts    []string
}

func (s *memSink) WriteDecision(ts time.Time, line string) error {
	s.decisions = append(s.decisions, line)
	return nil
}

func (s *memSink) WriteAlert(ts time.Time, line string) error {
	s.alerts = append(s.alerts, line)
	return nil
}

// fakeStrategy counts Rebalance calls and optionally fails.
type fakeStrategy struct {
	name  string
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Rebalance(ctx context.Context, dryrun bool) error {
	f.calls++
	return f.err
}
