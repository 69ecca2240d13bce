// Package composite fans a decision journal out to several backends.
package composite

import (
	"context"

	"qhedge/internal/application/port"
)

type Journal struct {
	journals []port.DecisionJournal
}

func New(journals ...port.DecisionJournal) *Journal {
	// nil entries are allowed; filter here for safety
	out := make([]port.DecisionJournal, 0, len(journals))
	for _, j := range journals {
		if j != nil {
			out = append(out, j)
		}
	}
	return &Journal{journals: out}
}

func (c *Journal) RecordSignal(ctx context.Context, ts int64, name string, value float64, payload string) error {
	var firstErr error
	for _, j := range c.journals {
		if err := j.RecordSignal(ctx, ts, name, value, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Journal) RecordDecision(ctx context.Context, ts int64, strategy, symbol string, quantity float64, payload string) error {
	var firstErr error
	for _, j := range c.journals {
		if err := j.RecordDecision(ctx, ts, strategy, symbol, quantity, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Journal) Close() error {
	var firstErr error
	for _, j := range c.journals {
		if err := j.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.DecisionJournal = (*Journal)(nil)
