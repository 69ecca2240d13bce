package composite

import (
	"context"
	"errors"
	"testing"
)

type stubJournal struct {
	signals   int
	decisions int
	closed    bool
	err       error
}

func (s *stubJournal) RecordSignal(ctx context.Context, ts int64, name string, value float64, payload string) error {
	s.signals++
	return s.err
}

func (s *stubJournal) RecordDecision(ctx context.Context, ts int64, strategy, symbol string, quantity float64, payload string) error {
	s.decisions++
	return s.err
}

func (s *stubJournal) Close() error {
	s.closed = true
	return s.err
}

func TestJournalFansOut(t *testing.T) {
	a := &stubJournal{}
	b := &stubJournal{}
	j := New(a, nil, b) // nil entries are dropped

	ctx := context.Background()
	if err := j.RecordSignal(ctx, 1, "pairs:AAPL|MSFT", 1.2, "{}"); err != nil {
		t.Fatalf("record signal: %v", err)
	}
	if err := j.RecordDecision(ctx, 1, "pairs", "AAPL", -45, "{}"); err != nil {
		t.Fatalf("record decision: %v", err)
	}
	if a.signals != 1 || b.signals != 1 || a.decisions != 1 || b.decisions != 1 {
		t.Errorf("fan-out incomplete: %+v %+v", a, b)
	}
}

func TestJournalReportsFirstErrorButWritesAll(t *testing.T) {
	boom := errors.New("boom")
	a := &stubJournal{err: boom}
	b := &stubJournal{}
	j := New(a, b)

	err := j.RecordSignal(context.Background(), 1, "n", 0, "{}")
	if !errors.Is(err, boom) {
		t.Fatalf("want first backend error, got %v", err)
	}
	if b.signals != 1 {
		t.Error("later backends must still be written after an error")
	}
}

func TestJournalClose(t *testing.T) {
	a := &stubJournal{}
	b := &stubJournal{}
	if err := New(a, b).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("close must reach every backend")
	}
}
