package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"qhedge/internal/domain/model"
	"qhedge/internal/infrastructure/gateway/paper"
)

func calibrated(t *testing.T, leg1, leg2 string, hedgeRatio, mean, std float64) model.CalibrationRecord {
	t.Helper()
	pair, err := model.NewPair(leg1, leg2)
	if err != nil {
		t.Fatal(err)
	}
	return model.CalibrationRecord{Pair: pair, HedgeRatio: hedgeRatio, SpreadMean: mean, SpreadStd: std}
}

func newPairsFixture(t *testing.T, records ...model.CalibrationRecord) (*PairsStrategy, *paper.Gateway, *memRepo, *memJournal) {
	t.Helper()
	gw := paper.New(100000)
	repo := &memRepo{dataset: model.FormationDataset{Records: records}, has: true}
	journal := &memJournal{}
	s := NewPairsStrategy(gw, repo, paper.NewHistory(nil), journal, &memSink{}, PairsConfig{
		Universe: []string{"AAPL", "MSFT"},
		NumPairs: 10,
		EntryZ:   1.0,
		ExitZ:    1.0,
	})
	return s, gw, repo, journal
}

func TestPairsStrategyEntersShortSpread(t *testing.T) {
	s, gw, _, journal := newPairsFixture(t, calibrated(t, "AAPL", "MSFT", 1, 0, 0.1))
	gw.SetQuote(model.Stock("AAPL"), model.Quote{Last: 110})
	gw.SetQuote(model.Stock("MSFT"), model.Quote{Last: 98})
	// z = ln(110/98)/0.1 ~ 1.16, above the entry threshold

	if err := s.Rebalance(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// one pair: allotment = min(100000/2, 5%*100000) = 5000, 45 shares at 110
	fills := gw.Fills()
	if len(fills) != 2 {
		t.Fatalf("want 2 fills, got %d", len(fills))
	}
	if fills[0].Security.Symbol != "AAPL" || fills[0].Quantity != -45 {
		t.Errorf("leg1: want AAPL -45, got %s %v", fills[0].Security.Symbol, fills[0].Quantity)
	}
	if fills[1].Security.Symbol != "MSFT" || fills[1].Quantity != 45 {
		t.Errorf("leg2: want MSFT +45, got %s %v", fills[1].Security.Symbol, fills[1].Quantity)
	}

	if len(journal.signals) != 1 || journal.signals[0].name != "pairs:AAPL|MSFT" {
		t.Errorf("want one journaled signal for the pair, got %+v", journal.signals)
	}
	if len(journal.decisions) != 2 {
		t.Errorf("want 2 journaled decisions, got %d", len(journal.decisions))
	}
}

func TestPairsStrategyIdempotentWhileOpen(t *testing.T) {
	s, gw, _, _ := newPairsFixture(t, calibrated(t, "AAPL", "MSFT", 1, 0, 0.1))
	gw.SetQuote(model.Stock("AAPL"), model.Quote{Last: 110})
	gw.SetQuote(model.Stock("MSFT"), model.Quote{Last: 98})

	if err := s.Rebalance(context.Background(), false); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	// same quotes, position now open and z still stretched: hold
	if err := s.Rebalance(context.Background(), false); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if fills := gw.Fills(); len(fills) != 2 {
		t.Errorf("second cycle must not trade again, got %d fills", len(fills))
	}
}

func TestPairsStrategyExitsOnReversion(t *testing.T) {
	s, gw, _, _ := newPairsFixture(t, calibrated(t, "AAPL", "MSFT", 1, 0, 0.1))
	gw.SetPosition(model.Stock("AAPL"), -45)
	gw.SetPosition(model.Stock("MSFT"), 45)
	gw.SetQuote(model.Stock("AAPL"), model.Quote{Last: 100})
	gw.SetQuote(model.Stock("MSFT"), model.Quote{Last: 100})
	// z = 0, inside the exit band: flatten both legs

	if err := s.Rebalance(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fills := gw.Fills()
	if len(fills) != 2 || fills[0].Quantity != 45 || fills[1].Quantity != -45 {
		t.Fatalf("want offsetting fills +45/-45, got %+v", fills)
	}
	open, _ := gw.Positions(context.Background())
	if len(open) != 0 {
		t.Errorf("book must be flat after exit, got %+v", open)
	}
}

func TestPairsStrategyDryRunLeavesBookUntouched(t *testing.T) {
	s, gw, _, _ := newPairsFixture(t, calibrated(t, "AAPL", "MSFT", 1, 0, 0.1))
	gw.SetQuote(model.Stock("AAPL"), model.Quote{Last: 110})
	gw.SetQuote(model.Stock("MSFT"), model.Quote{Last: 98})

	if err := s.Rebalance(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.DryRuns()) != 2 {
		t.Errorf("want 2 simulated orders, got %d", len(gw.DryRuns()))
	}
	if len(gw.Fills()) != 0 {
		t.Errorf("dry run must not fill, got %+v", gw.Fills())
	}
	open, _ := gw.Positions(context.Background())
	if len(open) != 0 {
		t.Errorf("dry run must not open positions, got %+v", open)
	}
}

func TestPairsStrategySkipsPairWithMissingQuote(t *testing.T) {
	s, gw, _, _ := newPairsFixture(t,
		calibrated(t, "GE", "F", 1, 0, 0.1), // no quotes seeded
		calibrated(t, "AAPL", "MSFT", 1, 0, 0.1),
	)
	gw.SetQuote(model.Stock("AAPL"), model.Quote{Last: 110})
	gw.SetQuote(model.Stock("MSFT"), model.Quote{Last: 98})

	if err := s.Rebalance(context.Background(), false); err != nil {
		t.Fatalf("missing quote must not abort the cycle: %v", err)
	}
	fills := gw.Fills()
	if len(fills) != 2 {
		t.Fatalf("quoted pair must still trade, got %d fills", len(fills))
	}
	for _, f := range fills {
		if f.Security.Symbol == "GE" || f.Security.Symbol == "F" {
			t.Errorf("unquoted pair must not trade: %+v", f)
		}
	}
}

func TestPairsStrategyRejectsDuplicatePositions(t *testing.T) {
	s, gw, _, _ := newPairsFixture(t, calibrated(t, "AAPL", "MSFT", 1, 0, 0.1))
	gw.AddPosition(model.Stock("AAPL"), 10)
	gw.AddPosition(model.Stock("AAPL"), 20)

	err := s.Rebalance(context.Background(), false)
	if !errors.Is(err, model.ErrInvariantViolation) {
		t.Fatalf("want ErrInvariantViolation, got %v", err)
	}
	if len(gw.Fills()) != 0 {
		t.Errorf("no trade may execute on a corrupt book, got %+v", gw.Fills())
	}
}

func TestPairsStrategyRecalibratesWhenEmpty(t *testing.T) {
	gw := paper.New(100000)
	repo := &memRepo{}
	history := paper.NewHistory(map[string][]float64{
		"A": {100, 101, 102, 103},
		"B": {100, 102, 101, 104},
		"C": {50, 55, 52, 58},
	})
	s := NewPairsStrategy(gw, repo, history, &memJournal{}, &memSink{}, PairsConfig{
		Universe:        []string{"A", "B", "C"},
		NumPairs:        2,
		FormationWindow: 3,
	})

	// no quotes seeded: every pair skips, but the calibration must land
	if err := s.Rebalance(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.has || repo.saves != 1 {
		t.Fatalf("want exactly one saved calibration, got has=%v saves=%d", repo.has, repo.saves)
	}
	if repo.dataset.Len() != 2 {
		t.Errorf("want 2 calibrated pairs, got %d", repo.dataset.Len())
	}
	for _, rec := range repo.dataset.Records {
		if rec.SpreadStd <= 0 {
			t.Errorf("%s: expected positive spread std, got %v", rec.Pair, rec.SpreadStd)
		}
	}
}

func TestDecidePairsFloorsAllocation(t *testing.T) {
	rec := calibrated(t, "AAPL", "MSFT", 1.5, 0, 0.1)

	d := DecidePairs(rec, 2, 0, 0, 1000, 33, 1, 1)
	if d.Action != model.ActionShortSpread {
		t.Fatalf("want short spread, got %s", d.Action)
	}
	// floor(1000/33) = 30, never rounded up to 31
	if d.Legs[0].Quantity != -30 {
		t.Errorf("leg1: want -30, got %v", d.Legs[0].Quantity)
	}
	// trunc(30 * 1.5) = 45
	if d.Legs[1].Quantity != 45 {
		t.Errorf("leg2: want 45, got %v", d.Legs[1].Quantity)
	}

	d = DecidePairs(rec, -2, 0, 0, 1000, 33, 1, 1)
	if d.Action != model.ActionLongSpread {
		t.Fatalf("want long spread, got %s", d.Action)
	}
	if d.Legs[0].Quantity != 30 || d.Legs[1].Quantity != -45 {
		t.Errorf("long legs: want +30/-45, got %+v", d.Legs)
	}
}

func TestDecidePairsHoldsOpenStretchedPosition(t *testing.T) {
	rec := calibrated(t, "AAPL", "MSFT", 1, 0, 0.1)

	// open position with z still beyond entry: no pyramiding, no exit
	d := DecidePairs(rec, 2, -45, 45, 5000, 110, 1, 1)
	if d.Action != model.ActionHold || len(d.Legs) != 0 {
		t.Errorf("want hold with no legs, got %+v", d)
	}
}

func TestDecidePairsExitsOnlyNonZeroLegs(t *testing.T) {
	rec := calibrated(t, "AAPL", "MSFT", 1, 0, 0.1)

	d := DecidePairs(rec, 0.5, -45, 0, 5000, 110, 1, 1)
	if d.Action != model.ActionExit {
		t.Fatalf("want exit, got %s", d.Action)
	}
	if len(d.Legs) != 1 || d.Legs[0].Quantity != 45 {
		t.Errorf("want single offsetting leg +45, got %+v", d.Legs)
	}
}

func TestDecidePairsFlatInsideBands(t *testing.T) {
	rec := calibrated(t, "AAPL", "MSFT", 1, 0, 0.1)

	for _, z := range []float64{0, 0.5, -0.99, 1.0, -1.0} {
		d := DecidePairs(rec, z, 0, 0, 5000, 110, 1, 1)
		if d.Action != model.ActionHold {
			t.Errorf("z=%v flat book: want hold, got %s", z, d.Action)
		}
	}
	if math.Abs(DecidePairs(rec, 1.01, 0, 0, 5000, 110, 1, 1).Legs[0].Quantity) == 0 {
		t.Error("z just past entry must size a position")
	}
}
