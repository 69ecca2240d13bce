package service

import (
	"errors"
	"testing"

	"qhedge/internal/domain/model"
)

func TestDistanceIsSymmetric(t *testing.T) {
	a := []float64{0.1, -0.2, 0.05}
	b := []float64{0.3, 0.1, -0.15}
	if ssd(a, b) != ssd(b, a) {
		t.Errorf("ssd(a,b)=%v != ssd(b,a)=%v", ssd(a, b), ssd(b, a))
	}
}

func TestSelectPairsRanksByDistance(t *testing.T) {
	universe := []string{"A", "B", "C"}
	returns := map[string][]float64{
		"A": {0.1, 0.2, 0.3},
		"B": {0.1, 0.2, 0.31}, // closest to A
		"C": {0.5, 0.5, 0.5},
	}

	pairs, err := SelectPairs(universe, returns, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("want 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Key() != "A|B" {
		t.Errorf("closest pair first: want A|B, got %s", pairs[0].Key())
	}
}

func TestSelectPairsStableTies(t *testing.T) {
	// all three series identical: every distance is 0, enumeration order
	// decides
	universe := []string{"A", "B", "C"}
	series := []float64{0.1, 0.2}
	returns := map[string][]float64{"A": series, "B": series, "C": series}

	pairs, err := SelectPairs(universe, returns, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"A|B", "A|C", "B|C"}
	for i, w := range want {
		if pairs[i].Key() != w {
			t.Errorf("pair %d: want %s, got %s", i, w, pairs[i].Key())
		}
	}
}

func TestSelectPairsNoDuplicates(t *testing.T) {
	universe := []string{"A", "B", "C", "D"}
	returns := map[string][]float64{
		"A": {0.1, 0.2}, "B": {0.2, 0.1}, "C": {0.3, 0.4}, "D": {0.4, 0.3},
	}

	pairs, err := SelectPairs(universe, returns, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// at most C(4,2) combinations, each seen once
	if len(pairs) != 6 {
		t.Fatalf("want 6 pairs, got %d", len(pairs))
	}
	seen := make(map[string]bool)
	for _, p := range pairs {
		if seen[p.Key()] {
			t.Errorf("duplicate pair %s", p.Key())
		}
		seen[p.Key()] = true
	}
}

func TestSelectPairsSmallUniverse(t *testing.T) {
	pairs, err := SelectPairs([]string{"A"}, map[string][]float64{"A": {0.1}}, 10)
	if err != nil || pairs != nil {
		t.Errorf("single ticker: want empty selection without error, got %v / %v", pairs, err)
	}
	pairs, err = SelectPairs(nil, nil, 10)
	if err != nil || pairs != nil {
		t.Errorf("empty universe: want empty selection without error, got %v / %v", pairs, err)
	}
}

func TestSelectPairsRejectsBadSeries(t *testing.T) {
	universe := []string{"A", "B"}

	_, err := SelectPairs(universe, map[string][]float64{"A": {0.1, 0.2}}, 10)
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("missing series: want ErrInsufficientData, got %v", err)
	}

	_, err = SelectPairs(universe, map[string][]float64{"A": {0.1, 0.2}, "B": {0.1}}, 10)
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("misaligned series: want ErrInsufficientData, got %v", err)
	}
}

func TestSelectPairsDoesNotMutateInput(t *testing.T) {
	universe := []string{"A", "B"}
	returns := map[string][]float64{"A": {0.1, 0.2}, "B": {0.3, 0.4}}

	if _, err := SelectPairs(universe, returns, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if returns["A"][0] != 0.1 || returns["B"][1] != 0.4 || len(returns) != 2 {
		t.Error("input returns map was mutated")
	}
}
