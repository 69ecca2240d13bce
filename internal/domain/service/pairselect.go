package service

import (
	"fmt"
	"sort"

	"qhedge/internal/domain/model"
)

// ScoredPair is a candidate pair with its return-distance score.
type ScoredPair struct {
	Pair     model.Pair
	Distance float64
}

// SelectPairs ranks every 2-combination of the universe by the sum of
// squared differences between the two legs' cumulative return series and
// returns the topN closest pairs.
//
// The universe slice fixes the enumeration order, so results are
// deterministic and ties keep first-seen order (map iteration order is
// not used). The returns map is never mutated. Fewer than two tickers
// yields an empty selection, not an error.
func SelectPairs(universe []string, returns map[string][]float64, topN int) ([]model.Pair, error) {
	if topN <= 0 {
		return nil, nil
	}
	if len(universe) < 2 {
		return nil, nil
	}

	// All series must be present and aligned.
	want := -1
	for _, tic := range universe {
		series, ok := returns[tic]
		if !ok {
			return nil, fmt.Errorf("no return series for %s: %w", tic, model.ErrInsufficientData)
		}
		if want == -1 {
			want = len(series)
		} else if len(series) != want {
			return nil, fmt.Errorf("return series for %s has %d observations, want %d: %w",
				tic, len(series), want, model.ErrInsufficientData)
		}
	}
	if want == 0 {
		return nil, fmt.Errorf("empty return series: %w", model.ErrInsufficientData)
	}

	scored := make([]ScoredPair, 0, len(universe)*(len(universe)-1)/2)
	for i := 0; i < len(universe); i++ {
		for j := i + 1; j < len(universe); j++ {
			pair, err := model.NewPair(universe[i], universe[j])
			if err != nil {
				return nil, err
			}
			scored = append(scored, ScoredPair{
				Pair:     pair,
				Distance: ssd(returns[universe[i]], returns[universe[j]]),
			})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Distance < scored[b].Distance
	})

	if topN > len(scored) {
		topN = len(scored)
	}
	pairs := make([]model.Pair, topN)
	for i := range pairs {
		pairs[i] = scored[i].Pair
	}
	return pairs, nil
}

// ssd is the sum of squared element-wise differences. Symmetric in its
// arguments.
func ssd(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
