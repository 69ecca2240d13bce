package service

import (
	"fmt"

	"qhedge/internal/domain/model"
	"qhedge/internal/domain/stats"
)

// Calibrate fits the formation-period regression for one pair from raw
// price levels. The hedge ratio is the slope of an ordinary least squares
// fit of leg1's log price on leg2's log price (with intercept); the
// spread is leg1 minus hedge-ratio-scaled leg2, and its mean and
// population standard deviation complete the record.
func Calibrate(pair model.Pair, prices1, prices2 []float64) (model.CalibrationRecord, error) {
	if len(prices1) != len(prices2) {
		return model.CalibrationRecord{}, fmt.Errorf("%s: price series misaligned (%d vs %d): %w",
			pair, len(prices1), len(prices2), model.ErrInsufficientData)
	}
	if len(prices1) < 2 {
		return model.CalibrationRecord{}, fmt.Errorf("%s: regression needs at least 2 observations, got %d: %w",
			pair, len(prices1), model.ErrInsufficientData)
	}

	log1, ok := stats.LogSeries(prices1)
	if !ok {
		return model.CalibrationRecord{}, fmt.Errorf("%s: non-positive price in %s series: %w",
			pair, pair.Leg1, model.ErrInsufficientData)
	}
	log2, ok := stats.LogSeries(prices2)
	if !ok {
		return model.CalibrationRecord{}, fmt.Errorf("%s: non-positive price in %s series: %w",
			pair, pair.Leg2, model.ErrInsufficientData)
	}

	if constant(log2) {
		return model.CalibrationRecord{}, fmt.Errorf("%s: %s log prices have no variance: %w",
			pair, pair.Leg2, model.ErrInsufficientData)
	}

	hedgeRatio, _ := stats.LinearRegression(log2, log1)

	spread := make([]float64, len(log1))
	for i := range log1 {
		spread[i] = log1[i] - hedgeRatio*log2[i]
	}
	mean, std := stats.MeanStd(spread)

	return model.CalibrationRecord{
		Pair:       pair,
		HedgeRatio: hedgeRatio,
		SpreadMean: mean,
		SpreadStd:  std,
	}, nil
}

func constant(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] != xs[0] {
			return false
		}
	}
	return true
}
