package service

import (
	"fmt"
	"math"

	"qhedge/internal/domain/model"
)

// Signal is the live spread reading for a calibrated pair.
type Signal struct {
	Spread float64
	ZScore float64
}

// SpreadSignal computes the current spread and its z-score against the
// calibration record. Both last prices must be positive; a degenerate
// record (zero spread std) is rejected rather than producing Inf or NaN.
func SpreadSignal(rec model.CalibrationRecord, last1, last2 float64) (Signal, error) {
	if last1 <= 0 {
		return Signal{}, fmt.Errorf("%s: no last price for %s: %w", rec.Pair, rec.Pair.Leg1, model.ErrMissingQuote)
	}
	if last2 <= 0 {
		return Signal{}, fmt.Errorf("%s: no last price for %s: %w", rec.Pair, rec.Pair.Leg2, model.ErrMissingQuote)
	}
	if rec.SpreadStd == 0 {
		return Signal{}, fmt.Errorf("%s: spread std is zero, z-score undefined: %w", rec.Pair, model.ErrUndefinedSignal)
	}

	spread := math.Log(last1) - rec.HedgeRatio*math.Log(last2)
	return Signal{
		Spread: spread,
		ZScore: (spread - rec.SpreadMean) / rec.SpreadStd,
	}, nil
}
