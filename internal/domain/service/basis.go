package service

import (
	"fmt"
	"math"

	"qhedge/internal/domain/model"
)

// VIX and E-mini contract multipliers, fixed by contract specification.
const (
	vixMultiplier = 1000
	esMultiplier  = 50
)

// BasisThresholds configures the entry/exit rules of the VIX basis trade.
type BasisThresholds struct {
	EntryRoll      float64 // daily roll magnitude required to enter
	ExitRoll       float64 // daily roll magnitude that ends the carry
	TakeProfitDays int     // business days to expiry forcing take-profit
}

// DefaultBasisThresholds returns the 0.10 / 0.05 / 9-day rule set.
func DefaultBasisThresholds() BasisThresholds {
	return BasisThresholds{EntryRoll: 0.10, ExitRoll: 0.05, TakeProfitDays: 9}
}

// BasisSignal is the contango/backwardation ratio: future over spot minus
// one. Positive means contango, negative backwardation.
func BasisSignal(vixFuture, vixSpot float64) (float64, error) {
	if vixFuture <= 0 || vixSpot <= 0 {
		return 0, fmt.Errorf("vix future %.2f / spot %.2f: %w", vixFuture, vixSpot, model.ErrMissingQuote)
	}
	return vixFuture/vixSpot - 1, nil
}

// DailyRoll is the per-business-day convergence of the future toward spot.
func DailyRoll(vixFuture, vixSpot float64, busDays int) (float64, error) {
	if vixFuture <= 0 || vixSpot <= 0 {
		return 0, fmt.Errorf("vix future %.2f / spot %.2f: %w", vixFuture, vixSpot, model.ErrMissingQuote)
	}
	if busDays <= 0 {
		return 0, fmt.Errorf("%d business days to expiry: %w", busDays, model.ErrUndefinedSignal)
	}
	return (vixFuture - vixSpot) / float64(busDays), nil
}

// ESHedgeQuantity sizes the E-mini leg opposing an open VIX futures
// position: -sign(vixPos) * round(beta * vixFuture * 1000 / (esFuture * 50)).
func ESHedgeQuantity(vixPos, beta, vixFuture, esFuture float64) float64 {
	if vixPos == 0 || esFuture <= 0 {
		return 0
	}
	qty := math.Round(beta * vixFuture * vixMultiplier / (esFuture * esMultiplier))
	if vixPos > 0 {
		return -qty
	}
	return qty
}

// BasisEntry maps the contango signal and daily roll to an entry action.
// Backwardation with a deeply negative roll buys VIX futures; contango
// with a high positive roll shorts them; anything else holds.
func BasisEntry(signal, dailyRoll float64, th BasisThresholds) model.Action {
	switch {
	case signal < 0 && dailyRoll < -th.EntryRoll:
		return model.ActionLongBasis
	case signal > 0 && dailyRoll > th.EntryRoll:
		return model.ActionShortBasis
	default:
		return model.ActionHold
	}
}

// BasisTakeProfit reports whether an open VIX position should be
// flattened: always once expiry is TakeProfitDays business days out or
// closer, otherwise when the roll has decayed through the exit band for
// the position's direction.
func BasisTakeProfit(vixPos float64, busDays int, dailyRoll float64, th BasisThresholds) bool {
	if vixPos == 0 {
		return false
	}
	if busDays <= th.TakeProfitDays {
		return true
	}
	if vixPos < 0 {
		return dailyRoll < th.ExitRoll
	}
	return dailyRoll > -th.ExitRoll
}
