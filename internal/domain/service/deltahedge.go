package service

import "math"

// DeltaBand configures the two-tier execution gate for delta hedging.
// Inside the near-the-money band any non-zero adjustment trades
// immediately; outside it a minimum share threshold suppresses small
// rebalances of large far-ITM/OTM positions whose dollar-delta barely
// moves with spot.
type DeltaBand struct {
	Low          float64 // lower |delta| bound of the near-the-money band
	High         float64 // upper |delta| bound of the near-the-money band
	FarMinShares float64 // minimum |trade| outside the band
}

// DefaultDeltaBand mirrors the 0.40..0.60 band with a 10-share floor.
func DefaultDeltaBand() DeltaBand {
	return DeltaBand{Low: 0.4, High: 0.6, FarMinShares: 10}
}

// HedgePlan is the computed underlier adjustment for one option position.
type HedgePlan struct {
	TargetUnderlier float64 // underlier shares for aggregate delta ~= 0
	Trade           float64 // signed shares to trade now
	NearMoney       bool
	Act             bool // whether the gate allows trading this cycle
}

// PlanDeltaHedge sizes the underlier trade that brings an option position
// of optionPos contracts (delta in -1..1, contract multiplier mult) plus
// stockPos underlier shares to delta neutrality. Near the money means
// band.Low <= |delta| <= band.High; the band is on absolute delta so puts
// gate symmetrically with calls.
func PlanDeltaHedge(optionPos, delta float64, mult int, stockPos float64, band DeltaBand) HedgePlan {
	target := -math.Round(optionPos * delta * float64(mult))
	trade := target - stockPos

	absDelta := math.Abs(delta)
	near := absDelta >= band.Low && absDelta <= band.High

	act := false
	if near {
		act = trade != 0
	} else {
		act = math.Abs(trade) > band.FarMinShares
	}

	return HedgePlan{
		TargetUnderlier: target,
		Trade:           trade,
		NearMoney:       near,
		Act:             act,
	}
}
