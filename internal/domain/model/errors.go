package model

import "errors"

// Error taxonomy for the decision engine. Missing-quote and
// insufficient-data conditions are recoverable per unit of work (the
// affected pair or hedge is skipped for the cycle); the rest abort the
// current cycle.
var (
	// ErrInsufficientData: too few observations for a regression or
	// selection window. Fatal to that calibration, not to the process.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMissingQuote: a required live price is absent or non-positive.
	ErrMissingQuote = errors.New("missing quote")

	// ErrUndefinedSignal: a degenerate calibration (zero spread std)
	// makes the z-score undefined. Surfaced, never coerced to zero.
	ErrUndefinedSignal = errors.New("undefined signal")

	// ErrInvariantViolation: more than one open position per ticker and
	// asset class. Downstream sizing assumes uniqueness.
	ErrInvariantViolation = errors.New("position invariant violation")

	// ErrUnhedgedPosition: only one leg of a two-leg hedge is open.
	// Reported to the operator; never auto-corrected.
	ErrUnhedgedPosition = errors.New("unhedged position")

	// ErrNoCalibration: no persisted formation dataset. Triggers a full
	// recalibration run rather than failing startup.
	ErrNoCalibration = errors.New("no calibration data")
)
