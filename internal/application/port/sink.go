package port

import "time"

// Sink is the operator-facing output for decision lines and alerts.
type Sink interface {
	// WriteDecision appends one timestamped decision line.
	WriteDecision(ts time.Time, line string) error

	// WriteAlert appends one timestamped operator alert (e.g. an
	// unhedged-position condition requiring manual intervention).
	WriteAlert(ts time.Time, line string) error
}
