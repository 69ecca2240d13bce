package port

import "context"

// DecisionJournal is the cycle audit trail: computed signals and the
// decisions they produced. Implementations may persist (sqlite,
// postgres) or publish (redis); a composite fans out to several.
type DecisionJournal interface {
	// RecordSignal stores one computed signal value (z-score, contango
	// ratio, planned hedge) with a free-form JSON payload.
	RecordSignal(ctx context.Context, ts int64, name string, value float64, payload string) error

	// RecordDecision stores one trade intent handed to the gateway.
	RecordDecision(ctx context.Context, ts int64, strategy, symbol string, quantity float64, payload string) error

	Close() error
}
