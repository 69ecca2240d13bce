package port

import (
	"context"

	"qhedge/internal/domain/model"
)

// OrderHandle identifies a submitted (or simulated) order for completion
// polling. Empty for no-op submissions.
type OrderHandle string

// ExecutionGateway is the broker boundary. Implementations own session
// management, contract qualification and order transport; the engine only
// sees synchronous calls with context cancellation. Strategies receive a
// gateway by injection so they stay testable against a paper
// implementation.
type ExecutionGateway interface {
	// AccountValue returns the current total portfolio value.
	AccountValue(ctx context.Context) (float64, error)

	// Positions lists open positions, optionally filtered to the given
	// symbols.
	Positions(ctx context.Context, symbols ...string) ([]model.Position, error)

	// QualifyContracts resolves securities to tradable contracts.
	QualifyContracts(ctx context.Context, secs ...model.Security) ([]model.Security, error)

	// Quote fetches a fresh market snapshot for one contract. Quotes are
	// never cached across decision cycles.
	Quote(ctx context.Context, sec model.Security) (model.Quote, error)

	// PlaceOrder submits a market order for a signed quantity. A zero
	// quantity is a no-op returning an empty handle. When dryrun is true
	// the order is simulated and must never reach a live venue.
	PlaceOrder(ctx context.Context, sec model.Security, quantity float64, dryrun bool) (OrderHandle, error)

	// OrderDone reports whether the order behind handle has completed.
	// Polled until true in live mode before the next dependent trade.
	OrderDone(ctx context.Context, handle OrderHandle) (bool, error)
}
