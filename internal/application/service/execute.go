package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"qhedge/internal/application/port"
	"qhedge/internal/domain/model"
)

// orderPollInterval is how often a live order is polled for completion.
const orderPollInterval = 250 * time.Millisecond

// placeAndWait submits one market order and, in live mode, blocks until
// the gateway reports it done. Zero quantities are no-ops at the gateway
// already; they are not re-checked here.
func placeAndWait(ctx context.Context, gw port.ExecutionGateway, sec model.Security, qty float64, dryrun bool) error {
	handle, err := gw.PlaceOrder(ctx, sec, qty, dryrun)
	if err != nil {
		return fmt.Errorf("place order %s %+.0f: %w", sec.Symbol, qty, err)
	}
	if handle == "" {
		return nil
	}
	if dryrun {
		log.Info().Str("symbol", sec.Symbol).Float64("quantity", qty).Msg("[dryrun] order simulated")
		return nil
	}

	for {
		done, err := gw.OrderDone(ctx, handle)
		if err != nil {
			return fmt.Errorf("poll order %s: %w", handle, err)
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(orderPollInterval):
		}
	}
}

// positionsByClass indexes open positions of one asset class by symbol,
// enforcing the at-most-one-position-per-ticker precondition the sizing
// logic depends on.
func positionsByClass(positions []model.Position, class model.AssetClass) (map[string]model.Position, error) {
	out := make(map[string]model.Position)
	for _, p := range positions {
		if p.Contract.Class != class {
			continue
		}
		if _, dup := out[p.Contract.Symbol]; dup {
			return nil, fmt.Errorf("multiple open %s positions for %s: %w",
				class, p.Contract.Symbol, model.ErrInvariantViolation)
		}
		out[p.Contract.Symbol] = p
	}
	return out, nil
}
