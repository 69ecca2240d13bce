// Package paper is an in-memory ExecutionGateway: positions, quotes and
// account value are seeded by the caller, live orders fill instantly
// against the book, and dry-run orders are recorded without touching
// state. It backs tests and dry-run operation; a broker adapter
// implements the same port for live trading.
package paper

import (
	"context"
	"fmt"
	"sync"

	"qhedge/internal/application/port"
	"qhedge/internal/domain/model"
)

type Gateway struct {
	mu       sync.Mutex
	value    float64
	quotes   map[string]model.Quote
	position map[string]model.Position
	done     map[port.OrderHandle]bool
	dryRuns  []model.Order
	fills    []model.Order
	seq      int
}

func New(accountValue float64) *Gateway {
	return &Gateway{
		value:    accountValue,
		quotes:   make(map[string]model.Quote),
		position: make(map[string]model.Position),
		done:     make(map[port.OrderHandle]bool),
	}
}

func key(sec model.Security) string {
	return sec.Symbol + "/" + string(sec.Class) + "/" + sec.Expiry
}

// SetQuote seeds the quote returned for a security.
func (g *Gateway) SetQuote(sec model.Security, q model.Quote) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.quotes[key(sec)] = q
}

// SetPosition seeds (or overwrites) an open position.
func (g *Gateway) SetPosition(sec model.Security, quantity float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if quantity == 0 {
		delete(g.position, key(sec))
		return
	}
	g.position[key(sec)] = model.Position{Contract: sec, Quantity: quantity}
}

// AddPosition seeds an extra position row without replacing an existing
// one with the same contract key, so invariant violations can be staged.
func (g *Gateway) AddPosition(sec model.Security, quantity float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := key(sec)
	for i := 0; ; i++ {
		kk := fmt.Sprintf("%s#%d", k, i)
		if _, ok := g.position[kk]; !ok {
			g.position[kk] = model.Position{Contract: sec, Quantity: quantity}
			return
		}
	}
}

// DryRuns returns the orders submitted with dryrun=true.
func (g *Gateway) DryRuns() []model.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.Order, len(g.dryRuns))
	copy(out, g.dryRuns)
	return out
}

// Fills returns the orders filled in live mode.
func (g *Gateway) Fills() []model.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.Order, len(g.fills))
	copy(out, g.fills)
	return out
}

func (g *Gateway) AccountValue(ctx context.Context) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value, nil
}

func (g *Gateway) Positions(ctx context.Context, symbols ...string) ([]model.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	filter := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		filter[s] = struct{}{}
	}
	var out []model.Position
	for _, p := range g.position {
		if p.Quantity == 0 {
			continue
		}
		if len(filter) > 0 {
			if _, ok := filter[p.Contract.Symbol]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (g *Gateway) QualifyContracts(ctx context.Context, secs ...model.Security) ([]model.Security, error) {
	// Paper contracts are always considered qualified.
	return secs, nil
}

func (g *Gateway) Quote(ctx context.Context, sec model.Security) (model.Quote, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	q, ok := g.quotes[key(sec)]
	if !ok {
		return model.Quote{}, fmt.Errorf("no quote seeded for %s: %w", sec.Symbol, model.ErrMissingQuote)
	}
	return q, nil
}

func (g *Gateway) PlaceOrder(ctx context.Context, sec model.Security, quantity float64, dryrun bool) (port.OrderHandle, error) {
	if quantity == 0 {
		return "", nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	handle := port.OrderHandle(fmt.Sprintf("paper-%d", g.seq))

	if dryrun {
		g.dryRuns = append(g.dryRuns, model.Order{Security: sec, Quantity: quantity})
		g.done[handle] = true
		return handle, nil
	}

	k := key(sec)
	pos := g.position[k]
	pos.Contract = sec
	pos.Quantity += quantity
	if pos.Quantity == 0 {
		delete(g.position, k)
	} else {
		g.position[k] = pos
	}
	g.fills = append(g.fills, model.Order{Security: sec, Quantity: quantity})
	g.done[handle] = true
	return handle, nil
}

func (g *Gateway) OrderDone(ctx context.Context, handle port.OrderHandle) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	done, ok := g.done[handle]
	if !ok {
		return false, fmt.Errorf("unknown order handle %s", handle)
	}
	return done, nil
}

var _ port.ExecutionGateway = (*Gateway)(nil)
