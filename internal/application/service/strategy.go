package service

import "context"

// Strategy is one independently rebalanceable trading variant. The three
// implementations (pairs, delta hedge, basis) are composed by the
// Scheduler rather than related by inheritance; each receives its
// collaborators by injection.
type Strategy interface {
	Name() string

	// Rebalance runs one decision cycle: read state, compute signals,
	// hand resulting orders to the gateway. When dryrun is true no live
	// order may be placed.
	Rebalance(ctx context.Context, dryrun bool) error
}
