package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler runs the configured strategies in sequence on a fixed
// interval. Cycles are strictly serialized: the position state a policy
// reads must not be mutated by a concurrent cycle, so an interval tick
// that fires while a cycle is still running is skipped, not queued.
type Scheduler struct {
	strategies []Strategy
	interval   time.Duration
	dryrun     bool
	mu         sync.Mutex
}

func NewScheduler(strategies []Strategy, interval time.Duration, dryrun bool) *Scheduler {
	return &Scheduler{
		strategies: strategies,
		interval:   interval,
		dryrun:     dryrun,
	}
}

// Run executes one cycle immediately, then one per interval until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.RunCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle runs every strategy once, in order. A strategy error is logged
// and ends that strategy's cycle; the next strategy still runs. The next
// scheduled cycle retries from fresh state.
func (s *Scheduler) RunCycle(ctx context.Context) {
	if !s.mu.TryLock() {
		log.Warn().Msg("previous cycle still running, skipping tick")
		return
	}
	defer s.mu.Unlock()

	for _, st := range s.strategies {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := st.Rebalance(ctx, s.dryrun); err != nil {
			log.Error().Err(err).Str("strategy", st.Name()).Msg("rebalance failed")
			continue
		}
		log.Debug().
			Str("strategy", st.Name()).
			Dur("took", time.Since(start)).
			Msg("rebalance done")
	}
}
