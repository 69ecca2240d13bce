package paper

import (
	"context"

	"qhedge/internal/application/port"
	"qhedge/internal/domain/stats"
)

// History is a static HistorySource seeded with daily close series,
// oldest first. Symbols without data are simply absent from the result,
// mirroring a vendor that has no coverage for them.
type History struct {
	closes map[string][]float64
}

func NewHistory(closes map[string][]float64) *History {
	if closes == nil {
		closes = make(map[string][]float64)
	}
	return &History{closes: closes}
}

func (h *History) DailyCloses(ctx context.Context, symbols []string, lookback int) (map[string][]float64, error) {
	out := make(map[string][]float64, len(symbols))
	for _, s := range symbols {
		series, ok := h.closes[s]
		if !ok {
			continue
		}
		tail := stats.Tail(series, lookback)
		cp := make([]float64, len(tail))
		copy(cp, tail)
		out[s] = cp
	}
	return out, nil
}

var _ port.HistorySource = (*History)(nil)
