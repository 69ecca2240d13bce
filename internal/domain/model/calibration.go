package model

import (
	"fmt"
	"strings"
)

// Pair is a 2-tuple of distinct tickers. Leg order fixes which side of the
// spread each ticker sits on; distance scoring itself is symmetric.
type Pair struct {
	Leg1 string `json:"leg1"`
	Leg2 string `json:"leg2"`
}

// NewPair validates that the two legs are distinct and non-empty.
func NewPair(leg1, leg2 string) (Pair, error) {
	leg1 = strings.ToUpper(strings.TrimSpace(leg1))
	leg2 = strings.ToUpper(strings.TrimSpace(leg2))
	if leg1 == "" || leg2 == "" {
		return Pair{}, fmt.Errorf("pair legs must be non-empty: %w", ErrInvariantViolation)
	}
	if leg1 == leg2 {
		return Pair{}, fmt.Errorf("pair legs must be distinct, got %s twice: %w", leg1, ErrInvariantViolation)
	}
	return Pair{Leg1: leg1, Leg2: leg2}, nil
}

// Key is the canonical textual encoding used by persistence backends.
func (p Pair) Key() string {
	return p.Leg1 + "|" + p.Leg2
}

// ParsePairKey reverses Key.
func ParsePairKey(key string) (Pair, error) {
	parts := strings.Split(key, "|")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("malformed pair key %q", key)
	}
	return NewPair(parts[0], parts[1])
}

func (p Pair) String() string {
	return "(" + p.Leg1 + "," + p.Leg2 + ")"
}

// Contains reports whether symbol is one of the pair's legs.
func (p Pair) Contains(symbol string) bool {
	return symbol == p.Leg1 || symbol == p.Leg2
}

// CalibrationRecord is the formation-period output for one pair: the OLS
// hedge ratio plus the mean and standard deviation of the log-price spread.
// SpreadStd may legitimately be zero for degenerate inputs; signal
// generation must reject such records rather than divide by it.
type CalibrationRecord struct {
	Pair       Pair    `json:"pair"`
	HedgeRatio float64 `json:"hedge_ratio"`
	SpreadMean float64 `json:"spread_mean"`
	SpreadStd  float64 `json:"spread_std"`
}

// FormationDataset is the full set of calibration records produced by one
// calibration run. It is read-only between recalibrations.
type FormationDataset struct {
	Records []CalibrationRecord `json:"records"`
}

// Len returns the number of calibrated pairs.
func (d FormationDataset) Len() int { return len(d.Records) }

// Symbols returns the distinct tickers across all pairs, in first-seen order.
func (d FormationDataset) Symbols() []string {
	seen := make(map[string]struct{}, 2*len(d.Records))
	out := make([]string, 0, 2*len(d.Records))
	for _, r := range d.Records {
		for _, s := range []string{r.Pair.Leg1, r.Pair.Leg2} {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
