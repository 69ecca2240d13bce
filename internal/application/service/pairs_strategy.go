package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"qhedge/internal/application/port"
	"qhedge/internal/domain/model"
	domsvc "qhedge/internal/domain/service"
	"qhedge/internal/domain/stats"
)

// PairsConfig tunes selection, calibration and the position policy.
type PairsConfig struct {
	Universe        []string
	NumPairs        int     // pairs to select, default 50
	FormationWindow int     // trailing observations, default 252
	EntryZ          float64 // |z| beyond which a flat pair is entered
	ExitZ           float64 // |z| below which an open pair is flattened
	MaxPositionFrac float64 // single-position cap as fraction of portfolio
}

func (c *PairsConfig) applyDefaults() {
	if c.NumPairs <= 0 {
		c.NumPairs = 50
	}
	if c.FormationWindow <= 0 {
		c.FormationWindow = 252
	}
	if c.EntryZ <= 0 {
		c.EntryZ = 1.0
	}
	if c.ExitZ <= 0 {
		c.ExitZ = 1.0
	}
	if c.MaxPositionFrac <= 0 {
		c.MaxPositionFrac = 0.05
	}
}

// PairsStrategy trades mean reversion of calibrated log-price spreads.
type PairsStrategy struct {
	gw      port.ExecutionGateway
	repo    port.CalibrationRepository
	history port.HistorySource
	journal port.DecisionJournal
	sink    port.Sink
	cfg     PairsConfig
}

func NewPairsStrategy(gw port.ExecutionGateway, repo port.CalibrationRepository,
	history port.HistorySource, journal port.DecisionJournal, sink port.Sink,
	cfg PairsConfig) *PairsStrategy {

	cfg.applyDefaults()
	return &PairsStrategy{gw: gw, repo: repo, history: history, journal: journal, sink: sink, cfg: cfg}
}

func (s *PairsStrategy) Name() string { return "pairs" }

// Rebalance evaluates every calibrated pair against live quotes and
// executes the resulting enter/exit decisions. Pairs with missing quotes
// are skipped; the rest of the cycle proceeds.
func (s *PairsStrategy) Rebalance(ctx context.Context, dryrun bool) error {
	dataset, err := s.ensureCalibration(ctx)
	if err != nil {
		return err
	}
	if dataset.Len() == 0 {
		log.Warn().Msg("no calibrated pairs, nothing to trade")
		return nil
	}

	positions, err := s.gw.Positions(ctx, dataset.Symbols()...)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}
	stocks, err := positionsByClass(positions, model.AssetEquity)
	if err != nil {
		return err
	}

	portfolioVal, err := s.gw.AccountValue(ctx)
	if err != nil {
		return fmt.Errorf("account value: %w", err)
	}
	// Per-pair capital allotment, recomputed every cycle.
	allotment := math.Min(
		portfolioVal/float64(2*dataset.Len()),
		s.cfg.MaxPositionFrac*portfolioVal,
	)

	processed := 0
	for _, rec := range dataset.Records {
		if ctx.Err() != nil {
			log.Warn().
				Int("processed", processed).
				Int("total", dataset.Len()).
				Msg("cycle cancelled mid-run")
			return ctx.Err()
		}

		err := s.evaluatePair(ctx, rec, stocks, allotment, dryrun)
		if errors.Is(err, model.ErrMissingQuote) {
			log.Warn().Err(err).Str("pair", rec.Pair.String()).Msg("skipping pair this cycle")
			continue
		}
		if err != nil {
			return err
		}
		processed++
	}

	log.Info().Int("processed", processed).Int("total", dataset.Len()).Msg("pairs cycle complete")
	return nil
}

func (s *PairsStrategy) evaluatePair(ctx context.Context, rec model.CalibrationRecord,
	stocks map[string]model.Position, allotment float64, dryrun bool) error {

	sec1 := model.Stock(rec.Pair.Leg1)
	sec2 := model.Stock(rec.Pair.Leg2)
	qualified, err := s.gw.QualifyContracts(ctx, sec1, sec2)
	if err != nil || len(qualified) != 2 {
		return fmt.Errorf("qualify %s: %w", rec.Pair, model.ErrMissingQuote)
	}
	sec1, sec2 = qualified[0], qualified[1]

	q1, err := s.gw.Quote(ctx, sec1)
	if err != nil || !q1.Valid() {
		return fmt.Errorf("quote %s: %w", sec1.Symbol, model.ErrMissingQuote)
	}
	q2, err := s.gw.Quote(ctx, sec2)
	if err != nil || !q2.Valid() {
		return fmt.Errorf("quote %s: %w", sec2.Symbol, model.ErrMissingQuote)
	}

	sig, err := domsvc.SpreadSignal(rec, q1.Last, q2.Last)
	if err != nil {
		return err
	}

	decision := DecidePairs(rec, sig.ZScore,
		stocks[rec.Pair.Leg1].Quantity, stocks[rec.Pair.Leg2].Quantity,
		allotment, q1.Last, s.cfg.EntryZ, s.cfg.ExitZ)

	now := time.Now()
	payload, _ := json.Marshal(decision)
	if s.journal != nil {
		_ = s.journal.RecordSignal(ctx, now.UnixMilli(), "pairs:"+rec.Pair.Key(), sig.ZScore, string(payload))
	}

	if decision.Action == model.ActionHold {
		log.Debug().Str("pair", rec.Pair.String()).Float64("z", sig.ZScore).Msg("hold")
		return nil
	}

	log.Info().
		Str("pair", rec.Pair.String()).
		Float64("z", sig.ZScore).
		Str("action", string(decision.Action)).
		Msg("pairs decision")
	if s.sink != nil {
		_ = s.sink.WriteDecision(now, fmt.Sprintf("pairs %s z=%.2f %s", rec.Pair, sig.ZScore, decision.Action))
	}

	for _, leg := range decision.Legs {
		if leg.Quantity == 0 {
			continue
		}
		if err := placeAndWait(ctx, s.gw, leg.Security, leg.Quantity, dryrun); err != nil {
			return err
		}
		if s.journal != nil {
			_ = s.journal.RecordDecision(ctx, now.UnixMilli(), s.Name(), leg.Security.Symbol, leg.Quantity, string(payload))
		}
	}
	return nil
}

// DecidePairs maps a z-score and the pair's current open positions to a
// concrete decision. Rules in priority order: a small z-score flattens
// any open legs; a large one enters a short (z high) or long (z low)
// spread when flat; otherwise hold. Share counts are floored toward zero
// magnitude, never up past the allotment.
func DecidePairs(rec model.CalibrationRecord, z, pos1, pos2, allotment, price1, entryZ, exitZ float64) model.PairsDecision {
	d := model.PairsDecision{Pair: rec.Pair, ZScore: z, Action: model.ActionHold}
	open := pos1 != 0 || pos2 != 0

	switch {
	case math.Abs(z) < exitZ && open:
		d.Action = model.ActionExit
		if pos1 != 0 {
			d.Legs = append(d.Legs, model.Order{Security: model.Stock(rec.Pair.Leg1), Quantity: -pos1})
		}
		if pos2 != 0 {
			d.Legs = append(d.Legs, model.Order{Security: model.Stock(rec.Pair.Leg2), Quantity: -pos2})
		}

	case z > entryZ && !open:
		alloc := math.Floor(allotment / price1)
		d.Action = model.ActionShortSpread
		d.Legs = []model.Order{
			{Security: model.Stock(rec.Pair.Leg1), Quantity: -alloc},
			{Security: model.Stock(rec.Pair.Leg2), Quantity: math.Trunc(alloc * rec.HedgeRatio)},
		}

	case z < -entryZ && !open:
		alloc := math.Floor(allotment / price1)
		d.Action = model.ActionLongSpread
		d.Legs = []model.Order{
			{Security: model.Stock(rec.Pair.Leg1), Quantity: alloc},
			{Security: model.Stock(rec.Pair.Leg2), Quantity: -math.Trunc(alloc * rec.HedgeRatio)},
		}
	}
	return d
}

// ensureCalibration loads the persisted formation dataset, running a full
// calibration when none exists yet.
func (s *PairsStrategy) ensureCalibration(ctx context.Context) (model.FormationDataset, error) {
	dataset, err := s.repo.Load(ctx)
	if err == nil {
		return dataset, nil
	}
	if !errors.Is(err, model.ErrNoCalibration) {
		return model.FormationDataset{}, fmt.Errorf("load calibration: %w", err)
	}

	log.Info().Msg("no calibration data found, running formation calibration")
	return s.Recalibrate(ctx)
}

// Recalibrate rebuilds the formation dataset from historical closes:
// select the closest pairs by return distance, then fit each pair's hedge
// ratio and spread statistics. Pairs with insufficient data are dropped.
func (s *PairsStrategy) Recalibrate(ctx context.Context) (model.FormationDataset, error) {
	window := s.cfg.FormationWindow
	closes, err := s.history.DailyCloses(ctx, s.cfg.Universe, window+1)
	if err != nil {
		return model.FormationDataset{}, fmt.Errorf("formation history: %w", err)
	}

	// Keep only tickers with a full formation window; the selector
	// requires aligned series.
	universe := make([]string, 0, len(s.cfg.Universe))
	returns := make(map[string][]float64, len(s.cfg.Universe))
	for _, tic := range s.cfg.Universe {
		series := stats.CumulativeReturns(closes[tic])
		if len(series) < window {
			log.Warn().Str("ticker", tic).Int("observations", len(series)).Msg("dropping ticker from formation")
			continue
		}
		universe = append(universe, tic)
		returns[tic] = stats.Tail(series, window)
	}

	pairs, err := domsvc.SelectPairs(universe, returns, s.cfg.NumPairs)
	if err != nil {
		return model.FormationDataset{}, err
	}

	var dataset model.FormationDataset
	for _, pair := range pairs {
		rec, err := domsvc.Calibrate(pair,
			stats.Tail(closes[pair.Leg1], window),
			stats.Tail(closes[pair.Leg2], window))
		if errors.Is(err, model.ErrInsufficientData) {
			log.Warn().Err(err).Str("pair", pair.String()).Msg("dropping pair from formation")
			continue
		}
		if err != nil {
			return model.FormationDataset{}, err
		}
		dataset.Records = append(dataset.Records, rec)
	}

	if err := s.repo.Save(ctx, dataset); err != nil {
		return model.FormationDataset{}, fmt.Errorf("save calibration: %w", err)
	}
	log.Info().Int("pairs", dataset.Len()).Msg("formation calibration saved")
	return dataset, nil
}
