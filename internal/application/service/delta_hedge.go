package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"qhedge/internal/application/port"
	"qhedge/internal/domain/model"
	domsvc "qhedge/internal/domain/service"
)

// DeltaHedgeConfig names the underlying to hedge and the execution band.
type DeltaHedgeConfig struct {
	Ticker string
	Band   domsvc.DeltaBand
}

// DeltaHedgeStrategy keeps a single-name option position delta neutral by
// trading the underlying stock. It assumes at most one open option and
// one open stock position for its ticker.
type DeltaHedgeStrategy struct {
	gw      port.ExecutionGateway
	journal port.DecisionJournal
	sink    port.Sink
	cfg     DeltaHedgeConfig
}

func NewDeltaHedgeStrategy(gw port.ExecutionGateway, journal port.DecisionJournal,
	sink port.Sink, cfg DeltaHedgeConfig) *DeltaHedgeStrategy {

	if cfg.Band == (domsvc.DeltaBand{}) {
		cfg.Band = domsvc.DefaultDeltaBand()
	}
	return &DeltaHedgeStrategy{gw: gw, journal: journal, sink: sink, cfg: cfg}
}

func (s *DeltaHedgeStrategy) Name() string { return "delta-hedge:" + s.cfg.Ticker }

func (s *DeltaHedgeStrategy) Rebalance(ctx context.Context, dryrun bool) error {
	positions, err := s.gw.Positions(ctx, s.cfg.Ticker)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}

	options, err := positionsByClass(positions, model.AssetOption)
	if err != nil {
		return err
	}
	stocks, err := positionsByClass(positions, model.AssetEquity)
	if err != nil {
		return err
	}

	option, ok := options[s.cfg.Ticker]
	if !ok {
		log.Info().Str("ticker", s.cfg.Ticker).Msg("no open option position to hedge")
		return nil
	}

	qualified, err := s.gw.QualifyContracts(ctx, option.Contract)
	if err != nil || len(qualified) != 1 {
		return fmt.Errorf("qualify option %s: %w", s.cfg.Ticker, model.ErrMissingQuote)
	}
	quote, err := s.gw.Quote(ctx, qualified[0])
	if err != nil || !quote.Valid() || !quote.HasGreeks || quote.Multiplier <= 0 {
		// Skip this cycle; the greeks feed may lag the session open.
		log.Warn().Str("ticker", s.cfg.Ticker).Msg("no model greeks for option, skipping hedge")
		return nil
	}

	stockPos := stocks[s.cfg.Ticker].Quantity
	plan := domsvc.PlanDeltaHedge(option.Quantity, quote.Delta, quote.Multiplier, stockPos, s.cfg.Band)

	decision := model.HedgeDecision{
		Symbol:          s.cfg.Ticker,
		Delta:           quote.Delta,
		TargetUnderlier: plan.TargetUnderlier,
		Action:          model.ActionHold,
	}
	if plan.Act {
		decision.Action = model.ActionHedge
		decision.Trade = model.Order{Security: model.Stock(s.cfg.Ticker), Quantity: plan.Trade}
	}

	now := time.Now()
	payload, _ := json.Marshal(decision)
	if s.journal != nil {
		_ = s.journal.RecordSignal(ctx, now.UnixMilli(), "delta:"+s.cfg.Ticker, quote.Delta, string(payload))
	}

	if !plan.Act {
		log.Info().
			Str("ticker", s.cfg.Ticker).
			Float64("delta", quote.Delta).
			Float64("trade", plan.Trade).
			Msg("already delta neutral, no trade required")
		return nil
	}

	log.Info().
		Str("ticker", s.cfg.Ticker).
		Float64("delta", quote.Delta).
		Float64("target", plan.TargetUnderlier).
		Float64("trade", plan.Trade).
		Bool("near_money", plan.NearMoney).
		Msg("hedging to delta neutral")
	if s.sink != nil {
		_ = s.sink.WriteDecision(now, fmt.Sprintf("delta-hedge %s trade=%+.0f target=%.0f",
			s.cfg.Ticker, plan.Trade, plan.TargetUnderlier))
	}

	stock, err := s.gw.QualifyContracts(ctx, model.Stock(s.cfg.Ticker))
	if err != nil || len(stock) != 1 {
		return fmt.Errorf("qualify stock %s: %w", s.cfg.Ticker, model.ErrMissingQuote)
	}
	if err := placeAndWait(ctx, s.gw, stock[0], plan.Trade, dryrun); err != nil {
		return err
	}
	if s.journal != nil {
		_ = s.journal.RecordDecision(ctx, now.UnixMilli(), s.Name(), s.cfg.Ticker, plan.Trade, string(payload))
	}
	return nil
}
