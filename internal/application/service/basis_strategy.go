package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scmhub/calendar"

	"qhedge/internal/application/port"
	"qhedge/internal/domain/model"
	domsvc "qhedge/internal/domain/service"
	"qhedge/internal/domain/stats"
)

// BasisConfig identifies the contracts and thresholds of the VIX basis
// trade. VIXHistSymbol/ESHistSymbol are the continuous front-month series
// used for beta estimation.
type BasisConfig struct {
	VIXSymbol     string // "VIX"
	VIXExpiry     string // contract month, YYYYMMDD
	VIXExchange   string // "CFE"
	ESSymbol      string // "ES"
	ESExpiry      string
	ESExchange    string // "GLOBEX"
	Quantity      float64
	Thresholds    domsvc.BasisThresholds
	BetaLookback  int // trailing days for the beta regression
	VIXHistSymbol string
	ESHistSymbol  string
}

func (c *BasisConfig) applyDefaults() {
	if c.VIXSymbol == "" {
		c.VIXSymbol = "VIX"
	}
	if c.VIXExchange == "" {
		c.VIXExchange = "CFE"
	}
	if c.ESSymbol == "" {
		c.ESSymbol = "ES"
	}
	if c.ESExchange == "" {
		c.ESExchange = "GLOBEX"
	}
	if c.Quantity == 0 {
		c.Quantity = 1
	}
	if c.Thresholds == (domsvc.BasisThresholds{}) {
		c.Thresholds = domsvc.DefaultBasisThresholds()
	}
	if c.BetaLookback <= 0 {
		c.BetaLookback = 252
	}
	if c.VIXHistSymbol == "" {
		c.VIXHistSymbol = "VX00"
	}
	if c.ESHistSymbol == "" {
		c.ESHistSymbol = "ES00"
	}
}

// BasisStrategy trades the VIX futures basis against spot, hedged with
// E-mini S&P futures sized by a regression beta.
type BasisStrategy struct {
	gw      port.ExecutionGateway
	history port.HistorySource
	journal port.DecisionJournal
	sink    port.Sink
	cal     *calendar.Calendar
	cfg     BasisConfig
	now     func() time.Time
}

func NewBasisStrategy(gw port.ExecutionGateway, history port.HistorySource,
	journal port.DecisionJournal, sink port.Sink, cal *calendar.Calendar,
	cfg BasisConfig) *BasisStrategy {

	cfg.applyDefaults()
	return &BasisStrategy{
		gw: gw, history: history, journal: journal, sink: sink,
		cal: cal, cfg: cfg, now: time.Now,
	}
}

func (s *BasisStrategy) Name() string { return "vix-basis" }

func (s *BasisStrategy) Rebalance(ctx context.Context, dryrun bool) error {
	vixFut := model.Future(s.cfg.VIXSymbol, s.cfg.VIXExpiry, s.cfg.VIXExchange)
	vixSpot := model.Index(s.cfg.VIXSymbol, s.cfg.VIXExchange)
	esFut := model.Future(s.cfg.ESSymbol, s.cfg.ESExpiry, s.cfg.ESExchange)

	qualified, err := s.gw.QualifyContracts(ctx, vixFut, vixSpot, esFut)
	if err != nil || len(qualified) != 3 {
		return fmt.Errorf("qualify basis contracts: %w", model.ErrMissingQuote)
	}
	vixFut, vixSpot, esFut = qualified[0], qualified[1], qualified[2]

	futQ, err := s.gw.Quote(ctx, vixFut)
	if err != nil || !futQ.Valid() {
		log.Warn().Msg("no VIX future quote, skipping basis cycle")
		return nil
	}
	spotQ, err := s.gw.Quote(ctx, vixSpot)
	if err != nil || !spotQ.Valid() {
		log.Warn().Msg("no VIX spot quote, skipping basis cycle")
		return nil
	}
	esQ, err := s.gw.Quote(ctx, esFut)
	if err != nil || !esQ.Valid() {
		log.Warn().Msg("no E-mini quote, skipping basis cycle")
		return nil
	}

	expiry, err := time.Parse("20060102", s.cfg.VIXExpiry)
	if err != nil {
		return fmt.Errorf("bad vix expiry %q: %w", s.cfg.VIXExpiry, err)
	}
	busDays := domsvc.BusinessDaysBetween(s.cal, s.now(), expiry)

	signal, err := domsvc.BasisSignal(futQ.Last, spotQ.Last)
	if err != nil {
		return err
	}
	dailyRoll, err := domsvc.DailyRoll(futQ.Last, spotQ.Last, busDays)
	if err != nil {
		return err
	}

	positions, err := s.gw.Positions(ctx, s.cfg.VIXSymbol, s.cfg.ESSymbol)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}
	futures, err := positionsByClass(positions, model.AssetFuture)
	if err != nil {
		return err
	}
	vixPos, vixOpen := futures[s.cfg.VIXSymbol]
	esPos, esOpen := futures[s.cfg.ESSymbol]

	decision := model.BasisDecision{
		Signal:    signal,
		DailyRoll: dailyRoll,
		BusDays:   busDays,
		Action:    model.ActionHold,
	}

	switch {
	case vixOpen && esOpen:
		if domsvc.BasisTakeProfit(vixPos.Quantity, busDays, dailyRoll, s.cfg.Thresholds) {
			decision.Action = model.ActionTakeProfit
			decision.Legs = []model.Order{
				{Security: vixPos.Contract, Quantity: -vixPos.Quantity},
				{Security: esPos.Contract, Quantity: -esPos.Quantity},
			}
		}

	case vixOpen != esOpen:
		// One leg without its hedge needs manual intervention; trading
		// on top of it would compound the imbalance.
		now := s.now()
		line := fmt.Sprintf("unhedged basis position: vix=%.0f es=%.0f", vixPos.Quantity, esPos.Quantity)
		if s.sink != nil {
			_ = s.sink.WriteAlert(now, line)
		}
		return fmt.Errorf("%s: %w", line, model.ErrUnhedgedPosition)

	default:
		action := domsvc.BasisEntry(signal, dailyRoll, s.cfg.Thresholds)
		if action != model.ActionHold {
			beta, err := s.estimateBeta(ctx)
			if err != nil {
				return err
			}
			qty := s.cfg.Quantity
			if action == model.ActionShortBasis {
				qty = -qty
			}
			decision.Action = action
			decision.Legs = []model.Order{
				{Security: vixFut, Quantity: qty},
				{Security: esFut, Quantity: domsvc.ESHedgeQuantity(qty, beta, futQ.Last, esQ.Last)},
			}
		}
	}

	now := s.now()
	payload, _ := json.Marshal(decision)
	if s.journal != nil {
		_ = s.journal.RecordSignal(ctx, now.UnixMilli(), "basis:"+s.cfg.VIXSymbol, signal, string(payload))
	}

	if decision.Action == model.ActionHold {
		log.Info().
			Float64("signal", signal).
			Float64("daily_roll", dailyRoll).
			Int("bus_days", busDays).
			Msg("no basis action")
		return nil
	}

	log.Info().
		Float64("signal", signal).
		Float64("daily_roll", dailyRoll).
		Int("bus_days", busDays).
		Str("action", string(decision.Action)).
		Msg("basis decision")
	if s.sink != nil {
		_ = s.sink.WriteDecision(now, fmt.Sprintf("basis %s signal=%.3f roll=%.3f days=%d",
			decision.Action, signal, dailyRoll, busDays))
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

// estimateBeta regresses daily VIX-future percentage changes on E-mini
// percentage changes over the trailing lookback.
func (s *BasisStrategy) estimateBeta(ctx context.Context) (float64, error) {
	closes, err := s.history.DailyCloses(ctx, []string{s.cfg.VIXHistSymbol, s.cfg.ESHistSymbol}, s.cfg.BetaLookback+1)
	if err != nil {
		return 0, fmt.Errorf("beta history: %w", err)
	}

	vixChg := stats.PercentChanges(closes[s.cfg.VIXHistSymbol])
	esChg := stats.PercentChanges(closes[s.cfg.ESHistSymbol])
	n := len(vixChg)
	if len(esChg) < n {
		n = len(esChg)
	}
	if n < 2 {
		return 0, fmt.Errorf("beta regression needs at least 2 daily changes, got %d: %w",
			n, model.ErrInsufficientData)
	}

	beta, _ := stats.LinearRegression(stats.Tail(esChg, n), stats.Tail(vixChg, n))
	return beta, nil
}
