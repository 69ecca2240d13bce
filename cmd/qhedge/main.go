package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/scmhub/calendar"

	appsvc "qhedge/internal/application/service"

	"qhedge/internal/application/port"
	"qhedge/internal/infrastructure/config"
	"qhedge/internal/infrastructure/gateway/paper"
	"qhedge/internal/infrastructure/logger"
	"qhedge/internal/infrastructure/storage/composite"
	"qhedge/internal/infrastructure/storage/csvfile"
	"qhedge/internal/infrastructure/storage/postgres"
	redisjournal "qhedge/internal/infrastructure/storage/redis"
	"qhedge/internal/infrastructure/storage/sqlite"
	"qhedge/internal/interfaces/console"

	domsvc "qhedge/internal/domain/service"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	dryrun := flag.Bool("dryrun", false, "force dry-run regardless of config")
	once := flag.Bool("once", false, "run a single decision cycle and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Setup("info")
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.LogLevel)

	isDryrun := cfg.App.Dryrun || *dryrun

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// calibration repository
	var repo port.CalibrationRepository
	var sqliteRepo *sqlite.Repo
	switch cfg.Storage.Backend {
	case "sqlite":
		sqliteRepo, err = sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("open sqlite store failed")
		}
		repo = sqliteRepo
	default:
		repo = csvfile.New(cfg.Storage.CSVPath)
	}
	defer repo.Close()

	// decision journal fan-out
	var journals []port.DecisionJournal
	if cfg.Journal.SQLite {
		if sqliteRepo == nil {
			sqliteRepo, err = sqlite.New(cfg.Storage.SQLitePath)
			if err != nil {
				log.Fatal().Err(err).Msg("open sqlite journal failed")
			}
			defer sqliteRepo.Close()
		}
		journals = append(journals, sqliteRepo)
	}
	if cfg.Journal.PostgresDSN != "" {
		pg, err := postgres.New(cfg.Journal.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres journal failed")
		}
		defer pg.Close()
		journals = append(journals, pg)
	}
	if cfg.Journal.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Journal.RedisAddr})
		journals = append(journals, redisjournal.New(rdb, cfg.Journal.RedisPrefix))
	}
	journal := composite.New(journals...)
	defer journal.Close()

	sink := console.NewSink()

	// The paper gateway stands in for broker connectivity; wire a real
	// ExecutionGateway implementation here for live trading.
	gw := paper.New(0)
	history := paper.NewHistory(nil)
	if !isDryrun {
		log.Warn().Msg("live mode requested but only the paper gateway is wired; orders stay simulated")
	}

	var strategies []appsvc.Strategy
	if cfg.Pairs.Enabled {
		strategies = append(strategies, appsvc.NewPairsStrategy(gw, repo, history, journal, sink, appsvc.PairsConfig{
			Universe:        cfg.Pairs.Universe,
			NumPairs:        cfg.Pairs.NumPairs,
			FormationWindow: cfg.Pairs.FormationWindow,
			EntryZ:          cfg.Pairs.EntryZScore,
			ExitZ:           cfg.Pairs.ExitZScore,
			MaxPositionFrac: cfg.Pairs.MaxPositionFrac,
		}))
	}
	if cfg.DeltaHedge.Enabled {
		for _, tic := range cfg.DeltaHedge.Tickers {
			strategies = append(strategies, appsvc.NewDeltaHedgeStrategy(gw, journal, sink, appsvc.DeltaHedgeConfig{
				Ticker: tic,
				Band: domsvc.DeltaBand{
					Low:          cfg.DeltaHedge.BandLow,
					High:         cfg.DeltaHedge.BandHigh,
					FarMinShares: cfg.DeltaHedge.FarMinShares,
				},
			}))
		}
	}
	if cfg.Basis.Enabled {
		strategies = append(strategies, appsvc.NewBasisStrategy(gw, history, journal, sink,
			calendar.GetCalendar(cfg.Basis.Calendar), appsvc.BasisConfig{
				VIXExpiry: cfg.Basis.VIXFutExpiry,
				ESExpiry:  cfg.Basis.ESFutExpiry,
				Quantity:  cfg.Basis.Quantity,
				Thresholds: domsvc.BasisThresholds{
					EntryRoll:      cfg.Basis.EntryRoll,
					ExitRoll:       cfg.Basis.ExitRoll,
					TakeProfitDays: cfg.Basis.TakeProfitDays,
				},
				BetaLookback: cfg.Basis.BetaLookback,
			}))
	}

	if len(strategies) == 0 {
		log.Fatal().Msg("no strategies enabled")
	}

	sched := appsvc.NewScheduler(strategies, cfg.CycleInterval(), isDryrun)

	log.Info().
		Str("config", *configPath).
		Int("strategies", len(strategies)).
		Bool("dryrun", isDryrun).
		Dur("cycle", cfg.CycleInterval()).
		Msg("qhedge started")

	if *once {
		sched.RunCycle(ctx)
		return
	}
	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("scheduler exited")
	}
}
