package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App struct {
		CycleSeconds int    `toml:"cycle_seconds"`
		Dryrun       bool   `toml:"dryrun"`
		LogLevel     string `toml:"log_level"`
	} `toml:"app"`

	Pairs struct {
		Enabled         bool     `toml:"enabled"`
		Universe        []string `toml:"universe"`
		NumPairs        int      `toml:"num_pairs"`
		FormationWindow int      `toml:"formation_window"`
		EntryZScore     float64  `toml:"entry_zscore"`
		ExitZScore      float64  `toml:"exit_zscore"`
		MaxPositionFrac float64  `toml:"max_position_frac"`
	} `toml:"pairs"`

	DeltaHedge struct {
		Enabled      bool     `toml:"enabled"`
		Tickers      []string `toml:"tickers"`
		BandLow      float64  `toml:"band_low"`
		BandHigh     float64  `toml:"band_high"`
		FarMinShares float64  `toml:"far_min_shares"`
	} `toml:"delta_hedge"`

	Basis struct {
		Enabled        bool    `toml:"enabled"`
		VIXFutExpiry   string  `toml:"vix_future_expiry"` // YYYYMMDD
		ESFutExpiry    string  `toml:"es_future_expiry"`  // YYYYMMDD
		Quantity       float64 `toml:"quantity"`
		EntryRoll      float64 `toml:"entry_roll"`
		ExitRoll       float64 `toml:"exit_roll"`
		TakeProfitDays int     `toml:"take_profit_days"`
		BetaLookback   int     `toml:"beta_lookback"`
		Calendar       string  `toml:"calendar"` // MIC code, e.g. "xnys"
	} `toml:"basis"`

	Storage struct {
		Backend    string `toml:"backend"` // csv | sqlite
		CSVPath    string `toml:"csv_path"`
		SQLitePath string `toml:"sqlite_path"`
	} `toml:"storage"`

	Journal struct {
		SQLite      bool   `toml:"sqlite"`
		PostgresDSN string `toml:"postgres_dsn"`
		RedisAddr   string `toml:"redis_addr"`
		RedisPrefix string `toml:"redis_prefix"`
	} `toml:"journal"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.App.CycleSeconds) * time.Second
}

func applyDefaults(cfg *Config) {
	if cfg.App.CycleSeconds <= 0 {
		cfg.App.CycleSeconds = 60
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Pairs.NumPairs <= 0 {
		cfg.Pairs.NumPairs = 50
	}
	if cfg.Pairs.FormationWindow <= 0 {
		cfg.Pairs.FormationWindow = 252
	}
	if cfg.Pairs.EntryZScore <= 0 {
		cfg.Pairs.EntryZScore = 1.0
	}
	if cfg.Pairs.ExitZScore <= 0 {
		cfg.Pairs.ExitZScore = 1.0
	}
	if cfg.Pairs.MaxPositionFrac <= 0 {
		cfg.Pairs.MaxPositionFrac = 0.05
	}
	if cfg.DeltaHedge.BandLow <= 0 {
		cfg.DeltaHedge.BandLow = 0.4
	}
	if cfg.DeltaHedge.BandHigh <= 0 {
		cfg.DeltaHedge.BandHigh = 0.6
	}
	if cfg.DeltaHedge.FarMinShares <= 0 {
		cfg.DeltaHedge.FarMinShares = 10
	}
	if cfg.Basis.Quantity == 0 {
		cfg.Basis.Quantity = 1
	}
	if cfg.Basis.EntryRoll <= 0 {
		cfg.Basis.EntryRoll = 0.10
	}
	if cfg.Basis.ExitRoll <= 0 {
		cfg.Basis.ExitRoll = 0.05
	}
	if cfg.Basis.TakeProfitDays <= 0 {
		cfg.Basis.TakeProfitDays = 9
	}
	if cfg.Basis.BetaLookback <= 0 {
		cfg.Basis.BetaLookback = 252
	}
	if cfg.Basis.Calendar == "" {
		cfg.Basis.Calendar = "xnys"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "csv"
	}
	if cfg.Storage.CSVPath == "" {
		cfg.Storage.CSVPath = "pairs-data.csv"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/qhedge.db"
	}
	if cfg.Journal.RedisPrefix == "" {
		cfg.Journal.RedisPrefix = "qhedge"
	}
}

func validate(cfg *Config) error {
	cfg.Pairs.Universe = normalizeSymbols(cfg.Pairs.Universe)
	cfg.DeltaHedge.Tickers = normalizeSymbols(cfg.DeltaHedge.Tickers)

	if cfg.Pairs.Enabled && len(cfg.Pairs.Universe) < 2 {
		return errors.New("pairs.universe needs at least 2 tickers when pairs is enabled")
	}
	if cfg.DeltaHedge.Enabled && len(cfg.DeltaHedge.Tickers) == 0 {
		return errors.New("delta_hedge.tickers is empty but delta_hedge enabled")
	}
	if cfg.DeltaHedge.BandLow > cfg.DeltaHedge.BandHigh {
		return fmt.Errorf("delta_hedge band inverted: low %.2f > high %.2f",
			cfg.DeltaHedge.BandLow, cfg.DeltaHedge.BandHigh)
	}
	if cfg.Basis.Enabled {
		if _, err := time.Parse("20060102", cfg.Basis.VIXFutExpiry); err != nil {
			return fmt.Errorf("basis.vix_future_expiry %q: want YYYYMMDD", cfg.Basis.VIXFutExpiry)
		}
		if _, err := time.Parse("20060102", cfg.Basis.ESFutExpiry); err != nil {
			return fmt.Errorf("basis.es_future_expiry %q: want YYYYMMDD", cfg.Basis.ESFutExpiry)
		}
	}
	switch cfg.Storage.Backend {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("storage.backend %q: want csv or sqlite", cfg.Storage.Backend)
	}
	return nil
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
