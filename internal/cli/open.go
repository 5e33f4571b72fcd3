package cli

import (
	"fmt"

	"github.com/moneyhub/classmarket/config"
	"github.com/moneyhub/classmarket/engine"
	"github.com/moneyhub/classmarket/ledger"
	"github.com/moneyhub/classmarket/pricing"
)

// openEngine builds the store and engine from config plus flag overrides.
// The returned func releases the store (a no-op for the JSON backend).
func openEngine(rc *RootConfig) (*engine.Engine, func() error, error) {
	cfg := config.Default()
	if rc.ConfigPath != "" {
		loaded, err := config.LoadFromFile(rc.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if rc.DataDir != "" {
		cfg.Store.Type = "json"
		cfg.Store.DataDir = rc.DataDir
	}
	if rc.DBPath != "" {
		cfg.Store.Type = "sqlite"
		cfg.Store.DBPath = rc.DBPath
	}

	var (
		store   ledger.Store
		release = func() error { return nil }
	)
	switch cfg.Store.Type {
	case "sqlite":
		db, err := ledger.NewSQLite(cfg.Store.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		store = db
		release = db.Close
	default:
		js, err := ledger.NewJSONStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open json store: %w", err)
		}
		store = js
	}

	oracle := pricing.New(cfg.Market.JitterLow, cfg.Market.JitterHigh)
	eng, err := engine.New(store, oracle, engine.Options{
		StartingCash:    cfg.Market.StartingCash,
		JitterLow:       cfg.Market.JitterLow,
		JitterHigh:      cfg.Market.JitterHigh,
		LeaderboardSeed: cfg.Market.LeaderboardSeed,
		FallbackPrice:   cfg.Market.FallbackPrice,
		Admin:           cfg.Market.Admin,
	})
	if err != nil {
		release()
		return nil, nil, err
	}
	return eng, release, nil
}
