package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rshade/carbonledger/internal/compute"
	"github.com/rshade/carbonledger/internal/factor"
	"github.com/rshade/carbonledger/internal/metrics"
	"github.com/rshade/carbonledger/internal/query"
	"github.com/rshade/carbonledger/internal/storage/sqlite"
	"github.com/rshade/carbonledger/internal/units"
)

// app bundles the wired pipeline for one command invocation.
type app struct {
	store    *sqlite.Store
	registry *factor.Registry
	computer *compute.Computer
	engine   *query.Engine
	metrics  *metrics.Metrics
}

// openApp opens the ledger database and wires the pipeline. The caller
// must call close when done.
func openApp() (*app, error) {
	path := cfg.Storage.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir := filepath.Join(home, ".carbonledger")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		path = filepath.Join(dir, "ledger.db")
	}

	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	m := metrics.New()
	registry := factor.NewRegistry(store)
	return &app{
		store:    store,
		registry: registry,
		computer: compute.NewComputer(registry, units.NewConverter(units.DefaultTable()), store, m),
		engine:   query.NewEngine(store),
		metrics:  m,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn().Err(err).Msg("closing ledger store")
	}
}
