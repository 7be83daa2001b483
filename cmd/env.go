package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/benchmark"
	"github.com/sustainly/esg-cli/internal/catalog"
	"github.com/sustainly/esg-cli/internal/fetcher"
	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/predict"
	"github.com/sustainly/esg-cli/internal/scoring"
	"github.com/sustainly/esg-cli/internal/store"
	"github.com/sustainly/esg-cli/internal/suggest"
	anthropicpkg "github.com/sustainly/esg-cli/pkg/anthropic"
)

// initStore opens the configured backend and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadCatalog returns the configured question catalog, falling back to
// the built-in retail set.
func loadCatalog() (*catalog.Catalog, error) {
	if cfg.Scoring.CatalogFile != "" {
		return catalog.LoadFile(cfg.Scoring.CatalogFile)
	}
	return catalog.Default(), nil
}

// newEngine wires the scoring engine over the store-backed history and
// benchmark source.
func newEngine(st store.Store, cat *catalog.Catalog) *scoring.Engine {
	return scoring.NewEngine(cat, st, benchmark.NewEngine(st), cfg.Scoring)
}

// loadCalendar reads the regulatory calendar from the configured file or
// URL. No configuration means no deadline alerts, which is fine.
func loadCalendar(ctx context.Context) ([]model.RegulatoryCalendarEntry, error) {
	switch {
	case cfg.Calendar.File != "":
		return predict.LoadCalendarFile(cfg.Calendar.File)
	case cfg.Calendar.URL != "":
		body, err := fetcher.New().Download(ctx, cfg.Calendar.URL)
		if err != nil {
			return nil, eris.Wrap(err, "download calendar")
		}
		defer body.Close()
		return predict.ParseCalendarCSV(body)
	default:
		zap.L().Debug("no regulatory calendar configured")
		return nil, nil
	}
}

// newSuggestChain builds the configured answer-suggestion chain.
func newSuggestChain() (*suggest.Chain, error) {
	var providers []suggest.Provider
	for _, name := range cfg.Suggest.Providers {
		switch name {
		case "anthropic":
			if cfg.Suggest.Key == "" {
				return nil, eris.New("suggest provider anthropic requires ESG_SUGGEST_KEY")
			}
			client := anthropicpkg.NewClient(cfg.Suggest.Key)
			providers = append(providers, suggest.NewAnthropicProvider(client, cfg.Suggest.Model))
		case "defaults":
			providers = append(providers, suggest.NewDefaultsProvider())
		default:
			return nil, eris.Errorf("unknown suggest provider %q", name)
		}
	}
	return suggest.NewChain(providers, cfg.Suggest.RatePerSec), nil
}
