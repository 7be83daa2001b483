package benchmark

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/fetcher"
	"github.com/sustainly/esg-cli/internal/model"
)

// Upserter persists benchmark reference rows.
type Upserter interface {
	UpsertBenchmark(ctx context.Context, b model.IndustryBenchmark) error
}

// Syncer refreshes benchmark reference data from a CSV feed.
type Syncer struct {
	fetch *fetcher.Fetcher
	store Upserter
}

// NewSyncer builds a syncer over the given fetcher and store.
func NewSyncer(fetch *fetcher.Fetcher, store Upserter) *Syncer {
	return &Syncer{fetch: fetch, store: store}
}

// Sync downloads the feed at feedURL and upserts its rows. The feed is
// CSV with a header row: industry, dimension, mean, stddev, sample_size.
// Malformed rows are skipped with a warning. Returns the number of rows
// upserted.
func (s *Syncer) Sync(ctx context.Context, feedURL string) (int, error) {
	body, err := s.fetch.Download(ctx, feedURL)
	if err != nil {
		return 0, eris.Wrap(err, "benchmark: download feed")
	}
	defer body.Close()

	var upserted, skipped int
	err = fetcher.ForEachCSV(body, true, func(row []string) error {
		b, ok := parseFeedRow(row)
		if !ok {
			skipped++
			return nil
		}
		if err := s.store.UpsertBenchmark(ctx, b); err != nil {
			return eris.Wrapf(err, "benchmark: upsert %s/%s", b.Industry, b.Dimension)
		}
		upserted++
		return nil
	})
	if err != nil {
		return upserted, err
	}

	zap.L().Info("benchmark: feed synced",
		zap.String("url", feedURL),
		zap.Int("upserted", upserted),
		zap.Int("skipped", skipped),
	)
	return upserted, nil
}

func parseFeedRow(row []string) (model.IndustryBenchmark, bool) {
	if len(row) < 5 {
		zap.L().Warn("benchmark: skipping short feed row", zap.Strings("row", row))
		return model.IndustryBenchmark{}, false
	}
	industry := Key(row[0])
	dimension := row[1]
	if industry == "" || dimension == "" {
		zap.L().Warn("benchmark: skipping feed row with empty key", zap.Strings("row", row))
		return model.IndustryBenchmark{}, false
	}
	mean, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		zap.L().Warn("benchmark: skipping feed row with bad mean", zap.String("mean", row[2]), zap.Error(err))
		return model.IndustryBenchmark{}, false
	}
	stddev, err := strconv.ParseFloat(row[3], 64)
	if err != nil || stddev < 0 {
		zap.L().Warn("benchmark: skipping feed row with bad stddev", zap.String("stddev", row[3]))
		return model.IndustryBenchmark{}, false
	}
	size, err := strconv.Atoi(row[4])
	if err != nil || size < 0 {
		zap.L().Warn("benchmark: skipping feed row with bad sample size", zap.String("sample_size", row[4]))
		return model.IndustryBenchmark{}, false
	}
	return model.IndustryBenchmark{
		Industry:   industry,
		Dimension:  dimension,
		Mean:       mean,
		StdDev:     stddev,
		SampleSize: size,
	}, true
}
