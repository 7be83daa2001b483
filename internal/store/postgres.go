package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sustainly/esg-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hottest store operations.
var preparedStatements = map[string]string{
	"append_history": `INSERT INTO score_history (user_id, result, calculated_at) VALUES ($1, $2, $3) RETURNING seq`,
	"read_history": `SELECT seq, user_id, result FROM score_history
	 WHERE user_id = $1 ORDER BY calculated_at DESC, seq DESC LIMIT $2`,
	"get_eval_state": `SELECT trend FROM eval_state WHERE user_id = $1`,
	"get_benchmark":  `SELECT industry, dimension, mean, stddev, sample_size FROM benchmarks WHERE industry = $1 AND dimension = $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS score_history (
	seq           BIGSERIAL PRIMARY KEY,
	user_id       TEXT NOT NULL,
	result        JSONB NOT NULL,
	calculated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL,
	alert_type          TEXT NOT NULL,
	risk_level          TEXT NOT NULL,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	predicted_impact    TEXT NOT NULL,
	recommended_actions JSONB NOT NULL,
	timeline_days       INTEGER NOT NULL,
	confidence_score    DOUBLE PRECISION NOT NULL,
	data_sources        JSONB NOT NULL,
	is_resolved         BOOLEAN NOT NULL DEFAULT false,
	created_at          TIMESTAMPTZ NOT NULL,
	expires_at          TIMESTAMPTZ NOT NULL,
	resolved_at         TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS eval_state (
	user_id    TEXT PRIMARY KEY,
	trend      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS benchmarks (
	industry    TEXT NOT NULL,
	dimension   TEXT NOT NULL,
	mean        DOUBLE PRECISION NOT NULL,
	stddev      DOUBLE PRECISION NOT NULL,
	sample_size INTEGER NOT NULL,
	PRIMARY KEY (industry, dimension)
);

CREATE TABLE IF NOT EXISTS batch_runs (
	run_id       TEXT PRIMARY KEY,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS batch_checkpoints (
	run_id       TEXT NOT NULL REFERENCES batch_runs(run_id),
	user_id      TEXT NOT NULL,
	failure      TEXT,
	processed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_score_history_user ON score_history(user_id, calculated_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) AppendHistory(ctx context.Context, userID string, result model.ScoreResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: marshal result")
	}

	var seq int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO score_history (user_id, result, calculated_at) VALUES ($1, $2, $3) RETURNING seq`,
		userID, resultJSON, result.CalculatedAt.UTC(),
	).Scan(&seq)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: append history for %s", userID)
	}
	return seq, nil
}

func (s *PostgresStore) ReadHistory(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT seq, user_id, result FROM score_history
		 WHERE user_id = $1 ORDER BY calculated_at DESC, seq DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: read history for %s", userID)
	}
	defer rows.Close()

	var entries []model.ScoreHistoryEntry
	for rows.Next() {
		var e model.ScoreHistoryEntry
		var resultJSON []byte
		if err := rows.Scan(&e.Seq, &e.UserID, &resultJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan history entry")
		}
		if err := json.Unmarshal(resultJSON, &e.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: read history iterate")
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT user_id FROM score_history ORDER BY user_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list users")
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "postgres: scan user")
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "postgres: list users iterate")
}

func (s *PostgresStore) UpsertAlert(ctx context.Context, alert model.PredictiveAlert) error {
	actionsJSON, err := json.Marshal(alert.RecommendedActions)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal actions")
	}
	sourcesJSON, err := json.Marshal(alert.DataSources)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal sources")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO alerts (id, user_id, alert_type, risk_level, title, description, predicted_impact,
		                     recommended_actions, timeline_days, confidence_score, data_sources,
		                     is_resolved, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		   risk_level = EXCLUDED.risk_level,
		   title = EXCLUDED.title,
		   description = EXCLUDED.description,
		   predicted_impact = EXCLUDED.predicted_impact,
		   recommended_actions = EXCLUDED.recommended_actions,
		   timeline_days = EXCLUDED.timeline_days,
		   confidence_score = EXCLUDED.confidence_score,
		   data_sources = EXCLUDED.data_sources,
		   expires_at = EXCLUDED.expires_at`,
		alert.ID.String(), alert.UserID, string(alert.Type), string(alert.RiskLevel),
		alert.Title, alert.Description, alert.PredictedImpact,
		actionsJSON, alert.TimelineDays, alert.ConfidenceScore, sourcesJSON,
		alert.CreatedAt.UTC(), alert.ExpiresAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert alert %s", alert.ID)
}

func (s *PostgresStore) ListActiveAlerts(ctx context.Context, userID string, now time.Time) ([]model.PredictiveAlert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, alert_type, risk_level, title, description, predicted_impact,
		        recommended_actions, timeline_days, confidence_score, data_sources,
		        is_resolved, created_at, expires_at, resolved_at
		 FROM alerts
		 WHERE user_id = $1 AND is_resolved = false AND expires_at > $2
		 ORDER BY created_at DESC, id`,
		userID, now.UTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list active alerts for %s", userID)
	}
	defer rows.Close()

	var alerts []model.PredictiveAlert
	for rows.Next() {
		var a model.PredictiveAlert
		var id string
		var actionsJSON, sourcesJSON []byte
		var resolvedAt *time.Time

		if err := rows.Scan(&id, &a.UserID, &a.Type, &a.RiskLevel, &a.Title, &a.Description,
			&a.PredictedImpact, &actionsJSON, &a.TimelineDays, &a.ConfidenceScore,
			&sourcesJSON, &a.IsResolved, &a.CreatedAt, &a.ExpiresAt, &resolvedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan alert")
		}
		a.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: parse alert id %q", id)
		}
		if err := json.Unmarshal(actionsJSON, &a.RecommendedActions); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal actions")
		}
		if err := json.Unmarshal(sourcesJSON, &a.DataSources); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal sources")
		}
		a.ResolvedAt = resolvedAt
		alerts = append(alerts, a)
	}
	return alerts, eris.Wrap(rows.Err(), "postgres: list active alerts iterate")
}

func (s *PostgresStore) ResolveAlert(ctx context.Context, userID string, alertID uuid.UUID, now time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE alerts SET is_resolved = true, resolved_at = $1 WHERE id = $2 AND user_id = $3`,
		now.UTC(), alertID.String(), userID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: resolve alert %s", alertID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("alert not found: %s", alertID)
	}
	return nil
}

func (s *PostgresStore) GetEvalState(ctx context.Context, userID string) (model.Trend, bool, error) {
	var trend string
	err := s.pool.QueryRow(ctx,
		`SELECT trend FROM eval_state WHERE user_id = $1`,
		userID,
	).Scan(&trend)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, eris.Wrapf(err, "postgres: get eval state for %s", userID)
	}
	return model.Trend(trend), true, nil
}

func (s *PostgresStore) SetEvalState(ctx context.Context, userID string, trend model.Trend, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO eval_state (user_id, trend, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET trend = EXCLUDED.trend, updated_at = EXCLUDED.updated_at`,
		userID, string(trend), at.UTC(),
	)
	return eris.Wrapf(err, "postgres: set eval state for %s", userID)
}

func (s *PostgresStore) UpsertBenchmark(ctx context.Context, b model.IndustryBenchmark) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO benchmarks (industry, dimension, mean, stddev, sample_size) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (industry, dimension) DO UPDATE SET
		   mean = EXCLUDED.mean, stddev = EXCLUDED.stddev, sample_size = EXCLUDED.sample_size`,
		b.Industry, b.Dimension, b.Mean, b.StdDev, b.SampleSize,
	)
	return eris.Wrapf(err, "postgres: upsert benchmark %s/%s", b.Industry, b.Dimension)
}

func (s *PostgresStore) GetBenchmark(ctx context.Context, industry, dimension string) (*model.IndustryBenchmark, error) {
	var b model.IndustryBenchmark
	err := s.pool.QueryRow(ctx,
		`SELECT industry, dimension, mean, stddev, sample_size FROM benchmarks
		 WHERE industry = $1 AND dimension = $2`,
		industry, dimension,
	).Scan(&b.Industry, &b.Dimension, &b.Mean, &b.StdDev, &b.SampleSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get benchmark %s/%s", industry, dimension)
	}
	return &b, nil
}

func (s *PostgresStore) StartBatchRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO batch_runs (run_id, started_at) VALUES ($1, $2)
		 ON CONFLICT (run_id) DO NOTHING`,
		runID, startedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: start batch run %s", runID)
}

func (s *PostgresStore) CheckpointUser(ctx context.Context, runID, userID, failure string, at time.Time) error {
	var failureArg *string
	if failure != "" {
		failureArg = &failure
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO batch_checkpoints (run_id, user_id, failure, processed_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, user_id) DO UPDATE SET failure = EXCLUDED.failure, processed_at = EXCLUDED.processed_at`,
		runID, userID, failureArg, at.UTC(),
	)
	return eris.Wrapf(err, "postgres: checkpoint user %s in run %s", userID, runID)
}

func (s *PostgresStore) ListCheckpointedUsers(ctx context.Context, runID string) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM batch_checkpoints WHERE run_id = $1`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list checkpoints for run %s", runID)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "postgres: scan checkpoint")
		}
		done[u] = true
	}
	return done, eris.Wrap(rows.Err(), "postgres: list checkpoints iterate")
}

func (s *PostgresStore) CompleteBatchRun(ctx context.Context, runID string, completedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE batch_runs SET completed_at = $1 WHERE run_id = $2`,
		completedAt.UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete batch run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("batch_run not found: %s", runID)
	}
	return nil
}
