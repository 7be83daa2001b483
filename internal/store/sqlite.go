package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sustainly/esg-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS score_history (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       TEXT NOT NULL,
	result        TEXT NOT NULL,
	calculated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL,
	alert_type          TEXT NOT NULL,
	risk_level          TEXT NOT NULL,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	predicted_impact    TEXT NOT NULL,
	recommended_actions TEXT NOT NULL,
	timeline_days       INTEGER NOT NULL,
	confidence_score    REAL NOT NULL,
	data_sources        TEXT NOT NULL,
	is_resolved         INTEGER NOT NULL DEFAULT 0,
	created_at          DATETIME NOT NULL,
	expires_at          DATETIME NOT NULL,
	resolved_at         DATETIME
);

CREATE TABLE IF NOT EXISTS eval_state (
	user_id    TEXT PRIMARY KEY,
	trend      TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS benchmarks (
	industry    TEXT NOT NULL,
	dimension   TEXT NOT NULL,
	mean        REAL NOT NULL,
	stddev      REAL NOT NULL,
	sample_size INTEGER NOT NULL,
	PRIMARY KEY (industry, dimension)
);

CREATE TABLE IF NOT EXISTS batch_runs (
	run_id       TEXT PRIMARY KEY,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS batch_checkpoints (
	run_id       TEXT NOT NULL REFERENCES batch_runs(run_id),
	user_id      TEXT NOT NULL,
	failure      TEXT,
	processed_at DATETIME NOT NULL,
	PRIMARY KEY (run_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_score_history_user ON score_history(user_id, calculated_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendHistory(ctx context.Context, userID string, result model.ScoreResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: marshal result")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO score_history (user_id, result, calculated_at) VALUES (?, ?, ?)`,
		userID, string(resultJSON), result.CalculatedAt.UTC(),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: append history for %s", userID)
	}
	seq, err := res.LastInsertId()
	return seq, eris.Wrap(err, "sqlite: last insert id")
}

func (s *SQLiteStore) ReadHistory(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, user_id, result FROM score_history
		 WHERE user_id = ?
		 ORDER BY calculated_at DESC, seq DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: read history for %s", userID)
	}
	defer rows.Close()

	var entries []model.ScoreHistoryEntry
	for rows.Next() {
		var e model.ScoreHistoryEntry
		var resultJSON string
		if err := rows.Scan(&e.Seq, &e.UserID, &resultJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan history entry")
		}
		if err := json.Unmarshal([]byte(resultJSON), &e.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: read history iterate")
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM score_history ORDER BY user_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list users")
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan user")
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "sqlite: list users iterate")
}

func (s *SQLiteStore) UpsertAlert(ctx context.Context, alert model.PredictiveAlert) error {
	actionsJSON, err := json.Marshal(alert.RecommendedActions)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal actions")
	}
	sourcesJSON, err := json.Marshal(alert.DataSources)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal sources")
	}

	// On conflict the alert identity already exists: refresh the payload
	// and expiry but keep created_at and the resolution flags.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, user_id, alert_type, risk_level, title, description, predicted_impact,
		                     recommended_actions, timeline_days, confidence_score, data_sources,
		                     is_resolved, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   risk_level = excluded.risk_level,
		   title = excluded.title,
		   description = excluded.description,
		   predicted_impact = excluded.predicted_impact,
		   recommended_actions = excluded.recommended_actions,
		   timeline_days = excluded.timeline_days,
		   confidence_score = excluded.confidence_score,
		   data_sources = excluded.data_sources,
		   expires_at = excluded.expires_at`,
		alert.ID.String(), alert.UserID, string(alert.Type), string(alert.RiskLevel),
		alert.Title, alert.Description, alert.PredictedImpact,
		string(actionsJSON), alert.TimelineDays, alert.ConfidenceScore, string(sourcesJSON),
		alert.CreatedAt.UTC(), alert.ExpiresAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert alert %s", alert.ID)
}

func (s *SQLiteStore) ListActiveAlerts(ctx context.Context, userID string, now time.Time) ([]model.PredictiveAlert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, alert_type, risk_level, title, description, predicted_impact,
		        recommended_actions, timeline_days, confidence_score, data_sources,
		        is_resolved, created_at, expires_at, resolved_at
		 FROM alerts
		 WHERE user_id = ? AND is_resolved = 0 AND expires_at > ?
		 ORDER BY created_at DESC, id`,
		userID, now.UTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list active alerts for %s", userID)
	}
	defer rows.Close()

	var alerts []model.PredictiveAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, eris.Wrap(rows.Err(), "sqlite: list active alerts iterate")
}

func (s *SQLiteStore) ResolveAlert(ctx context.Context, userID string, alertID uuid.UUID, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET is_resolved = 1, resolved_at = ? WHERE id = ? AND user_id = ?`,
		now.UTC(), alertID.String(), userID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: resolve alert %s", alertID)
	}
	return checkRowsAffected(res, "alert", alertID.String())
}

func (s *SQLiteStore) GetEvalState(ctx context.Context, userID string) (model.Trend, bool, error) {
	var trend string
	err := s.db.QueryRowContext(ctx,
		`SELECT trend FROM eval_state WHERE user_id = ?`,
		userID,
	).Scan(&trend)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "sqlite: get eval state for %s", userID)
	}
	return model.Trend(trend), true, nil
}

func (s *SQLiteStore) SetEvalState(ctx context.Context, userID string, trend model.Trend, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO eval_state (user_id, trend, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET trend = excluded.trend, updated_at = excluded.updated_at`,
		userID, string(trend), at.UTC(),
	)
	return eris.Wrapf(err, "sqlite: set eval state for %s", userID)
}

func (s *SQLiteStore) UpsertBenchmark(ctx context.Context, b model.IndustryBenchmark) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO benchmarks (industry, dimension, mean, stddev, sample_size) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (industry, dimension) DO UPDATE SET
		   mean = excluded.mean, stddev = excluded.stddev, sample_size = excluded.sample_size`,
		b.Industry, b.Dimension, b.Mean, b.StdDev, b.SampleSize,
	)
	return eris.Wrapf(err, "sqlite: upsert benchmark %s/%s", b.Industry, b.Dimension)
}

func (s *SQLiteStore) GetBenchmark(ctx context.Context, industry, dimension string) (*model.IndustryBenchmark, error) {
	var b model.IndustryBenchmark
	err := s.db.QueryRowContext(ctx,
		`SELECT industry, dimension, mean, stddev, sample_size FROM benchmarks
		 WHERE industry = ? AND dimension = ?`,
		industry, dimension,
	).Scan(&b.Industry, &b.Dimension, &b.Mean, &b.StdDev, &b.SampleSize)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get benchmark %s/%s", industry, dimension)
	}
	return &b, nil
}

func (s *SQLiteStore) StartBatchRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batch_runs (run_id, started_at) VALUES (?, ?)
		 ON CONFLICT (run_id) DO NOTHING`,
		runID, startedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: start batch run %s", runID)
}

func (s *SQLiteStore) CheckpointUser(ctx context.Context, runID, userID, failure string, at time.Time) error {
	var failureArg any
	if failure != "" {
		failureArg = failure
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batch_checkpoints (run_id, user_id, failure, processed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (run_id, user_id) DO UPDATE SET failure = excluded.failure, processed_at = excluded.processed_at`,
		runID, userID, failureArg, at.UTC(),
	)
	return eris.Wrapf(err, "sqlite: checkpoint user %s in run %s", userID, runID)
}

func (s *SQLiteStore) ListCheckpointedUsers(ctx context.Context, runID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM batch_checkpoints WHERE run_id = ?`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list checkpoints for run %s", runID)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan checkpoint")
		}
		done[u] = true
	}
	return done, eris.Wrap(rows.Err(), "sqlite: list checkpoints iterate")
}

func (s *SQLiteStore) CompleteBatchRun(ctx context.Context, runID string, completedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE batch_runs SET completed_at = ? WHERE run_id = ?`,
		completedAt.UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete batch run %s", runID)
	}
	return checkRowsAffected(res, "batch_run", runID)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAlert(row scannable) (*model.PredictiveAlert, error) {
	var a model.PredictiveAlert
	var id, actionsJSON, sourcesJSON string
	var resolvedAt sql.NullTime

	err := row.Scan(&id, &a.UserID, &a.Type, &a.RiskLevel, &a.Title, &a.Description,
		&a.PredictedImpact, &actionsJSON, &a.TimelineDays, &a.ConfidenceScore,
		&sourcesJSON, &a.IsResolved, &a.CreatedAt, &a.ExpiresAt, &resolvedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan alert")
	}

	a.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse alert id %q", id)
	}
	if err := json.Unmarshal([]byte(actionsJSON), &a.RecommendedActions); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal actions")
	}
	if err := json.Unmarshal([]byte(sourcesJSON), &a.DataSources); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal sources")
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		a.ResolvedAt = &t
	}
	return &a, nil
}
