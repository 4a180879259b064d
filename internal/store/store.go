// Package store provides SQLite-based persistence for pipeline results.
// Run metadata goes into a queryable table; the full result JSON is kept
// alongside for complete data.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/triagent/triagent/pkg/models"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Store wraps an SQLite database holding pipeline run history.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// RunSummary is the queryable metadata row for one pipeline run.
type RunSummary struct {
	RunID           string
	IssueID         string
	Repo            string
	IssueNumber     int
	Title           string
	Source          string
	Verdict         string
	StartedAt       string
	CompletedAt     string
	DurationSeconds float64
	TotalTokens     int64
	EstimatedCost   float64
	PMCriteriaCount int
	DevFileCount    int
	QAFindingCount  int
}

// Stats holds aggregate statistics over all stored runs.
type Stats struct {
	TotalRuns          int
	ByVerdict          map[string]int
	AvgDurationSeconds float64
	TotalTokens        int64
	TotalCostUSD       float64
	UniqueRepos        int
}

// Open opens the results database at the given path, creating parent
// directories and applying schema migrations. WAL mode is enabled for
// concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
		{2, migrationV2Results},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	run_id TEXT PRIMARY KEY,
	issue_id TEXT NOT NULL,
	repo TEXT,
	issue_number INTEGER,
	title TEXT,
	source TEXT,
	verdict TEXT,
	started_at TEXT,
	completed_at TEXT,
	duration_seconds REAL,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	estimated_cost_usd REAL NOT NULL DEFAULT 0.0,
	pm_criteria_count INTEGER,
	dev_file_count INTEGER,
	qa_finding_count INTEGER
);

CREATE INDEX IF NOT EXISTS idx_runs_issue ON pipeline_runs(issue_id);
CREATE INDEX IF NOT EXISTS idx_runs_repo ON pipeline_runs(repo);
CREATE INDEX IF NOT EXISTS idx_runs_verdict ON pipeline_runs(verdict);
CREATE INDEX IF NOT EXISTS idx_runs_completed ON pipeline_runs(completed_at);
`

const migrationV2Results = `
CREATE TABLE IF NOT EXISTS pipeline_results (
	run_id TEXT PRIMARY KEY,
	result_json TEXT NOT NULL,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (run_id) REFERENCES pipeline_runs(run_id)
);
`

// SaveResult persists a pipeline result. Saving the same run ID again
// replaces the previous record.
func (s *Store) SaveResult(result models.PipelineResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)

	var duration float64
	var totalTokens int64
	var cost float64
	if result.Metadata != nil {
		duration = result.Metadata.DurationSeconds
		if tu := result.Metadata.TokenUsage; tu != nil {
			totalTokens = tu.TotalTokens
			if tu.EstimatedTotalCostUSD != nil {
				cost = *tu.EstimatedTotalCostUSD
			}
		}
	}

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO pipeline_runs (
			run_id, issue_id, repo, issue_number, title, source,
			verdict, started_at, completed_at, duration_seconds,
			total_tokens, estimated_cost_usd,
			pm_criteria_count, dev_file_count, qa_finding_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.RunID, result.Issue.IssueID, result.Issue.Repo,
		result.Issue.IssueNumber, result.Issue.Title, string(result.Issue.Source),
		string(result.QA.Verdict), result.TimestampUTC, now, duration,
		totalTokens, cost,
		len(result.PM.AcceptanceCriteria), len(result.Dev.Files), len(result.QA.Findings),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert run metadata: %w", err)
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO pipeline_results (run_id, result_json, created_at)
		VALUES (?, ?, ?)
	`, result.RunID, string(resultJSON), now)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert result json: %w", err)
	}

	return tx.Commit()
}

// GetResult loads a full result by run ID.
func (s *Store) GetResult(runID string) (models.PipelineResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resultJSON string
	row := s.conn.QueryRow("SELECT result_json FROM pipeline_results WHERE run_id = ?", runID)
	if err := row.Scan(&resultJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PipelineResult{}, ErrNotFound
		}
		return models.PipelineResult{}, fmt.Errorf("query result: %w", err)
	}

	var result models.PipelineResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return models.PipelineResult{}, fmt.Errorf("parse stored result: %w", err)
	}
	return result, nil
}

// RecentRuns returns the most recently completed runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunSummary, error) {
	return s.queryRuns(`
		SELECT run_id, issue_id, repo, issue_number, title, source,
		       verdict, started_at, completed_at, duration_seconds,
		       total_tokens, estimated_cost_usd,
		       pm_criteria_count, dev_file_count, qa_finding_count
		FROM pipeline_runs
		ORDER BY completed_at DESC
		LIMIT ?
	`, limit)
}

// RunsByVerdict returns runs with the given verdict, newest first.
func (s *Store) RunsByVerdict(verdict string, limit int) ([]RunSummary, error) {
	return s.queryRuns(`
		SELECT run_id, issue_id, repo, issue_number, title, source,
		       verdict, started_at, completed_at, duration_seconds,
		       total_tokens, estimated_cost_usd,
		       pm_criteria_count, dev_file_count, qa_finding_count
		FROM pipeline_runs
		WHERE verdict = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`, verdict, limit)
}

// RunsByRepo returns runs for a repository, newest first.
func (s *Store) RunsByRepo(repo string, limit int) ([]RunSummary, error) {
	return s.queryRuns(`
		SELECT run_id, issue_id, repo, issue_number, title, source,
		       verdict, started_at, completed_at, duration_seconds,
		       total_tokens, estimated_cost_usd,
		       pm_criteria_count, dev_file_count, qa_finding_count
		FROM pipeline_runs
		WHERE repo = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`, repo, limit)
}

func (s *Store) queryRuns(query string, args ...any) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var duration sql.NullFloat64
		err := rows.Scan(
			&r.RunID, &r.IssueID, &r.Repo, &r.IssueNumber, &r.Title, &r.Source,
			&r.Verdict, &r.StartedAt, &r.CompletedAt, &duration,
			&r.TotalTokens, &r.EstimatedCost,
			&r.PMCriteriaCount, &r.DevFileCount, &r.QAFindingCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.DurationSeconds = duration.Float64
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetStats computes aggregate statistics over all stored runs.
func (s *Store) GetStats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{ByVerdict: make(map[string]int)}

	row := s.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(AVG(duration_seconds), 0),
		       COALESCE(SUM(total_tokens), 0),
		       COALESCE(SUM(estimated_cost_usd), 0),
		       COUNT(DISTINCT repo)
		FROM pipeline_runs
	`)
	err := row.Scan(&stats.TotalRuns, &stats.AvgDurationSeconds,
		&stats.TotalTokens, &stats.TotalCostUSD, &stats.UniqueRepos)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}

	rows, err := s.conn.Query(`
		SELECT verdict, COUNT(*) FROM pipeline_runs GROUP BY verdict
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("query verdict breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var verdict string
		var count int
		if err := rows.Scan(&verdict, &count); err != nil {
			return Stats{}, fmt.Errorf("scan verdict: %w", err)
		}
		stats.ByVerdict[verdict] = count
	}
	return stats, rows.Err()
}
