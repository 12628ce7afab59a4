package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	_ "github.com/mattn/go-sqlite3"

	"go-sample-pipeline/internal/model"
)

// ErrNotFound is returned when a run id is unknown
var ErrNotFound = errors.New("run not found")

// Run statuses kept in the runs table
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Store is the run history database
type Store struct {
	db *sql.DB
}

// RunRecord is a row of the runs table
type RunRecord struct {
	ID        string        `json:"id"`
	Spec      model.RunSpec `json:"spec"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// RunResult is the stored aggregate of a finished run
type RunResult struct {
	RunID  string                `json:"run_id"`
	State  string                `json:"state"`
	Result model.AggregateResult `json:"result"`
	Line   string                `json:"line"`
}

// WorkerRecord is one producer or consumer outcome of a run
type WorkerRecord struct {
	Role     string `json:"role"`
	WorkerID int    `json:"worker_id"`
	Records  int64  `json:"records"`
	Sum      int64  `json:"sum"`
	Quota    int    `json:"quota"`
	Error    string `json:"error,omitempty"`
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	spec TEXT,
	status TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS run_results (
	run_id TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
	state TEXT,
	total_sum INTEGER,
	expected_count INTEGER,
	consumed_count INTEGER,
	average REAL,
	partial_mean REAL,
	partial_stddev REAL,
	created_at DATETIME
);
CREATE TABLE IF NOT EXISTS run_errors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
	stage TEXT,
	worker_id INTEGER,
	error_type TEXT,
	error_message TEXT,
	created_at DATETIME
);
CREATE TABLE IF NOT EXISTS worker_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
	role TEXT,
	worker_id INTEGER,
	records INTEGER,
	sum INTEGER,
	quota INTEGER,
	error TEXT
);
`

// Open connects to the sqlite database at path and creates missing tables
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; runs finish concurrently with requests
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a new pending run
func (s *Store) SaveRun(runID string, spec model.RunSpec) error {
	specJSON, err := sonic.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`INSERT INTO runs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(specJSON), StatusPending, now, now)
	return err
}

// UpdateRunStatus updates run status
func (s *Store) UpdateRunStatus(runID, status string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveRunError records an error that ended a run
func (s *Store) SaveRunError(runID, stage string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := s.db.Exec(`INSERT INTO run_errors (run_id, stage, worker_id, error_type, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, stage, -1, errorType(err), err.Error(), now)
	return e
}

// SaveRunSummary stores the worker outcomes, tracked errors and aggregate of
// a finished run in one transaction
func (s *Store) SaveRunSummary(summary *model.RunSummary) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	workerStmt, err := tx.Prepare(`INSERT INTO worker_results (run_id, role, worker_id, records, sum, quota, error) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer workerStmt.Close()

	for _, p := range summary.Producers {
		if _, err = workerStmt.Exec(summary.RunID, "producer", p.WorkerID, p.RecordsWritten, p.Sum, summary.Spec.ValuesPerProducer, p.Error); err != nil {
			return err
		}
	}
	for _, c := range summary.Consumers {
		if _, err = workerStmt.Exec(summary.RunID, "consumer", c.WorkerID, c.RecordsRead, c.PartialSum, c.Quota, c.Error); err != nil {
			return err
		}
	}

	for _, e := range summary.Metrics.Errors {
		if _, err = tx.Exec(`INSERT INTO run_errors (run_id, stage, worker_id, error_type, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			summary.RunID, e.Stage, e.WorkerID, e.ErrorType, e.ErrorMessage, e.Timestamp.UTC()); err != nil {
			return err
		}
	}

	if agg := summary.Aggregate; agg != nil {
		if _, err = tx.Exec(`INSERT OR REPLACE INTO run_results (run_id, state, total_sum, expected_count, consumed_count, average, partial_mean, partial_stddev, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			summary.RunID, summary.State.String(), agg.TotalSum, agg.ExpectedCount, agg.ConsumedCount,
			agg.Average, agg.PartialMean, agg.PartialStdDev, time.Now().UTC()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRuns returns all runs, newest first
func (s *Store) ListRuns() ([]RunRecord, error) {
	rows, err := s.db.Query(`SELECT id, spec, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run with its spec and status
func (s *Store) GetRun(runID string) (*RunRecord, error) {
	row := s.db.QueryRow(`SELECT id, spec, status, created_at, updated_at FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// GetRunResult fetches the stored aggregate of a run
func (s *Store) GetRunResult(runID string) (*RunResult, error) {
	res := &RunResult{RunID: runID}
	err := s.db.QueryRow(`SELECT state, total_sum, expected_count, consumed_count, average, partial_mean, partial_stddev FROM run_results WHERE run_id = ?`, runID).
		Scan(&res.State, &res.Result.TotalSum, &res.Result.ExpectedCount, &res.Result.ConsumedCount,
			&res.Result.Average, &res.Result.PartialMean, &res.Result.PartialStdDev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	res.Line = model.FormatResult(res.Result.Average)
	return res, nil
}

// GetRunErrors returns every error recorded for a run
func (s *Store) GetRunErrors(runID string) ([]model.ErrorDetail, error) {
	rows, err := s.db.Query(`SELECT stage, worker_id, error_type, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]model.ErrorDetail, 0)
	for rows.Next() {
		var d model.ErrorDetail
		if err := rows.Scan(&d.Stage, &d.WorkerID, &d.ErrorType, &d.ErrorMessage, &d.Timestamp); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// GetWorkerResults returns the producer and consumer outcomes of a run
func (s *Store) GetWorkerResults(runID string) ([]WorkerRecord, error) {
	rows, err := s.db.Query(`SELECT role, worker_id, records, sum, quota, error FROM worker_results WHERE run_id = ? ORDER BY role DESC, worker_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]WorkerRecord, 0)
	for rows.Next() {
		var w WorkerRecord
		if err := rows.Scan(&w.Role, &w.WorkerID, &w.Records, &w.Sum, &w.Quota, &w.Error); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// DeleteRun removes a run and, through the foreign keys, everything stored for it
func (s *Store) DeleteRun(runID string) error {
	res, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var run RunRecord
	var specJSON string
	if err := row.Scan(&run.ID, &specJSON, &run.Status, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	if err := sonic.UnmarshalString(specJSON, &run.Spec); err != nil {
		return nil, err
	}
	return &run, nil
}

func errorType(err error) string {
	var e *model.Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return "unknown"
}
