package runs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses. A run is inserted as running and finishes in exactly one of
// the other two states.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one persisted pipeline execution.
type Run struct {
	RunID       string     `json:"run_id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Operators   []string   `json:"operators"`
	SourcePaths []string   `json:"source_paths"`
	OutputPath  string     `json:"output_path"`
	Format      string     `json:"format"`
	GraphXML    string     `json:"graph_xml,omitempty"`
	Status      string     `json:"status"`
	ExitCode    *int       `json:"exit_code,omitempty"`
	DurationMS  *int64     `json:"duration_ms,omitempty"`
	LogPath     string     `json:"log_path,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Store provides persistence for pipeline runs.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store over an opened, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert persists a new run in the running state. If RunID is empty, a UUID
// is generated; a zero StartedAt defaults to now.
func (s *Store) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusRunning
	}

	operators, err := jsonArray(run.Operators)
	if err != nil {
		return fmt.Errorf("encoding operators: %w", err)
	}
	sources, err := jsonArray(run.SourcePaths)
	if err != nil {
		return fmt.Errorf("encoding source paths: %w", err)
	}

	query := `
		INSERT INTO pipeline_runs (
			run_id, started_at, operators, source_paths,
			output_path, format, graph_xml, status, log_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	err = retryOnBusy(func() error {
		_, err := s.db.Exec(query,
			run.RunID,
			run.StartedAt.UTC().Format(time.RFC3339),
			operators,
			sources,
			run.OutputPath,
			run.Format,
			nullStr(run.GraphXML),
			run.Status,
			nullStr(run.LogPath),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.RunID, err)
	}
	return nil
}

// Complete marks a run as completed with its exit code and duration.
func (s *Store) Complete(runID string, exitCode int, duration time.Duration) error {
	query := `
		UPDATE pipeline_runs
		SET status = ?, exit_code = ?, duration_ms = ?, finished_at = ?
		WHERE run_id = ?
	`
	return s.finish(runID, query,
		StatusCompleted, exitCode, duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339), runID)
}

// Fail marks a run as failed with a diagnostic reason.
func (s *Store) Fail(runID, reason string) error {
	query := `
		UPDATE pipeline_runs
		SET status = ?, error = ?, finished_at = ?
		WHERE run_id = ?
	`
	return s.finish(runID, query,
		StatusFailed, nullStr(reason), time.Now().UTC().Format(time.RFC3339), runID)
}

func (s *Store) finish(runID, query string, args ...any) error {
	err := retryOnBusy(func() error {
		result, err := s.db.Exec(query, args...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating run %s: %w", runID, err)
	}
	return nil
}

const runColumns = `
	run_id, started_at, finished_at, operators, source_paths,
	output_path, format, graph_xml, status, exit_code, duration_ms,
	log_path, error
`

// Get returns a single run by ID.
func (s *Store) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM pipeline_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// defaults to 50.
func (s *Store) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM pipeline_runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
		operators  string
		sources    string
		graphXML   sql.NullString
		exitCode   sql.NullInt64
		durationMS sql.NullInt64
		logPath    sql.NullString
		errMsg     sql.NullString
	)
	err := row.Scan(
		&run.RunID, &startedAt, &finishedAt, &operators, &sources,
		&run.OutputPath, &run.Format, &graphXML, &run.Status, &exitCode,
		&durationMS, &logPath, &errMsg,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(operators), &run.Operators); err != nil {
		return nil, fmt.Errorf("parse operators: %w", err)
	}
	if err := json.Unmarshal([]byte(sources), &run.SourcePaths); err != nil {
		return nil, fmt.Errorf("parse source_paths: %w", err)
	}
	if graphXML.Valid {
		run.GraphXML = graphXML.String
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	if durationMS.Valid {
		ms := durationMS.Int64
		run.DurationMS = &ms
	}
	if logPath.Valid {
		run.LogPath = logPath.String
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return &run, nil
}

// jsonArray encodes a string slice, mapping nil to the empty array so the
// column never holds JSON null.
func jsonArray(xs []string) (string, error) {
	if xs == nil {
		xs = []string{}
	}
	out, err := json.Marshal(xs)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// nullStr converts the empty string to NULL for insertion.
func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
