// Package history keeps a local record of jobs this client started and how
// they ended, so past runs are inspectable without the backend. SQLite in the
// config dir is the storage; the backend remains the system of record for
// everything else.
package history

import (
	"database/sql"
	_ "embed"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/kginsights/datapuur/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one recorded job run.
type Entry struct {
	JobID      string
	Kind       string
	PlanID     string
	Status     domain.JobStatus
	OutputFile string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Store is the local job history database.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open history db")
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "initialize history schema")
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// RecordStart inserts a new run in its starting state.
func (s *Store) RecordStart(jobID, kind, planID string, status domain.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO jobs (job_id, kind, plan_id, status, started_at) VALUES (?, ?, ?, ?, ?)",
		jobID, kind, planID, string(status), time.Now().UTC().Format(time.RFC3339),
	)
	return errors.Wrap(err, "record job start")
}

// RecordFinish updates a run with its terminal snapshot.
func (s *Store) RecordFinish(job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outputFile := ""
	if job.Result != nil {
		outputFile = job.Result.OutputFile
	}
	_, err := s.db.Exec(
		"UPDATE jobs SET status = ?, output_file = ?, error = ?, finished_at = ? WHERE job_id = ?",
		string(job.Status), outputFile, job.Error, time.Now().UTC().Format(time.RFC3339), job.ID,
	)
	return errors.Wrap(err, "record job finish")
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		"SELECT job_id, kind, COALESCE(plan_id, ''), status, COALESCE(output_file, ''), COALESCE(error, ''), started_at, finished_at FROM jobs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status, startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&e.JobID, &e.Kind, &e.PlanID, &status, &e.OutputFile, &e.Error, &startedAt, &finishedAt); err != nil {
			return nil, errors.Wrap(err, "scan history row")
		}
		e.Status = domain.JobStatus(status)
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			e.StartedAt = t
		}
		if finishedAt.Valid {
			if t, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
				e.FinishedAt = &t
			}
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "iterate history rows")
}
