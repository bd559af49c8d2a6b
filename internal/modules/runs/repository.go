package runs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotFound reports a lookup for a run UUID that does not exist.
var ErrNotFound = errors.New("run not found")

// Repository handles run records in results.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new runs repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "runs").Logger(),
	}
}

// Create inserts a new pending run with JSON-encoded parameters and returns
// its UUID.
func (r *Repository) Create(kind Kind, params interface{}) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown run kind %q", kind)
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode run params: %w", err)
	}

	runUUID := uuid.New().String()
	_, err = r.db.Exec(`
		INSERT INTO runs (uuid, kind, status, params, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, runUUID, string(kind), string(StatusPending), string(encoded), time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	r.log.Debug().Str("uuid", runUUID).Str("kind", string(kind)).Msg("Run created")
	return runUUID, nil
}

// MarkRunning transitions a pending run to running.
func (r *Repository) MarkRunning(runUUID string) error {
	res, err := r.db.Exec(`
		UPDATE runs SET status = ?, started_at = ?
		WHERE uuid = ? AND status = ?
	`, string(StatusRunning), time.Now().Unix(), runUUID, string(StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark run %s running: %w", runUUID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("run %s is not pending: %w", runUUID, ErrNotFound)
	}
	return nil
}

// Complete stores the JSON-encoded report and finishes the run.
func (r *Repository) Complete(runUUID string, report interface{}) error {
	encoded, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}
	_, err = r.db.Exec(`
		UPDATE runs SET status = ?, report = ?, finished_at = ?
		WHERE uuid = ?
	`, string(StatusCompleted), string(encoded), time.Now().Unix(), runUUID)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runUUID, err)
	}
	return nil
}

// Fail records the failure message and finishes the run.
func (r *Repository) Fail(runUUID string, cause error) error {
	msg := cause.Error()
	_, err := r.db.Exec(`
		UPDATE runs SET status = ?, error = ?, finished_at = ?
		WHERE uuid = ?
	`, string(StatusFailed), msg, time.Now().Unix(), runUUID)
	if err != nil {
		return fmt.Errorf("failed to mark run %s failed: %w", runUUID, err)
	}
	return nil
}

// Get fetches one run by UUID.
func (r *Repository) Get(runUUID string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT uuid, kind, status, params, report, error, created_at, started_at, finished_at
		FROM runs WHERE uuid = ?
	`, runUUID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", runUUID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runUUID, err)
	}
	return run, nil
}

// PendingUUIDs returns pending runs of one kind, oldest first. The work
// processor uses this as its subject feed.
func (r *Repository) PendingUUIDs(kind Kind) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT uuid FROM runs
		WHERE kind = ? AND status = ?
		ORDER BY created_at ASC
	`, string(kind), string(StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending %s runs: %w", kind, err)
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		uuids = append(uuids, u)
	}
	return uuids, rows.Err()
}

// List returns the most recent runs, optionally filtered by kind.
func (r *Repository) List(kind Kind, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT uuid, kind, status, params, report, error, created_at, started_at, finished_at
		FROM runs`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *run)
	}
	return result, rows.Err()
}

// DeleteFinishedBefore removes completed and failed runs older than the
// cutoff. Used by the maintenance job to bound results.db growth.
func (r *Repository) DeleteFinishedBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`
		DELETE FROM runs
		WHERE status IN (?, ?) AND finished_at IS NOT NULL AND finished_at < ?
	`, string(StatusCompleted), string(StatusFailed), cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	return res.RowsAffected()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run        Run
		kind       string
		status     string
		report     sql.NullString
		errMsg     sql.NullString
		createdAt  int64
		startedAt  sql.NullInt64
		finishedAt sql.NullInt64
	)
	if err := s.Scan(&run.UUID, &kind, &status, &run.Params, &report, &errMsg, &createdAt, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.Kind = Kind(kind)
	run.Status = Status(status)
	if report.Valid {
		run.Report = &report.String
	}
	if errMsg.Valid {
		run.Error = &errMsg.String
	}
	run.CreatedAt = time.Unix(createdAt, 0)
	if startedAt.Valid {
		t := time.Unix(startedAt.Int64, 0)
		run.StartedAt = &t
	}
	if finishedAt.Valid {
		t := time.Unix(finishedAt.Int64, 0)
		run.FinishedAt = &t
	}
	return &run, nil
}
