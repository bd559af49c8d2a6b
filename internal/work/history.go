package work

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// HistoryEntry is one recorded work execution.
type HistoryEntry struct {
	ID         int64      `json:"id"`
	WorkType   string     `json:"work_type"`
	Subject    string     `json:"subject,omitempty"`
	Status     string     `json:"status"`
	Detail     string     `json:"detail,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// History statuses.
const (
	historyRunning   = "running"
	historyCompleted = "completed"
	historyFailed    = "failed"
)

// History persists work executions in cache.db so the jobs status endpoint
// survives restarts. Rows are throwaway; the cleanup work type prunes them.
type History struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistory creates a new work history store.
func NewHistory(db *sql.DB, log zerolog.Logger) *History {
	return &History{
		db:  db,
		log: log.With().Str("component", "work_history").Logger(),
	}
}

// RecordStart inserts a running entry and returns its row ID.
func (h *History) RecordStart(item *WorkItem) (int64, error) {
	res, err := h.db.Exec(`
		INSERT INTO job_history (work_type, subject, status, started_at)
		VALUES (?, ?, ?, ?)
	`, item.TypeID, item.Subject, historyRunning, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to record work start: %w", err)
	}
	return res.LastInsertId()
}

// RecordCompleted finishes an entry successfully.
func (h *History) RecordCompleted(id int64) error {
	return h.finish(id, historyCompleted, "")
}

// RecordFailed finishes an entry with the failure detail.
func (h *History) RecordFailed(id int64, cause error) error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return h.finish(id, historyFailed, detail)
}

func (h *History) finish(id int64, status, detail string) error {
	_, err := h.db.Exec(`
		UPDATE job_history SET status = ?, detail = ?, finished_at = ?
		WHERE id = ?
	`, status, detail, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to finish history entry %d: %w", id, err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (h *History) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.Query(`
		SELECT id, work_type, subject, status, detail, started_at, finished_at
		FROM job_history
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query work history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e          HistoryEntry
			detail     sql.NullString
			startedAt  int64
			finishedAt sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.WorkType, &e.Subject, &e.Status, &detail, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		e.Detail = detail.String
		e.StartedAt = time.Unix(startedAt, 0)
		if finishedAt.Valid {
			t := time.Unix(finishedAt.Int64, 0)
			e.FinishedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteBefore prunes entries that started before the cutoff.
func (h *History) DeleteBefore(cutoff time.Time) (int64, error) {
	res, err := h.db.Exec(`DELETE FROM job_history WHERE started_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune work history: %w", err)
	}
	return res.RowsAffected()
}
