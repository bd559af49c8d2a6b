package volume

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Repository persists per-width certification rows in results.db. The full
// trial outcomes are packed into a single msgpack blob per width so the
// heavy-frequency series survives without one row per trial.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new volume repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "volume").Logger(),
	}
}

// SaveWidths stores the per-width aggregates of one finished run.
func (r *Repository) SaveWidths(runUUID string, widths []WidthResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO volume_widths
			(run_uuid, width, trials, mean_heavy_prob, confidence, certified, quantum_volume, trial_blob)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare width insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range widths {
		blob, err := msgpack.Marshal(w.Trials)
		if err != nil {
			return fmt.Errorf("failed to pack trials for width %d: %w", w.Width, err)
		}
		certified := 0
		if w.Certification.Certified {
			certified = 1
		}
		_, err = stmt.Exec(
			runUUID, w.Width, w.Certification.Trials,
			w.Certification.MeanHeavyProb, w.Certification.Confidence,
			certified, w.QuantumVolume, blob,
		)
		if err != nil {
			return fmt.Errorf("failed to insert width %d: %w", w.Width, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit width rows: %w", err)
	}
	r.log.Debug().Str("run_uuid", runUUID).Int("widths", len(widths)).Msg("Width results saved")
	return nil
}

// WidthsForRun reloads the per-width results of a run, trial outcomes
// included.
func (r *Repository) WidthsForRun(runUUID string) ([]WidthResult, error) {
	rows, err := r.db.Query(`
		SELECT width, trials, mean_heavy_prob, confidence, certified, quantum_volume, trial_blob
		FROM volume_widths
		WHERE run_uuid = ?
		ORDER BY width ASC
	`, runUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query widths for run %s: %w", runUUID, err)
	}
	defer rows.Close()

	var results []WidthResult
	for rows.Next() {
		var (
			w         WidthResult
			certified int
			blob      []byte
		)
		err := rows.Scan(
			&w.Width, &w.Certification.Trials,
			&w.Certification.MeanHeavyProb, &w.Certification.Confidence,
			&certified, &w.QuantumVolume, &blob,
		)
		if err != nil {
			return nil, err
		}
		w.Certification.Certified = certified == 1
		if len(blob) > 0 {
			if err := msgpack.Unmarshal(blob, &w.Trials); err != nil {
				return nil, fmt.Errorf("failed to unpack trials for width %d: %w", w.Width, err)
			}
		}
		w.HeavyFrequencies = make([]float64, 0, len(w.Trials))
		for _, t := range w.Trials {
			w.HeavyFrequencies = append(w.HeavyFrequencies, t.HeavyFrequency)
		}
		results = append(results, w)
	}
	return results, rows.Err()
}

// LatestQuantumVolume returns the best certified quantum volume across all
// completed runs, 0 when nothing has been certified yet.
func (r *Repository) LatestQuantumVolume() (int, error) {
	var qv sql.NullInt64
	err := r.db.QueryRow(`
		SELECT MAX(quantum_volume) FROM volume_widths WHERE certified = 1
	`).Scan(&qv)
	if err != nil {
		return 0, fmt.Errorf("failed to query latest quantum volume: %w", err)
	}
	if !qv.Valid {
		return 0, nil
	}
	return int(qv.Int64), nil
}
