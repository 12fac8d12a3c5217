package repositories

import (
	"database/sql"
	"sync"

	"github.com/alimgiray/contribboard/internal/models"
)

type SyncRunRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO sync_runs (
			id, mode, window_start, window_end, events, contributors,
			status, error_message, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID, run.Mode, run.WindowStart, run.WindowEnd, run.Events,
		run.Contributors, run.Status, run.ErrorMessage, run.StartedAt,
		run.FinishedAt,
	)

	return err
}

func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE sync_runs
		SET events = ?, contributors = ?, status = ?, error_message = ?, finished_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		run.Events, run.Contributors, run.Status, run.ErrorMessage,
		run.FinishedAt, run.ID,
	)

	return err
}

// GetLatest returns the most recently started run, nil if none exist
func (r *SyncRunRepository) GetLatest() (*models.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, mode, window_start, window_end, events, contributors,
		       status, error_message, started_at, finished_at
		FROM sync_runs ORDER BY started_at DESC LIMIT 1
	`

	var run models.SyncRun
	err := r.db.QueryRow(query).Scan(
		&run.ID, &run.Mode, &run.WindowStart, &run.WindowEnd, &run.Events,
		&run.Contributors, &run.Status, &run.ErrorMessage, &run.StartedAt,
		&run.FinishedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}
