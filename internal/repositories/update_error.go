package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/shared"
)

// UpdateErrorRepository persists [models.UpdateError] rows.
//
// Rows are listed in sequence order, which is the order the update job recorded them in.
type UpdateErrorRepository struct {
	db *sql.DB
}

// NewUpdateErrorRepository creates a new UpdateErrorRepository with the given database connection
func NewUpdateErrorRepository(db *sql.DB) *UpdateErrorRepository {
	return &UpdateErrorRepository{db: db}
}

// Create inserts a single update error with a generated sequence
func (r *UpdateErrorRepository) Create(e *models.UpdateError) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertUpdateError(tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceRun deletes every stored update error and inserts errs under runID in one transaction.
//
// A failed insert leaves the previous run intact.
func (r *UpdateErrorRepository) ReplaceRun(runID string, errs []*models.UpdateError) error {
	if runID == "" {
		return fmt.Errorf("%w: run id is required", shared.ErrInvalidInput)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM update_errors"); err != nil {
		return fmt.Errorf("failed to clear previous run: %w", err)
	}

	for _, e := range errs {
		if e.RunID() != runID {
			return fmt.Errorf("%w: update error belongs to run %s, not %s", shared.ErrInvalidInput, e.RunID(), runID)
		}
		if err := insertUpdateError(tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// List retrieves update errors matching the given criteria in sequence order.
//
// Supported criteria: "run_id" (string), "source_id" (int64), "item_id" (int64).
func (r *UpdateErrorRepository) List(criteria map[string]any) ([]*models.UpdateError, error) {
	query := `
		SELECT id, sequence, run_id, item_id, item_title, source_id, message_id, created_at
		FROM update_errors
		WHERE 1 = 1
	`

	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if sourceID, ok := criteria["source_id"].(int64); ok {
		query += " AND source_id = ?"
		args = append(args, sourceID)
	}

	if itemID, ok := criteria["item_id"].(int64); ok {
		query += " AND item_id = ?"
		args = append(args, itemID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query update errors: %w", err)
	}
	defer rows.Close()

	var errs []*models.UpdateError
	for rows.Next() {
		e, err := scanUpdateError(rows)
		if err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return errs, nil
}

// DeleteByItem removes all update errors recorded for itemID
func (r *UpdateErrorRepository) DeleteByItem(itemID int64) error {
	result, err := r.db.Exec("DELETE FROM update_errors WHERE item_id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete update errors: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: no update errors for item %d", shared.ErrItemNotFound, itemID))
}

// DeleteAll removes every update error and returns how many were removed
func (r *UpdateErrorRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec("DELETE FROM update_errors")
	if err != nil {
		return 0, fmt.Errorf("failed to delete update errors: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

func insertUpdateError(tx *sql.Tx, e *models.UpdateError) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(tx, "update_errors")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	rec := e.Record()
	result, err := tx.Exec(`
		INSERT INTO update_errors (sequence, run_id, item_id, item_title, source_id, message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sequence, e.RunID(), rec.ItemID, rec.ItemTitle, rec.SourceID, rec.MessageID, e.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert update error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get update error id: %w", err)
	}

	e.SetID(id)
	e.SetSequence(sequence)
	return nil
}

func scanUpdateError(row rowScanner) (*models.UpdateError, error) {
	var (
		id        int64
		sequence  int
		runID     string
		rec       models.FailureRecord
		createdAt time.Time
	)

	err := row.Scan(&id, &sequence, &runID, &rec.ItemID, &rec.ItemTitle, &rec.SourceID, &rec.MessageID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan update error: %w", err)
	}

	e := models.NewUpdateError(runID, rec)
	e.SetID(id)
	e.SetSequence(sequence)
	e.SetCreatedAt(createdAt)
	return e, nil
}

// FailureStore loads the current failures alongside the messages they reference.
type FailureStore struct {
	Errors   *UpdateErrorRepository
	Messages *MessageRepository
}

// Load returns every recorded failure in recorded order and all known messages.
func (s FailureStore) Load() ([]models.FailureRecord, []models.FailureMessage, error) {
	errs, err := s.Errors.List(map[string]any{})
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.Messages.List()
	if err != nil {
		return nil, nil, err
	}
	return models.Records(errs), messages, nil
}
