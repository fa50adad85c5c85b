package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/shared"
)

// LibraryRepository persists [models.LibraryItem] rows.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a new LibraryRepository with the given database connection
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// Create validates and inserts item, setting its generated ID
func (r *LibraryRepository) Create(item *models.LibraryItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec(`
		INSERT INTO library_items (title, source_id, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, item.Title(), item.SourceID(), item.URL(), item.CreatedAt(), item.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert library item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get library item id: %w", err)
	}
	item.SetID(id)
	return nil
}

// Get retrieves a library item by ID
func (r *LibraryRepository) Get(id int64) (*models.LibraryItem, error) {
	row := r.db.QueryRow(`
		SELECT id, title, source_id, url, created_at, updated_at
		FROM library_items
		WHERE id = ?
	`, id)

	item, err := scanLibraryItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrItemNotFound, id)
	}
	return item, err
}

// List retrieves all library items in insertion order
func (r *LibraryRepository) List() ([]*models.LibraryItem, error) {
	rows, err := r.db.Query(`
		SELECT id, title, source_id, url, created_at, updated_at
		FROM library_items
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query library items: %w", err)
	}
	defer rows.Close()

	var items []*models.LibraryItem
	for rows.Next() {
		item, err := scanLibraryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// Delete removes a library item. Its update errors are removed by cascade.
func (r *LibraryRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM library_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete library item: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: %d", shared.ErrItemNotFound, id))
}

// rowScanner is satisfied by [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLibraryItem(row rowScanner) (*models.LibraryItem, error) {
	var (
		id        int64
		title     string
		sourceID  int64
		rawURL    string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &title, &sourceID, &rawURL, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan library item: %w", err)
	}

	item := models.NewLibraryItem(title, sourceID, rawURL)
	item.SetID(id)
	item.SetCreatedAt(createdAt)
	item.SetUpdatedAt(updatedAt)
	return item, nil
}
