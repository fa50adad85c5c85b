package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/shared"
)

// MessageRepository persists deduplicated [models.FailureMessage] rows.
//
// Messages are never updated; a message is only removed once no update error references it.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new MessageRepository with the given database connection
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// GetOrCreate returns the message with the given text, inserting it on first sight.
func (r *MessageRepository) GetOrCreate(text string) (*models.FailureMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty failure message", shared.ErrInvalidInput)
	}

	if _, err := r.db.Exec("INSERT OR IGNORE INTO update_error_messages (message) VALUES (?)", text); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	msg := &models.FailureMessage{Text: text}
	if err := r.db.QueryRow("SELECT id FROM update_error_messages WHERE message = ?", text).Scan(&msg.ID); err != nil {
		return nil, fmt.Errorf("failed to get message id: %w", err)
	}
	return msg, nil
}

// Get retrieves a message by ID
func (r *MessageRepository) Get(id int64) (*models.FailureMessage, error) {
	msg := &models.FailureMessage{ID: id}
	err := r.db.QueryRow("SELECT message FROM update_error_messages WHERE id = ?", id).Scan(&msg.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrMessageNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	return msg, nil
}

// List retrieves all messages ordered by ID
func (r *MessageRepository) List() ([]models.FailureMessage, error) {
	rows, err := r.db.Query("SELECT id, message FROM update_error_messages ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.FailureMessage
	for rows.Next() {
		var m models.FailureMessage
		if err := rows.Scan(&m.ID, &m.Text); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return messages, nil
}

// DeleteUnreferenced removes messages no update error points at and returns how many were removed.
func (r *MessageRepository) DeleteUnreferenced() (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM update_error_messages
		WHERE id NOT IN (SELECT DISTINCT message_id FROM update_errors)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unreferenced messages: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}
