package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spendguard/spendguard/models"
)

// ErrNotFound means the requested conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// SaveConversation upserts a conversation and prunes the store down to
// models.MaxConversations, dropping the oldest by updated_at.
func (db *DB) SaveConversation(conv *models.Conversation) error {
	if len(conv.Messages) == 0 {
		return nil // nothing worth saving
	}

	conv.Preview = models.BuildPreview(conv.Messages)
	conv.UpdatedAt = time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO conversations (id, created_at, updated_at, preview, messages)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			preview = excluded.preview,
			messages = excluded.messages
	`, conv.ID, conv.CreatedAt, conv.UpdatedAt, conv.Preview, string(messages))
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	// Enforce the history cap.
	_, err = db.Exec(`
		DELETE FROM conversations WHERE id NOT IN (
			SELECT id FROM conversations ORDER BY updated_at DESC LIMIT ?
		)
	`, models.MaxConversations)
	if err != nil {
		return fmt.Errorf("failed to prune conversations: %w", err)
	}
	return nil
}

// GetConversation loads one conversation by id.
func (db *DB) GetConversation(id string) (*models.Conversation, error) {
	row := db.QueryRow(`
		SELECT id, created_at, updated_at, preview, messages
		FROM conversations WHERE id = ?
	`, id)

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return conv, err
}

// ListConversations returns stored conversations most-recent-first.
// Rows whose message payload no longer decodes are skipped, not fatal.
func (db *DB) ListConversations() ([]*models.Conversation, error) {
	rows, err := db.Query(`
		SELECT id, created_at, updated_at, preview, messages
		FROM conversations
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			continue // defensive: skip malformed rows
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// DeleteConversation removes one conversation by id.
func (db *DB) DeleteConversation(id string) error {
	result, err := db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var conv models.Conversation
	var messages string
	if err := row.Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt, &conv.Preview, &messages); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(messages), &conv.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return &conv, nil
}
