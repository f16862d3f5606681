package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spendguard/spendguard/models"
)

// ErrNoSnapshot means no snapshot has been stored yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SaveSnapshot upserts the snapshot for its URL and refreshes the
// lastUpdated marker. Writes are last-writer-wins.
func (db *DB) SaveSnapshot(snap *models.PageSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO snapshots (url, captured_at, page_type, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			captured_at = excluded.captured_at,
			page_type = excluded.page_type,
			payload = excluded.payload
	`, snap.URL, snap.CapturedAt, string(snap.PageType), string(payload))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return db.SetValue("lastUpdated", snap.CapturedAt.Format(time.RFC3339))
}

// LatestSnapshot returns the most recently captured snapshot across all
// URLs, or ErrNoSnapshot.
func (db *DB) LatestSnapshot() (*models.PageSnapshot, error) {
	var payload string
	err := db.QueryRow(`
		SELECT payload FROM snapshots
		ORDER BY captured_at DESC
		LIMIT 1
	`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap models.PageSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// SnapshotFor returns the stored snapshot for one URL, or ErrNoSnapshot.
func (db *DB) SnapshotFor(url string) (*models.PageSnapshot, error) {
	var payload string
	err := db.QueryRow(`SELECT payload FROM snapshots WHERE url = ?`, url).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap models.PageSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
