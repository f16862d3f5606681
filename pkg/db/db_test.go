package db

import (
	"errors"
	"testing"
	"time"

	"github.com/spendguard/spendguard/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func snapshotAt(url string, capturedAt time.Time) *models.PageSnapshot {
	return &models.PageSnapshot{
		URL:        url,
		Title:      "Test Page",
		CapturedAt: capturedAt,
		PageType:   models.PageTypeShoppingCart,
		PurchaseContext: models.PurchaseContext{
			Prices: []string{"$10.00"},
		},
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	snap := snapshotAt("https://example.com/cart", time.Now().UTC())
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	got, err := db.SnapshotFor("https://example.com/cart")
	if err != nil {
		t.Fatalf("SnapshotFor() failed: %v", err)
	}
	if got.Title != "Test Page" || got.PageType != models.PageTypeShoppingCart {
		t.Errorf("loaded snapshot = %+v, want saved values", got)
	}
	if len(got.PurchaseContext.Prices) != 1 {
		t.Errorf("Prices = %v, want round-tripped", got.PurchaseContext.Prices)
	}
}

func TestSaveSnapshotLastWriterWins(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	first := snapshotAt("https://example.com/cart", base)
	first.Title = "First"
	second := snapshotAt("https://example.com/cart", base.Add(time.Minute))
	second.Title = "Second"

	if err := db.SaveSnapshot(first); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	if err := db.SaveSnapshot(second); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	got, err := db.SnapshotFor("https://example.com/cart")
	if err != nil {
		t.Fatalf("SnapshotFor() failed: %v", err)
	}
	if got.Title != "Second" {
		t.Errorf("Title = %q, want last writer to win", got.Title)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("snapshot rows = %d, want 1 per URL", count)
	}
}

func TestLatestSnapshotAcrossURLs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	older := snapshotAt("https://a.example.com", base)
	newer := snapshotAt("https://b.example.com", base.Add(time.Hour))

	if err := db.SaveSnapshot(newer); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	if err := db.SaveSnapshot(older); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	got, err := db.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot() failed: %v", err)
	}
	if got.URL != "https://b.example.com" {
		t.Errorf("LatestSnapshot().URL = %q, want most recent capture", got.URL)
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.LatestSnapshot(); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("LatestSnapshot() error = %v, want ErrNoSnapshot", err)
	}
	if _, err := db.SnapshotFor("https://nowhere.example.com"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("SnapshotFor() error = %v, want ErrNoSnapshot", err)
	}
}

func TestSaveSnapshotUpdatesLastUpdated(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	capturedAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	if err := db.SaveSnapshot(snapshotAt("https://example.com", capturedAt)); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	value, err := db.GetValue("lastUpdated")
	if err != nil {
		t.Fatalf("GetValue() failed: %v", err)
	}
	if value != capturedAt.Format(time.RFC3339) {
		t.Errorf("lastUpdated = %q, want %q", value, capturedAt.Format(time.RFC3339))
	}
}

func TestKVRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.SetValue("theme", "dark"); err != nil {
		t.Fatalf("SetValue() failed: %v", err)
	}
	if err := db.SetValue("theme", "light"); err != nil {
		t.Fatalf("SetValue() update failed: %v", err)
	}

	value, err := db.GetValue("theme")
	if err != nil {
		t.Fatalf("GetValue() failed: %v", err)
	}
	if value != "light" {
		t.Errorf("GetValue() = %q, want %q", value, "light")
	}

	if err := db.DeleteValue("theme"); err != nil {
		t.Fatalf("DeleteValue() failed: %v", err)
	}
	value, err = db.GetValue("theme")
	if err != nil {
		t.Fatalf("GetValue() after delete failed: %v", err)
	}
	if value != "" {
		t.Errorf("GetValue() after delete = %q, want empty", value)
	}
}
