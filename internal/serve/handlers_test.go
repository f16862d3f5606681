package serve

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/db"
)

func setupTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()

	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := models.DefaultConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, store, logger), store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const cartPageHTML = `<html><head><title>Cart</title></head><body>
	<h1>Cart</h1>
	<main><p>Check your subtotal below and continue to checkout when you are ready to buy.</p></main>
	<span class="price">$59.00</span>
</body></html>`

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/analyze", models.AnalyzeRequest{
		URL:  "https://shop.example.com/cart",
		HTML: cartPageHTML,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Snapshot == nil || resp.Snapshot.PageType != models.PageTypeShoppingCart {
		t.Errorf("snapshot = %+v, want classified shopping_cart", resp.Snapshot)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Kind != "budget" {
		t.Errorf("warnings = %v, want one budget warning", resp.Warnings)
	}

	// The snapshot was persisted.
	if _, err := store.SnapshotFor("https://shop.example.com/cart"); err != nil {
		t.Errorf("snapshot not persisted: %v", err)
	}

	// Same page again: the warning does not re-fire within the session.
	rec = doJSON(t, router, http.MethodPost, "/api/analyze", models.AnalyzeRequest{
		URL:  "https://shop.example.com/cart",
		HTML: cartPageHTML,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp = models.AnalyzeResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("repeat warnings = %v, want none", resp.Warnings)
	}
}

func TestHandoffRoundTrip(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/handoff", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty slot status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/handoff", map[string]string{
		"text": "What does 15% toward retirement mean?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("store status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/handoff", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("take status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["text"] != "What does 15% toward retirement mean?" {
		t.Errorf("text = %q, want the stored selection", resp["text"])
	}

	// Taking the hand-off clears the slot.
	rec = doJSON(t, router, http.MethodGet, "/api/handoff", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second take status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/handoff", map[string]string{"text": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank text status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeNavigationResetsWarnings(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	// Each URL is a navigation, so each cart page warns on first sight.
	for _, url := range []string{
		"https://alpha.example.com/cart",
		"https://beta.example.com/cart",
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/analyze", models.AnalyzeRequest{
			URL:  url,
			HTML: cartPageHTML,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status for %s = %d, body = %s", url, rec.Code, rec.Body.String())
		}
		var resp models.AnalyzeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Warnings) != 1 || resp.Warnings[0].Kind != "budget" {
			t.Errorf("warnings for %s = %v, want one budget warning", url, resp.Warnings)
		}
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/analyze", models.AnalyzeRequest{HTML: "<html></html>"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing url: status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader([]byte("{not json")))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d, want 400", rec.Code)
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil || errResp.Error == "" {
		t.Errorf("error body = %s, want ErrorResponse", rec.Body.String())
	}
}

func TestContextEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/context", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty store: status = %d, want 404", rec.Code)
	}

	snap := &models.PageSnapshot{
		URL:        "https://example.com",
		Title:      "Example",
		CapturedAt: time.Now().UTC(),
		PageType:   models.PageTypeGeneral,
	}
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/context", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.PageSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if got.URL != "https://example.com" || got.Title != "Example" {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestDismissEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)
	router := srv.Router()

	// Surface the budget warning first.
	doJSON(t, router, http.MethodPost, "/api/analyze", models.AnalyzeRequest{
		URL:  "https://shop.example.com/cart",
		HTML: cartPageHTML,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/warnings/dismiss", map[string]string{"kind": "budget"})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/warnings/dismiss", map[string]string{"kind": "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: status = %d, want 400", rec.Code)
	}
}

func TestChatEndpointUnconfigured(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/chat", models.ChatRequest{Message: "hi"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without an API key", rec.Code)
	}
}

func TestConversationEndpoints(t *testing.T) {
	srv, store := setupTestServer(t)
	router := srv.Router()

	conv := &models.Conversation{
		ID: "conv-1",
		Messages: []models.Message{
			{Role: models.RoleUser, Text: "how do I start a budget?"},
			{Role: models.RoleAssistant, Text: "Give every dollar a job."},
		},
	}
	if err := store.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() failed: %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/conversations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var list []*models.Conversation
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "conv-1" {
		t.Errorf("list = %v", list)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/conversations/conv-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/conversations/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get missing: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/conversations/conv-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/conversations/conv-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete twice: status = %d, want 404", rec.Code)
	}
}

func TestListConversationsEmptyIsArray(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/conversations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := bytes.TrimSpace(rec.Body.Bytes())
	if string(body) != "[]" {
		t.Errorf("empty list body = %s, want []", body)
	}
}
