package serve

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/assistant"
	"github.com/spendguard/spendguard/pkg/db"
	"github.com/spendguard/spendguard/pkg/render"
	"github.com/spendguard/spendguard/pkg/warning"
)

const maxRequestBody = 10 << 20 // 10 MiB of HTML is plenty

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleContext returns the latest stored snapshot.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.LatestSnapshot()
	if err != nil {
		if errors.Is(err, db.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no snapshot captured yet")
			return
		}
		s.logger.Error("reading snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "reading snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleAnalyze runs the pipeline on caller-supplied HTML, or fetches the
// URL itself when the body carries no HTML.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	html := req.HTML
	if html == "" {
		fetched, err := s.fetcher.GetHTML(r.Context(), req.URL)
		if err != nil {
			s.logger.Warn("fetch failed", "url", req.URL, "error", err)
			writeError(w, http.StatusBadGateway, "fetching page failed")
			return
		}
		html = fetched
	}

	// A different URL means the client navigated; warnings start over.
	s.mu.Lock()
	if req.URL != s.lastURL {
		s.session.Reset()
		s.lastURL = req.URL
	}
	s.mu.Unlock()

	snap, events, err := s.pipeline.Analyze(req.URL, html, s.session)
	if err != nil {
		s.logger.Error("analyze failed", "url", req.URL, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "analyzing page failed")
		return
	}

	writeJSON(w, http.StatusOK, models.AnalyzeResponse{
		Snapshot: snap,
		Warnings: events,
	})
}

// handleDismiss marks a warning kind dismissed for the current session.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	switch warning.Kind(req.Kind) {
	case warning.KindBudget, warning.KindCreditCard:
		s.session.Dismiss(warning.Kind(req.Kind))
	default:
		writeError(w, http.StatusBadRequest, "unknown warning kind")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// handleSetHandoff stores text a capture client selected on the page so
// the next chat turn can pick it up.
func (s *Server) handleSetHandoff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err := s.store.SetValue(db.HandoffKey, req.Text); err != nil {
		s.logger.Error("storing hand-off", "error", err)
		writeError(w, http.StatusInternalServerError, "storing hand-off failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

// handleTakeHandoff returns the pending hand-off text and clears the slot.
func (s *Server) handleTakeHandoff(w http.ResponseWriter, r *http.Request) {
	text, err := s.store.GetValue(db.HandoffKey)
	if err != nil {
		s.logger.Error("reading hand-off", "error", err)
		writeError(w, http.StatusInternalServerError, "reading hand-off failed")
		return
	}
	if text == "" {
		writeError(w, http.StatusNotFound, "no pending hand-off")
		return
	}
	if err := s.store.DeleteValue(db.HandoffKey); err != nil {
		s.logger.Warn("clearing hand-off", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured; set OPENAI_API_KEY")
		return
	}

	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	conv, err := s.loadOrCreateConversation(req.ConversationID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.logger.Error("loading conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "loading conversation failed")
		return
	}

	reply, err := s.chat.Respond(r.Context(), conv, req.Message, !req.NoContext)
	if err != nil {
		s.logger.Warn("chat turn failed", "conversation", conv.ID, "error", err)
		reply = assistant.Apology
	}

	conv.Messages = append(conv.Messages,
		models.Message{Role: models.RoleUser, Text: req.Message},
		models.Message{Role: models.RoleAssistant, Text: reply},
	)
	if err := s.store.SaveConversation(conv); err != nil {
		s.logger.Error("saving conversation", "conversation", conv.ID, "error", err)
	}

	html, err := render.FormatAssistantHTML(reply)
	if err != nil {
		s.logger.Warn("rendering reply failed", "error", err)
		html = reply
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		ConversationID: conv.ID,
		Reply:          reply,
		HTML:           html,
	})
}

func (s *Server) loadOrCreateConversation(id string) (*models.Conversation, error) {
	if id == "" {
		return &models.Conversation{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
		}, nil
	}
	return s.store.GetConversation(id)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.store.ListConversations()
	if err != nil {
		s.logger.Error("listing conversations", "error", err)
		writeError(w, http.StatusInternalServerError, "listing conversations failed")
		return
	}
	if convs == nil {
		convs = []*models.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.store.GetConversation(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.logger.Error("reading conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "reading conversation failed")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteConversation(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.logger.Error("deleting conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "deleting conversation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
