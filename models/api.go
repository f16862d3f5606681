package models

// Tagged request/response types for the HTTP messaging boundary. Every
// payload crossing the boundary is one of these, never an untyped map.

// AnalyzeRequest asks the server to run the extraction pipeline. Either
// URL alone (server fetches) or HTML plus URL (caller supplies the
// document) must be set.
type AnalyzeRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html,omitempty"`
}

// AnalyzeResponse carries the snapshot and any warnings the trigger
// engine surfaced for this evaluation.
type AnalyzeResponse struct {
	Snapshot *PageSnapshot  `json:"snapshot"`
	Warnings []WarningEvent `json:"warnings"`
}

// WarningEvent is one advisory surfaced by the trigger engine.
type WarningEvent struct {
	Kind    string `json:"kind"` // "budget" or "creditCard"
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// ChatRequest is one user turn. An empty ConversationID starts a new
// conversation.
type ChatRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	Message        string `json:"message"`
	// NoContext skips attaching the latest page snapshot.
	NoContext bool `json:"noContext,omitempty"`
}

// ChatResponse carries the assistant's reply both as raw text and as
// rendered markup.
type ChatResponse struct {
	ConversationID string `json:"conversationId"`
	Reply          string `json:"reply"`
	HTML           string `json:"html"`
}

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
