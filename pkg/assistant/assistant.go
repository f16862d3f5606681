// Package assistant orchestrates one chat turn: pull the latest page
// snapshot, decide whether it is relevant, call the chat-completion API,
// and serve the model's resource-search tool calls from the trusted
// catalog.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/spendguard/spendguard/models"
)

// ErrMissingAPIKey means no OpenAI key is configured; no request is
// attempted.
var ErrMissingAPIKey = errors.New("OpenAI API key not found")

// Apology is appended to the conversation when the upstream call fails.
// Failures are terminal per attempt; there is no retry.
const Apology = "Sorry, I encountered an error. Please try again."

// snapshotTimeout bounds the context lookup so a slow store cannot stall
// the whole turn. On timeout the turn proceeds context-free.
const snapshotTimeout = 3 * time.Second

// SnapshotSource is the store view the orchestrator needs.
type SnapshotSource interface {
	LatestSnapshot() (*models.PageSnapshot, error)
}

type Orchestrator struct {
	client       openai.Client
	model        string
	historyTurns int
	snapshots    SnapshotSource
	logger       *slog.Logger
}

// New builds an Orchestrator. Returns ErrMissingAPIKey when cfg carries no
// key, so callers can surface the error without a request ever going out.
func New(cfg *models.Config, snapshots SnapshotSource, logger *slog.Logger) (*Orchestrator, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client:       openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		model:        cfg.OpenAIModel,
		historyTurns: cfg.HistoryTurns,
		snapshots:    snapshots,
		logger:       logger,
	}, nil
}

// Respond produces the assistant's answer for userText within conv. The
// conversation is not mutated; the caller appends both turns after a
// successful call (or the user turn plus Apology on failure).
func (o *Orchestrator) Respond(ctx context.Context, conv *models.Conversation, userText string, withContext bool) (string, error) {
	var snap *models.PageSnapshot
	if withContext {
		snap = o.fetchSnapshot(ctx)
	}

	relevant := PageRelevant(userText, snap)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}
	if relevant {
		messages = append(messages, openai.SystemMessage(contextMessage(snap)))
	}
	for _, m := range recentTurns(conv.Messages, o.historyTurns) {
		switch m.Role {
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(m.Text))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Text))
		}
	}
	if relevant {
		userText = "Based on the current page content, " + userText
	}
	messages = append(messages, openai.UserMessage(userText))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(o.model),
		Messages: messages,
		Tools:    []openai.ChatCompletionToolParam{resourceSearchTool()},
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	choice := completion.Choices[0].Message
	if len(choice.ToolCalls) == 0 {
		return choice.Content, nil
	}

	// Tool round: run each search, feed results back, then take the
	// final answer and append rendered resource blocks.
	params.Messages = append(params.Messages, choice.ToParam())

	var found []Resource
	for _, call := range choice.ToolCalls {
		if call.Function.Name != "search_resources" {
			continue
		}
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			o.logger.Warn("bad tool arguments", "error", err)
			params.Messages = append(params.Messages, openai.ToolMessage("[]", call.ID))
			continue
		}
		results := SearchResources(args.Query, 3)
		found = append(found, results...)

		payload, err := json.Marshal(results)
		if err != nil {
			payload = []byte("[]")
		}
		params.Messages = append(params.Messages, openai.ToolMessage(string(payload), call.ID))
	}

	completion, err = o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed after tool call: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return appendResourceBlocks(completion.Choices[0].Message.Content, found), nil
}

// fetchSnapshot reads the latest snapshot with a hard timeout, failing
// soft to nil so the turn degrades to context-free mode.
func (o *Orchestrator) fetchSnapshot(ctx context.Context) *models.PageSnapshot {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	type result struct {
		snap *models.PageSnapshot
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		snap, err := o.snapshots.LatestSnapshot()
		ch <- result{snap, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			o.logger.Debug("no page context available", "error", r.err)
			return nil
		}
		return r.snap
	case <-ctx.Done():
		o.logger.Debug("page context fetch timed out")
		return nil
	}
}

// appendResourceBlocks attaches <HTML> directive blocks for the tool
// results so the renderer can turn them into preview cards.
func appendResourceBlocks(answer string, resources []Resource) string {
	if len(resources) == 0 {
		return answer
	}
	var sb strings.Builder
	sb.WriteString(answer)
	seen := make(map[string]struct{})
	for _, res := range resources {
		if _, dup := seen[res.URL]; dup {
			continue
		}
		seen[res.URL] = struct{}{}
		sb.WriteString("\n\n")
		if res.Type == "video" {
			if id := youtubeID(res.URL); id != "" {
				fmt.Fprintf(&sb, `<HTML>youtube_embed(%q)</HTML>`, id)
				continue
			}
		}
		fmt.Fprintf(&sb, `<HTML>link_card(%q, %q, %q)</HTML>`, res.Title, res.Description, res.URL)
	}
	return sb.String()
}

func resourceSearchTool() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: shared.FunctionDefinitionParam{
			Name:        "search_resources",
			Description: openai.String("Search the trusted financial resource catalog for articles and videos relevant to the user's question."),
			Parameters: shared.FunctionParameters(map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Search terms describing what the user needs help with",
					},
				},
				"required": []string{"query"},
			}),
		},
	}
}
