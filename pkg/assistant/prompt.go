package assistant

import (
	"fmt"
	"strings"

	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/keywords"
)

const systemPrompt = `You are a personal finance coach. Your guidance follows
debt-free principles: zero-based budgeting, paying with money you already
have, and steady behavior change over financial theory. You never recommend
debt, credit cards, or loans.

When a resource would genuinely help, call the search_resources tool and
reference only the results it returns. Never invent URLs.

Keep responses conversational, actionable, and appropriately brief. You are
a guide, not an answer box.`

// explicitPagePhrases make a question page-relevant regardless of keyword
// overlap.
var explicitPagePhrases = []string{
	"this page",
	"this article",
	"current page",
	"what i'm reading",
	"this content",
	"here",
}

// PageRelevant decides whether the user's question is about the captured
// page: either an explicit phrase, or a significant word shared with the
// page summary.
func PageRelevant(userText string, snap *models.PageSnapshot) bool {
	if snap == nil {
		return false
	}
	lower := strings.ToLower(userText)
	for _, phrase := range explicitPagePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return keywords.Overlaps(userText, snap.Content.Summary, 4)
}

// contextMessage formats the snapshot for the model. Only called when the
// question is page-relevant.
func contextMessage(snap *models.PageSnapshot) string {
	var sb strings.Builder
	sb.WriteString("Current page context (the user is asking about this content):\n")
	fmt.Fprintf(&sb, "URL: %s\nTitle: %s\n", snap.URL, snap.Title)
	if snap.Content.MainHeading != "" {
		fmt.Fprintf(&sb, "Main Topic: %s\n", snap.Content.MainHeading)
	}
	if len(snap.Content.SubHeadings) > 0 {
		sb.WriteString("Key Points:\n")
		for _, h := range snap.Content.SubHeadings {
			fmt.Fprintf(&sb, "- %s\n", h)
		}
	}
	fmt.Fprintf(&sb, "\nArticle Content:\n%s\n", snap.Content.Summary)
	if snap.Metadata.Keywords != "" {
		fmt.Fprintf(&sb, "Keywords: %s\n", snap.Metadata.Keywords)
	}
	if snap.Metadata.Author != "" {
		fmt.Fprintf(&sb, "Author: %s\n", snap.Metadata.Author)
	}
	if len(snap.PurchaseContext.Prices) > 0 {
		fmt.Fprintf(&sb, "Prices on page: %s\n", strings.Join(snap.PurchaseContext.Prices, ", "))
	}
	return sb.String()
}

// recentTurns returns the last n messages, skipping malformed entries
// (empty text or unknown role) left behind by older storage formats.
func recentTurns(messages []models.Message, n int) []models.Message {
	valid := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.Text == "" {
			continue
		}
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			continue
		}
		valid = append(valid, m)
	}
	if len(valid) > n {
		valid = valid[len(valid)-n:]
	}
	return valid
}
