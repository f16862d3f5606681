package assistant

import (
	"sort"
	"strings"

	"github.com/spendguard/spendguard/pkg/keywords"
)

// Resource is one entry in the trusted-resource catalog the model can
// search via the search_resources tool.
type Resource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Type        string `json:"type"` // "link" or "video"
}

// catalog is the fixed set of trusted resources. The assistant only ever
// links here; it never invents URLs.
var catalog = []Resource{
	{
		Title:       "7 Baby Steps",
		URL:         "https://www.ramseysolutions.com/dave-ramsey-7-baby-steps",
		Description: "The complete step-by-step plan to save, pay off debt, and build wealth",
		Type:        "link",
	},
	{
		Title:       "Emergency Fund Guide",
		URL:         "https://www.ramseysolutions.com/saving/emergency-fund",
		Description: "How to build your starter emergency fund of $1,000",
		Type:        "link",
	},
	{
		Title:       "Debt Snowball Method",
		URL:         "https://www.ramseysolutions.com/debt/debt-snowball-method",
		Description: "Step-by-step debt elimination strategy, smallest balance first",
		Type:        "link",
	},
	{
		Title:       "EveryDollar Budget Tool",
		URL:         "https://www.everydollar.com",
		Description: "Free zero-based budgeting app",
		Type:        "link",
	},
	{
		Title:       "Budget Percentages Guide",
		URL:         "https://www.ramseysolutions.com/budgeting/budget-percentages",
		Description: "How to allocate your income across budget categories",
		Type:        "link",
	},
	{
		Title:       "How to Budget",
		URL:         "https://www.youtube.com/watch?v=1FZ0DsFyLtw",
		Description: "Video walkthrough of building your first zero-based budget",
		Type:        "video",
	},
	{
		Title:       "Why You Don't Need a Credit Card",
		URL:         "https://www.ramseysolutions.com/debt/how-to-live-without-a-credit-card",
		Description: "Living debt-free without a credit score",
		Type:        "link",
	},
}

// SearchResources scores the catalog against the query by keyword overlap
// and returns up to limit matches, best first.
func SearchResources(query string, limit int) []Resource {
	queryWords := keywords.Frequency(query)

	type scored struct {
		res   Resource
		score int
	}
	var matches []scored
	for _, res := range catalog {
		haystack := keywords.Frequency(res.Title + " " + res.Description)
		score := 0
		for word := range queryWords {
			if _, ok := haystack[word]; ok {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{res, score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if limit > len(matches) {
		limit = len(matches)
	}
	out := make([]Resource, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].res
	}
	return out
}

// youtubeID extracts the video id from a YouTube watch URL, or "".
func youtubeID(url string) string {
	const marker = "watch?v="
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	id := url[idx+len(marker):]
	if amp := strings.IndexByte(id, '&'); amp >= 0 {
		id = id[:amp]
	}
	return id
}
