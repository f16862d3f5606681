package models

import (
	"strings"
	"time"
)

// PageType is the coarse classification label assigned to a page.
type PageType string

const (
	PageTypeGeneral      PageType = "general"
	PageTypeShoppingCart PageType = "shopping_cart"
	PageTypeProductPage  PageType = "product_page"
	PageTypeShopping     PageType = "shopping"
	PageTypeFinancial    PageType = "financial"
	PageTypeRealEstate   PageType = "real_estate"
	PageTypeAutomotive   PageType = "automotive"
	PageTypeSubscription PageType = "subscription"
	PageTypeEducation    PageType = "education"
)

// Extraction caps. Overflow is truncated, never an error.
const (
	MaxSummaryChars   = 2000
	MaxSubHeadings    = 10
	MaxParagraphs     = 10
	MaxPrices         = 10
	MaxProductInfo    = 5
	MaxFinancialTerms = 5
)

// PageSnapshot is the structured summary of one page view. It is rebuilt
// from scratch on every extraction and overwrites the previous snapshot.
type PageSnapshot struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	CapturedAt time.Time `json:"capturedAt"`

	Content         PageContent     `json:"content"`
	Metadata        PageMeta        `json:"metadata"`
	PurchaseContext PurchaseContext `json:"purchaseContext"`

	PageType PageType `json:"pageType"`
}

// PageContent holds the readable text signals of a page.
type PageContent struct {
	MainHeading           string   `json:"mainHeading,omitempty"`
	SubHeadings           []string `json:"subHeadings,omitempty"`
	MainContentParagraphs []string `json:"mainContentParagraphs,omitempty"`
	// Summary is the concatenated article text, capped at MaxSummaryChars.
	Summary string `json:"summary"`
}

// PageMeta holds head/meta tag signals plus detected language.
type PageMeta struct {
	Description   string `json:"description,omitempty"`
	Keywords      string `json:"keywords,omitempty"`
	Author        string `json:"author,omitempty"`
	OGTitle       string `json:"ogTitle,omitempty"`
	OGDescription string `json:"ogDescription,omitempty"`

	Language           string  `json:"language,omitempty"` // ISO-639-1, e.g. "en"
	LanguageConfidence float64 `json:"languageConfidence,omitempty"`
}

// PurchaseContext holds the commerce/finance signals the warning engine
// evaluates.
type PurchaseContext struct {
	Prices             []string `json:"prices,omitempty"`
	ProductInfo        []string `json:"productInfo,omitempty"`
	FinancialTerms     []string `json:"financialTerms,omitempty"`
	HasFinancing       bool     `json:"hasFinancing"`
	HasSubscription    bool     `json:"hasSubscription"`
	CreditCardDetected bool     `json:"creditCardDetected"`
}

// PlainText concatenates the snapshot's readable text for keyword matching.
func (s *PageSnapshot) PlainText() string {
	var sb strings.Builder
	sb.WriteString(s.Title)
	sb.WriteString("\n")
	if s.Content.MainHeading != "" {
		sb.WriteString(s.Content.MainHeading)
		sb.WriteString("\n")
	}
	for _, h := range s.Content.SubHeadings {
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	sb.WriteString(s.Content.Summary)
	return sb.String()
}
