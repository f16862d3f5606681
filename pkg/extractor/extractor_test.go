package extractor

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spendguard/spendguard/models"
)

var (
	testExtractor     *Extractor
	testExtractorOnce sync.Once
)

// sharedExtractor builds the extractor once; the language detector is too
// expensive to rebuild per test.
func sharedExtractor() *Extractor {
	testExtractorOnce.Do(func() {
		testExtractor = New()
	})
	return testExtractor
}

const productHTML = `<html>
<head>
	<title>
		Deluxe Stand Mixer - Example Shop
	</title>
	<meta name="description" content="A very good mixer">
	<meta name="keywords" content="mixer,kitchen">
	<meta property="og:title" content="Deluxe Stand Mixer">
</head>
<body>
	<h1>Deluxe Stand Mixer</h1>
	<h2>Overview</h2>
	<h2>Specifications</h2>
	<main>
		<p>This stand mixer handles bread dough, cake batter, and anything else a home baker throws at it without slowing down.</p>
		<p>Pay with any major Credit Card, or split the cost into monthly payments with financing at checkout.</p>
	</main>
	<span class="price">$349.99</span>
	<span class="price">$349.99</span>
	<div class="product-title">Deluxe Stand Mixer 5qt</div>
</body>
</html>`

func TestExtractProductPage(t *testing.T) {
	snap, err := sharedExtractor().Extract("https://shop.example.com/product/mixer", productHTML)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if snap.Title != "Deluxe Stand Mixer - Example Shop" {
		t.Errorf("Title = %q, want normalized title", snap.Title)
	}
	if snap.Content.MainHeading != "Deluxe Stand Mixer" {
		t.Errorf("MainHeading = %q", snap.Content.MainHeading)
	}
	if len(snap.Content.SubHeadings) != 2 {
		t.Errorf("SubHeadings = %v, want 2 entries", snap.Content.SubHeadings)
	}
	if len(snap.Content.MainContentParagraphs) != 2 {
		t.Errorf("MainContentParagraphs = %d, want 2", len(snap.Content.MainContentParagraphs))
	}
	if snap.Metadata.Description != "A very good mixer" {
		t.Errorf("Description = %q", snap.Metadata.Description)
	}
	if snap.Metadata.OGTitle != "Deluxe Stand Mixer" {
		t.Errorf("OGTitle = %q", snap.Metadata.OGTitle)
	}
	if snap.PageType != models.PageTypeGeneral {
		t.Errorf("PageType = %q, extractor must leave it general", snap.PageType)
	}
}

func TestExtractPurchaseContext(t *testing.T) {
	snap, err := sharedExtractor().Extract("https://shop.example.com/product/mixer", productHTML)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	pc := snap.PurchaseContext
	if len(pc.Prices) != 1 || pc.Prices[0] != "$349.99" {
		t.Errorf("Prices = %v, want deduplicated [$349.99]", pc.Prices)
	}
	if len(pc.ProductInfo) == 0 {
		t.Errorf("ProductInfo is empty, want product title picked up")
	}
	if !pc.CreditCardDetected {
		t.Error("CreditCardDetected = false, want true for mixed-case mention")
	}
	if !pc.HasFinancing {
		t.Error("HasFinancing = false, want true")
	}
	if pc.HasSubscription {
		t.Error("HasSubscription = true, want false")
	}
}

func TestExtractPriceRegexFallback(t *testing.T) {
	html := `<html><body><p>Grand total today only: $1,299.00 plus tax</p></body></html>`
	snap, err := sharedExtractor().Extract("https://example.com/deal", html)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if len(snap.PurchaseContext.Prices) != 1 || snap.PurchaseContext.Prices[0] != "$1,299.00" {
		t.Errorf("Prices = %v, want [$1,299.00] from body text", snap.PurchaseContext.Prices)
	}
}

func TestExtractCapsEnforced(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "<h2>Section %d</h2>", i)
		fmt.Fprintf(&sb, `<span class="price">$%d.99</span>`, i+10)
		fmt.Fprintf(&sb, "<p>Paragraph number %d with enough words to clear the minimum length filter easily.</p>", i)
	}
	sb.WriteString("</main></body></html>")

	snap, err := sharedExtractor().Extract("https://example.com/huge", sb.String())
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if len(snap.Content.SubHeadings) != models.MaxSubHeadings {
		t.Errorf("SubHeadings = %d, want cap %d", len(snap.Content.SubHeadings), models.MaxSubHeadings)
	}
	if len(snap.Content.MainContentParagraphs) != models.MaxParagraphs {
		t.Errorf("MainContentParagraphs = %d, want cap %d", len(snap.Content.MainContentParagraphs), models.MaxParagraphs)
	}
	if len(snap.PurchaseContext.Prices) != models.MaxPrices {
		t.Errorf("Prices = %d, want cap %d", len(snap.PurchaseContext.Prices), models.MaxPrices)
	}
}

func TestExtractSummaryTruncated(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	html := "<html><body><main><p>" + long + "</p></main></body></html>"

	snap, err := sharedExtractor().Extract("https://example.com/long", html)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if len(snap.Content.Summary) > models.MaxSummaryChars {
		t.Errorf("Summary length = %d, want <= %d", len(snap.Content.Summary), models.MaxSummaryChars)
	}
}

func TestExtractEmptyPage(t *testing.T) {
	snap, err := sharedExtractor().Extract("https://example.com/blank", "<html><body></body></html>")
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	if snap.Content.MainHeading != "" {
		t.Errorf("MainHeading = %q, want empty", snap.Content.MainHeading)
	}
	if len(snap.PurchaseContext.Prices) != 0 {
		t.Errorf("Prices = %v, want none", snap.PurchaseContext.Prices)
	}
	if snap.PurchaseContext.CreditCardDetected {
		t.Error("CreditCardDetected = true on empty page")
	}
}

func TestExtractLanguageDetection(t *testing.T) {
	html := `<html><body><main><p>` +
		`The simplest way to stay out of debt is to spend less than you earn every single month and keep an emergency fund for the surprises that always come.` +
		`</p></main></body></html>`

	snap, err := sharedExtractor().Extract("https://example.com/article", html)
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if snap.Metadata.Language != "en" {
		t.Errorf("Language = %q, want en", snap.Metadata.Language)
	}
	if snap.Metadata.LanguageConfidence <= 0 {
		t.Errorf("LanguageConfidence = %f, want > 0", snap.Metadata.LanguageConfidence)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses newlines", "a\n\n  b  \nc", "a b c"},
		{"trims edges", "   hello   ", "hello"},
		{"empty", "\n\n\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(tt.input); got != tt.want {
				t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
