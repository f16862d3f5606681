// Package extractor builds a PageSnapshot from raw page HTML. Extraction
// is deterministic and tolerant: missing elements leave fields empty, caps
// are enforced by truncation, and nothing here touches the network or the
// store.
package extractor

import (
	"bufio"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/spendguard/spendguard/models"
)

type Extractor struct {
	detector lingua.LanguageDetector
}

// New builds an Extractor. The language detector is built once here; it is
// the only expensive part of construction.
func New() *Extractor {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
		).
		Build()
	return &Extractor{detector: detector}
}

// Extract parses html and produces the snapshot's content, metadata, and
// purchase context. PageType is left as general; the classifier fills it
// in. The only error path is HTML that goquery cannot parse at all.
func (e *Extractor) Extract(rawURL, html string) (*models.PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	snap := &models.PageSnapshot{
		URL:      rawURL,
		Title:    normalizeText(doc.Find("title").First().Text()),
		PageType: models.PageTypeGeneral,
	}

	e.extractContent(snap, doc, rawURL, html)
	e.extractMetadata(snap, doc)
	e.extractPurchaseContext(snap, doc)

	return snap, nil
}

func (e *Extractor) extractContent(snap *models.PageSnapshot, doc *goquery.Document, rawURL, html string) {
	snap.Content.MainHeading = normalizeText(doc.Find("h1").First().Text())

	doc.Find("h2, h3").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := normalizeText(s.Text())
		if text != "" {
			snap.Content.SubHeadings = append(snap.Content.SubHeadings, text)
		}
		return len(snap.Content.SubHeadings) < models.MaxSubHeadings
	})

	// Prefer semantic containers; most pages worth summarizing have one.
	doc.Find("article p, main p, [role=main] p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := normalizeText(s.Text())
		if len(text) > 40 {
			snap.Content.MainContentParagraphs = append(snap.Content.MainContentParagraphs, text)
		}
		return len(snap.Content.MainContentParagraphs) < models.MaxParagraphs
	})

	summary := strings.Join(snap.Content.MainContentParagraphs, " ")

	// Readability fallback for pages without semantic containers.
	if len(summary) < 200 {
		if parsed, err := url.Parse(rawURL); err == nil {
			reader := readability.NewParser()
			if article, err := reader.Parse(strings.NewReader(html), parsed); err == nil {
				text := normalizeText(article.TextContent)
				if len(text) > len(summary) {
					summary = text
				}
				if len(snap.Content.MainContentParagraphs) == 0 && article.Excerpt != "" {
					snap.Content.MainContentParagraphs = []string{normalizeText(article.Excerpt)}
				}
				if snap.Metadata.Author == "" {
					snap.Metadata.Author = article.Byline
				}
			}
		}
	}
	if summary == "" {
		summary = normalizeText(doc.Find("body").Text())
	}

	snap.Content.Summary = truncate(summary, models.MaxSummaryChars)
}

func (e *Extractor) extractMetadata(snap *models.PageSnapshot, doc *goquery.Document) {
	meta := func(selector string) string {
		content, _ := doc.Find(selector).First().Attr("content")
		return strings.TrimSpace(content)
	}

	snap.Metadata.Description = meta(`meta[name="description"]`)
	snap.Metadata.Keywords = meta(`meta[name="keywords"]`)
	if author := meta(`meta[name="author"]`); author != "" {
		snap.Metadata.Author = author
	}
	snap.Metadata.OGTitle = meta(`meta[property="og:title"]`)
	snap.Metadata.OGDescription = meta(`meta[property="og:description"]`)

	// Language detection over the summary; short texts give unreliable
	// results, so skip them.
	if len(snap.Content.Summary) >= 40 {
		if lang, ok := e.detector.DetectLanguageOf(snap.Content.Summary); ok {
			snap.Metadata.Language = strings.ToLower(lang.IsoCode639_1().String())
			snap.Metadata.LanguageConfidence = e.detector.ComputeLanguageConfidence(snap.Content.Summary, lang)
		}
	}
}

func (e *Extractor) extractPurchaseContext(snap *models.PageSnapshot, doc *goquery.Document) {
	pc := &snap.PurchaseContext

	seen := make(map[string]struct{})
	addPrice := func(raw string) {
		price := strings.TrimSpace(raw)
		if price == "" || len(pc.Prices) >= models.MaxPrices {
			return
		}
		if _, dup := seen[price]; dup {
			return
		}
		seen[price] = struct{}{}
		pc.Prices = append(pc.Prices, price)
	}

	// Marked-up prices first.
	doc.Find(strings.Join(priceSelectors, ", ")).Each(func(i int, s *goquery.Selection) {
		text := normalizeText(s.Text())
		for _, pat := range pricePatterns {
			if m := pat.FindString(text); m != "" {
				addPrice(m)
				return
			}
		}
	})

	bodyText := doc.Find("body").Text()

	// Regex fallback over the body text.
	if len(pc.Prices) == 0 {
		for _, pat := range pricePatterns {
			for _, m := range pat.FindAllString(bodyText, models.MaxPrices) {
				addPrice(m)
			}
		}
	}

	doc.Find(strings.Join(productSelectors, ", ")).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if text := normalizeText(s.Text()); text != "" {
			pc.ProductInfo = append(pc.ProductInfo, truncate(text, 120))
		}
		return len(pc.ProductInfo) < models.MaxProductInfo
	})

	lower := strings.ToLower(bodyText)

	for _, term := range financialTerms {
		if len(pc.FinancialTerms) >= models.MaxFinancialTerms {
			break
		}
		if strings.Contains(lower, term) {
			pc.FinancialTerms = append(pc.FinancialTerms, term)
		}
	}

	pc.HasFinancing = containsAny(lower, financingKeywords)
	pc.HasSubscription = containsAny(lower, subscriptionKeywords)
	pc.CreditCardDetected = strings.Contains(lower, "credit card")
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// normalizeText collapses a string to single-space-separated lines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s // byte length bounds rune length
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
