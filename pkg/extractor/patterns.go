package extractor

import "regexp"

// Currency patterns tried in order. The first group of selectors in
// priceSelectors is tried before falling back to a regex scan of the body
// text, mirroring how commerce sites mark up prices inconsistently.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+\.?\d*`),
	regexp.MustCompile(`[£€][\d,]+\.?\d*`),
	regexp.MustCompile(`(?i)(?:USD|EUR|GBP)\s?[\d,]+\.?\d*`),
	regexp.MustCompile(`[\d,]+\.?\d*\s?(?:USD|EUR|GBP|€|£)`),
}

// priceSelectors cover the common e-commerce price markup (standard
// classes, Shopify, WooCommerce, data attributes).
var priceSelectors = []string{
	".price",
	"[data-price]",
	".product-price",
	".regular-price",
	`span[itemprop="price"]`,
	".amount",
	".current-price",
	".sales-price",
	".money",
	".price__regular",
	".price__sale",
	".price-item",
	".woocommerce-Price-amount",
	`[data-testid*="price"]`,
	`[aria-label*="price"]`,
}

// productSelectors identify the product name on a product page.
var productSelectors = []string{
	`[itemprop="name"]`,
	".product-title",
	".product-name",
	".product__title",
	`h1[class*="product"]`,
}

// financialTerms are the advisory-relevant phrases collected into the
// snapshot, matched case-insensitively.
var financialTerms = []string{
	"loan",
	"mortgage",
	"interest rate",
	"apr",
	"refinance",
	"credit score",
	"down payment",
	"investment",
	"insurance",
	"debt",
}

var financingKeywords = []string{
	"financing",
	"finance it",
	"monthly payments",
	"installments",
	"pay over time",
	"affirm",
	"klarna",
	"afterpay",
	"0% apr",
}

var subscriptionKeywords = []string{
	"subscription",
	"subscribe",
	"/month",
	"per month",
	"/mo",
	"monthly plan",
	"free trial",
	"billed monthly",
	"billed annually",
}
