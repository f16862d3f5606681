// Package classifier assigns a PageType to a page from its URL and
// extracted text using keyword-overlap voting.
package classifier

import (
	"strings"

	"github.com/spendguard/spendguard/models"
)

// category pairs a page type with its vote keywords. Categories are
// checked in slice order: the first one reaching the vote threshold wins.
// The order is a policy choice (commerce before finance before the rest),
// not an accident of map iteration.
type category struct {
	pageType models.PageType
	keywords []string
}

var categories = []category{
	{models.PageTypeShopping, []string{"shop", "store", "buy", "sale", "deal", "add to cart", "checkout", "free shipping"}},
	{models.PageTypeFinancial, []string{"bank", "loan", "mortgage", "invest", "credit", "finance", "budget", "interest rate", "savings"}},
	{models.PageTypeRealEstate, []string{"real estate", "home for sale", "listing", "realtor", "property", "sqft", "bedrooms", "mls"}},
	{models.PageTypeAutomotive, []string{"car", "vehicle", "dealer", "dealership", "mileage", "test drive", "msrp", "trade-in"}},
	{models.PageTypeSubscription, []string{"subscription", "subscribe", "plan", "billing", "free trial", "per month", "premium"}},
	{models.PageTypeEducation, []string{"course", "learn", "tutorial", "lesson", "curriculum", "enroll", "certificate", "university"}},
}

// voteThreshold is the number of distinct keyword hits a category needs.
const voteThreshold = 2

// cartPaths and productPaths short-circuit classification before any
// keyword voting happens.
var cartPaths = []string{"/cart", "/checkout", "/order"}
var productPaths = []string{"/product", "/item", "/p/"}

// Classify maps a URL plus extracted text to a page type. URL checks are
// plain substring matches on the lowercased URL, so they win regardless of
// what the page text says.
func Classify(rawURL, title, text string) models.PageType {
	lowerURL := strings.ToLower(rawURL)

	for _, p := range cartPaths {
		if strings.Contains(lowerURL, p) {
			return models.PageTypeShoppingCart
		}
	}
	for _, p := range productPaths {
		if strings.Contains(lowerURL, p) {
			return models.PageTypeProductPage
		}
	}

	haystack := strings.ToLower(rawURL + " " + title + " " + text)

	for _, cat := range categories {
		hits := 0
		for _, kw := range cat.keywords {
			if strings.Contains(haystack, kw) {
				hits++
				if hits >= voteThreshold {
					break
				}
			}
		}
		if hits >= voteThreshold {
			return cat.pageType
		}
	}

	return models.PageTypeGeneral
}
