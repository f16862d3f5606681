package classifier

import (
	"testing"

	"github.com/spendguard/spendguard/models"
)

func TestClassifyCartURLAlwaysWins(t *testing.T) {
	tests := []string{
		"https://shop.example.com/cart",
		"https://shop.example.com/cart?items=3",
		"https://example.com/store/checkout/step2",
		"https://EXAMPLE.com/CART",
	}
	for _, url := range tests {
		// Text screaming another category must not matter.
		got := Classify(url, "University courses", "enroll in a course and learn with a tutorial curriculum")
		if got != models.PageTypeShoppingCart {
			t.Errorf("Classify(%q) = %q, want shopping_cart", url, got)
		}
	}
}

func TestClassifyProductURL(t *testing.T) {
	got := Classify("https://shop.example.com/product/123", "", "")
	if got != models.PageTypeProductPage {
		t.Errorf("Classify() = %q, want product_page", got)
	}
}

func TestClassifyByKeywordVotes(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		title string
		text  string
		want  models.PageType
	}{
		{
			name: "shopping",
			url:  "https://deals.example.com",
			text: "huge sale today with free shipping on everything",
			want: models.PageTypeShopping,
		},
		{
			name: "financial",
			url:  "https://bank.example.com",
			text: "compare mortgage options and lock an interest rate",
			want: models.PageTypeFinancial,
		},
		{
			name:  "real estate",
			url:   "https://homes.example.com",
			title: "Property listing",
			text:  "3 bedrooms, 1800 sqft",
			want:  models.PageTypeRealEstate,
		},
		{
			name: "automotive",
			url:  "https://cars.example.com",
			text: "schedule a test drive at the dealership today",
			want: models.PageTypeAutomotive,
		},
		{
			name: "subscription",
			url:  "https://stream.example.com",
			text: "start your free trial, just 9.99 per month after",
			want: models.PageTypeSubscription,
		},
		{
			name: "education",
			url:  "https://school.example.com",
			text: "enroll in this course and earn a certificate",
			want: models.PageTypeEducation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.url, tt.title, tt.text); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifySingleHitIsNotEnough(t *testing.T) {
	got := Classify("https://example.com/blog", "", "I took my car to work today")
	if got != models.PageTypeGeneral {
		t.Errorf("Classify() = %q, want general for one keyword hit", got)
	}
}

func TestClassifyOrderBreaksTies(t *testing.T) {
	// Qualifies for both shopping and financial; shopping is checked first.
	got := Classify("https://example.com", "", "shop the store with your bank loan")
	if got != models.PageTypeShopping {
		t.Errorf("Classify() = %q, want shopping to win the tie", got)
	}
}

func TestClassifyEmpty(t *testing.T) {
	if got := Classify("", "", ""); got != models.PageTypeGeneral {
		t.Errorf("Classify() = %q, want general", got)
	}
}
