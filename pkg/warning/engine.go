// Package warning decides when budget and credit-card advisories surface
// for a page, and tracks their per-page-load lifecycle: a warning kind is
// shown at most once per page load and never again after dismissal.
package warning

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spendguard/spendguard/models"
)

// Kind is one of the advisory categories the engine can surface.
type Kind string

const (
	KindBudget     Kind = "budget"
	KindCreditCard Kind = "creditCard"
)

// State is the lifecycle position of one warning kind within a page load.
type State int

const (
	StateIdle State = iota
	StateVisible
	StateDismissed
)

// DisplayTTL is how long a warning stays visible before it auto-dismisses.
const DisplayTTL = 10 * time.Second

// shoppingPaths are the URL path indicators that gate the budget warning.
var shoppingPaths = []string{
	"/cart", "/checkout", "/basket", "/bag", "/purchase",
	"/shop", "/store", "/product", "/item", "/order",
}

// budgetPhrases are the purchase-intent phrases, one of which must appear
// in the page text for the budget warning to fire.
var budgetPhrases = []string{
	"add to cart", "buy now", "checkout", "order total", "subtotal",
	"price", "budget",
}

// Session holds the dismissal state for one page load. It is reset on
// navigation and never persisted. All methods are safe for concurrent
// use; the HTTP server evaluates and dismisses from separate goroutines.
type Session struct {
	mu      sync.Mutex
	states  map[Kind]State
	shownAt map[Kind]time.Time
}

func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset returns every kind to idle, as on a fresh page load.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[Kind]State)
	s.shownAt = make(map[Kind]time.Time)
}

// State returns the current state for kind.
func (s *Session) State(k Kind) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[k]
}

// Dismiss marks a visible warning dismissed. Dismissal is terminal until
// Reset.
func (s *Session) Dismiss(k Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[k] == StateVisible {
		s.states[k] = StateDismissed
	}
}

// show transitions kind from idle to visible and reports whether the
// transition happened. The check and the write are one critical section,
// so a kind becomes visible at most once per page load even under
// concurrent evaluation.
func (s *Session) show(k Kind, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[k] != StateIdle {
		return false
	}
	s.states[k] = StateVisible
	s.shownAt[k] = now
	return true
}

// expireStale auto-dismisses warnings that have been visible longer than
// ttl.
func (s *Session) expireStale(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, st := range s.states {
		if st == StateVisible && now.Sub(s.shownAt[k]) >= ttl {
			s.states[k] = StateDismissed
		}
	}
}

// Engine evaluates snapshots against the trigger preconditions.
type Engine struct {
	allowedHosts []string
	displayTTL   time.Duration
	now          func() time.Time
}

func NewEngine(allowedHosts []string) *Engine {
	return &Engine{
		allowedHosts: allowedHosts,
		displayTTL:   DisplayTTL,
		now:          time.Now,
	}
}

// WithClock replaces the engine's clock. Tests use this to drive the
// display timeout.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Evaluate applies the trigger rules to snap and returns the warnings that
// became visible during this call. Re-evaluating an unchanged page returns
// nothing new: visible kinds stay visible, dismissed kinds stay dismissed.
func (e *Engine) Evaluate(sess *Session, snap *models.PageSnapshot) []models.WarningEvent {
	now := e.now()
	sess.expireStale(now, e.displayTTL)

	if e.hostAllowed(snap.URL) {
		return nil
	}

	text := strings.ToLower(snap.PlainText())

	var events []models.WarningEvent
	if e.budgetPrecondition(snap, text) && sess.show(KindBudget, now) {
		events = append(events, models.WarningEvent{
			Kind:    string(KindBudget),
			Message: "Budget alert: check your budget category before buying anything on this page.",
			Link:    "https://www.everydollar.com/app/budget",
		})
	}

	if e.creditCardPrecondition(snap, text) && sess.show(KindCreditCard, now) {
		events = append(events, models.WarningEvent{
			Kind:    string(KindCreditCard),
			Message: "Credit card mentioned on this page. Debt is not a tool; consider paying with money you already have.",
			Link:    "https://www.ramseysolutions.com/debt",
		})
	}

	return events
}

// budgetPrecondition requires a shopping URL, purchase-intent text, and at
// least one extracted price. Pages without price signals never trigger a
// budget warning no matter what the URL looks like.
func (e *Engine) budgetPrecondition(snap *models.PageSnapshot, lowerText string) bool {
	if len(snap.PurchaseContext.Prices) == 0 {
		return false
	}
	if !e.shoppingURL(snap.URL) {
		return false
	}
	for _, phrase := range budgetPhrases {
		if strings.Contains(lowerText, phrase) {
			return true
		}
	}
	return false
}

// creditCardPrecondition holds on any page whose text mentions a credit
// card, case-insensitively.
func (e *Engine) creditCardPrecondition(snap *models.PageSnapshot, lowerText string) bool {
	return snap.PurchaseContext.CreditCardDetected || strings.Contains(lowerText, "credit card")
}

func (e *Engine) shoppingURL(rawURL string) bool {
	path := strings.ToLower(rawURL)
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		path = strings.ToLower(parsed.Path)
	}
	for _, p := range shoppingPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// hostAllowed reports whether the URL's host is one of the operator's own
// domains, where warnings never fire.
func (e *Engine) hostAllowed(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range e.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
