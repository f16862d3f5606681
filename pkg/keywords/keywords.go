// Package keywords provides stopword-aware word frequency analysis used by
// the classifier and the assistant's page-relevance heuristic.
package keywords

import (
	"sort"
	"strings"
)

// stopwords are high-frequency words ignored during analysis. Extend as
// needed.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "again": {}, "all": {}, "also": {},
	"an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"between": {}, "both": {}, "but": {}, "by": {},
	"can": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "else": {}, "even": {}, "ever": {}, "every": {},
	"few": {}, "for": {}, "from": {}, "further": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "her": {},
	"here": {}, "hers": {}, "him": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"just": {},
	"like": {}, "more": {}, "most": {}, "much": {}, "my": {},
	"no": {}, "not": {}, "now": {},
	"of": {}, "off": {}, "on": {}, "once": {}, "only": {}, "or": {},
	"other": {}, "our": {}, "out": {}, "over": {}, "own": {},
	"same": {}, "she": {}, "so": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "to": {}, "too": {},
	"under": {}, "until": {}, "up": {},
	"very": {},
	"was":  {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "why": {}, "will": {}, "with": {},
	"would": {},
	"you":   {}, "your": {}, "yours": {},
}

// Frequency returns a word frequency map for text, lowercased, punctuation
// trimmed, stopwords removed.
func Frequency(text string) map[string]int {
	words := strings.Fields(strings.ToLower(text))
	frequencies := make(map[string]int)

	for _, word := range words {
		word = strings.TrimFunc(word, func(r rune) bool {
			return ('a' > r || r > 'z') && ('0' > r || r > '9')
		})
		if _, stop := stopwords[word]; stop || word == "" {
			continue
		}
		frequencies[word]++
	}

	return frequencies
}

type wordCount struct {
	word  string
	count int
}

// TopN returns the n most frequent words in text, most frequent first.
func TopN(text string, n int) []string {
	frequencies := Frequency(text)

	counts := make([]wordCount, 0, len(frequencies))
	for w, c := range frequencies {
		counts = append(counts, wordCount{w, c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word // stable output
	})

	if n > len(counts) {
		n = len(counts)
	}
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = counts[i].word
	}
	return top
}

// Overlaps reports whether query shares at least one significant word
// (longer than minLen) with reference.
func Overlaps(query, reference string, minLen int) bool {
	ref := Frequency(reference)
	for word := range Frequency(query) {
		if len(word) <= minLen {
			continue
		}
		if _, ok := ref[word]; ok {
			return true
		}
	}
	return false
}
