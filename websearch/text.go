package websearch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stop words to filter out of search result text
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "its": true, "can": true, "more": true,
	"title": true, "description": true, "url": true, "http": true, "https": true,
	"www": true, "com": true,
	"그리고": true, "그러나": true, "하지만": true, "또는": true, "있는": true,
	"있다": true, "없는": true, "하는": true, "한다": true, "것이": true, "것은": true,
	"이": true, "그": true, "저": true, "및": true, "등": true,
}

// resultLabels are the field prefixes search tools put in front of result lines.
var resultLabels = []string{"Title:", "Description:"}

// tokenizeAndFilter splits text into words, lowercases them, and removes
// stop words, numbers and tokens shorter than minLen runes.
func tokenizeAndFilter(text string, minLen int) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(word)
		if utf8.RuneCountInString(cleaned) < minLen || stopWords[cleaned] || isNumeric(cleaned) {
			continue
		}
		filtered = append(filtered, cleaned)
	}

	return filtered
}

// resultText strips URL lines and field labels from a tool answer.
func resultText(answer string) string {
	var b strings.Builder
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "URL:") {
			continue
		}
		for _, label := range resultLabels {
			line = strings.TrimPrefix(line, label)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// rankCandidates orders tokens by frequency, breaking ties by first
// appearance, and skips any token in exclude.
func rankCandidates(tokens []string, exclude map[string]bool) []string {
	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if exclude[tok] {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	// Stable insertion sort keeps first-appearance order among equal counts
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j]] > counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
