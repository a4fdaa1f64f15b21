package openai

import (
	"regexp"
	"strings"
	"unicode"
)

var boldMarkers = regexp.MustCompile(`\*\*(.*?)\*\*`)

// scrubString removes punctuation and trims whitespace from text.
func scrubString(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,!?;:\"'()[]{}—–", r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// isLetter returns true if the rune may start an unquoted JSON key.
func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

// stripCodeFence removes markdown code fences models sometimes wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// splitLines returns the trimmed, non-empty lines of s.
func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// cleanEvaluation flattens model feedback into a single line of plain text:
// literal and escaped newlines become spaces, escaped quotes are unescaped,
// **bold** markers are dropped and whitespace runs collapse.
func cleanEvaluation(s string) string {
	s = strings.ReplaceAll(s, `\n`, " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = boldMarkers.ReplaceAllString(s, "$1")
	return strings.Join(strings.Fields(s), " ")
}

// cleanWords trims, drops blanks and case-insensitive repeats, and caps the
// result at limit.
func cleanWords(words []string, limit int) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, min(len(words), limit))
	for _, w := range words {
		w = scrubString(w)
		if w == "" {
			continue
		}
		key := strings.ToLower(w)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}
