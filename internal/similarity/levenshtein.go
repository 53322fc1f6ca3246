package similarity

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// levenshtein returns the edit distance between a and b, counted in runes.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// NameSimilarity returns 1 - distance/maxLen over the lower-cased names.
// Two empty names are a perfect match.
func NameSimilarity(a, b string) float64 {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	maxLen := max(utf8.RuneCountInString(la), utf8.RuneCountInString(lb))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(la, lb))/float64(maxLen)
}

// ExtractDomain normalizes a website to its hostname without a leading "www.".
// Bare hosts are treated as https URLs; anything unparseable falls back to
// the lower-cased input.
func ExtractDomain(website string) string {
	raw := strings.TrimSpace(website)
	candidate := raw
	if !strings.HasPrefix(strings.ToLower(candidate), "http") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(raw)
	}

	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
