// Package fuzzy corrects misspelled prefixes against the words of a dictionary.
package fuzzy

import (
	"strings"

	"github.com/bastiangx/dlbserve/internal/utils"
	"github.com/bastiangx/dlbserve/pkg/dlb"
)

const (
	// MaxEditDistance is the largest Levenshtein distance still corrected.
	MaxEditDistance = 2
	// MinInputLength is the shortest input, in runes, worth correcting.
	MinInputLength = 3
)

type candidate struct {
	word     string
	lower    []rune
	priority int
}

// Matcher handles approximate string matching
type Matcher struct {
	words []candidate
	exact map[string]string
}

// NewMatcher creates a matcher over the given dictionary entries
func NewMatcher(entries []dlb.Entry) *Matcher {
	m := &Matcher{
		words: make([]candidate, 0, len(entries)),
		exact: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		lower := strings.ToLower(e.Word)
		m.words = append(m.words, candidate{word: e.Word, lower: []rune(lower), priority: e.Priority})
		if prev, ok := m.exact[lower]; !ok || prev > e.Word {
			m.exact[lower] = e.Word
		}
	}
	return m
}

// Len returns the number of words the matcher knows.
func (m *Matcher) Len() int {
	return len(m.words)
}

// SuggestCorrection returns the most likely intended word for input and whether it
// differs from input. Preference: case-insensitive exact match, then fewest edits, then
// highest priority, then the shorter word. Candidates must share the first letter.
func (m *Matcher) SuggestCorrection(input string) (string, bool) {
	pattern := []rune(strings.ToLower(input))
	if len(pattern) < MinInputLength {
		return input, false
	}
	if word, ok := m.exact[string(pattern)]; ok {
		return word, word != input
	}

	var best *candidate
	bestDist := MaxEditDistance + 1
	for i := range m.words {
		c := &m.words[i]
		if len(c.lower) == 0 || !utils.EqualFold(c.lower[0], pattern[0]) {
			continue
		}
		if abs(len(c.lower)-len(pattern)) > MaxEditDistance {
			continue
		}
		d := levenshtein(pattern, c.lower)
		if d > MaxEditDistance {
			continue
		}
		if best == nil || better(c, d, best, bestDist) {
			best, bestDist = c, d
		}
	}
	if best == nil {
		return input, false
	}
	return best.word, true
}

func better(c *candidate, d int, best *candidate, bestDist int) bool {
	if d != bestDist {
		return d < bestDist
	}
	if c.priority != best.priority {
		return c.priority > best.priority
	}
	if len(c.lower) != len(best.lower) {
		return len(c.lower) < len(best.lower)
	}
	return c.word < best.word
}

// levenshteinDistance returns the rune edit distance between a and b
func levenshteinDistance(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
