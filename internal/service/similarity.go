package service

import (
	"math"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// ratio is the edit similarity of a and b on a 0..100 scale: the Levenshtein
// distance normalized by the longer string.
func ratio(a, b string) int {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// partialRatio scores the shorter string against every equally long window of
// the longer one and keeps the best result.
func partialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == len(rb) {
		return ratio(string(ra), string(rb))
	}

	short := string(ra)
	best := 0
	for i := 0; i+len(ra) <= len(rb); i++ {
		if r := ratio(short, string(rb[i:i+len(ra)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// tokenize lowercases text and splits it into word tokens, keeping hyphens and
// apostrophes inside words.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}

// keywordSimilarity is the best similarity between keyword and any run of up
// to n consecutive query tokens, where n is the keyword's word count. Runs
// shorter than the keyword are compared whole so that a short token cannot
// score as a perfect partial match of a longer keyword.
func keywordSimilarity(keyword string, tokens []string) int {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	width := len(strings.Fields(keyword))
	if width == 0 {
		return 0
	}
	kwLen := len([]rune(keyword))

	best := 0
	for size := 1; size <= width; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			candidate := strings.Join(tokens[i:i+size], " ")
			var score int
			if len([]rune(candidate)) < kwLen {
				score = ratio(keyword, candidate)
			} else {
				score = partialRatio(keyword, candidate)
			}
			if score > best {
				best = score
			}
		}
	}
	return best
}
