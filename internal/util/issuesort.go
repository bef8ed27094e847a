package util

import (
	"regexp"
	"strconv"
	"strings"
)

// Issue numbers are matched and cached as strings. Comparison first strips
// leading zeros so "1", "01" and "001" collapse to the same key, and ordering
// understands decimal numbers ("2.5" sorts between "2" and "3").

var issueTokenizer = regexp.MustCompile(`(\d+(?:\.\d+)?|\D+)`)

type issueToken struct {
	str   string
	num   float64
	isNum bool
}

// NormalizeIssueNumber strips surrounding whitespace and leading zeros from an
// issue number. An all-zero number normalizes to "0".
func NormalizeIssueNumber(n string) string {
	n = strings.TrimLeft(strings.TrimSpace(n), "0")
	if n == "" {
		return "0"
	}
	return n
}

func tokenizeIssueNumber(s string) []issueToken {
	parts := issueTokenizer.FindAllString(s, -1)
	tokens := make([]issueToken, len(parts))
	for i, p := range parts {
		num, err := strconv.ParseFloat(p, 64)
		if err == nil {
			tokens[i] = issueToken{num: num, isNum: true}
		} else {
			tokens[i] = issueToken{str: strings.ToLower(p), isNum: false}
		}
	}
	return tokens
}

// IssueNumberLess compares two issue numbers in natural reading order.
// Numeric runs compare as numbers, everything else compares as lowercase text,
// and numbers sort before text at the same position.
func IssueNumberLess(a, b string) bool {
	t1 := tokenizeIssueNumber(NormalizeIssueNumber(a))
	t2 := tokenizeIssueNumber(NormalizeIssueNumber(b))
	minLen := min(len(t1), len(t2))

	for i := 0; i < minLen; i++ {
		if t1[i].isNum && !t2[i].isNum {
			return true
		}
		if !t1[i].isNum && t2[i].isNum {
			return false
		}

		if t1[i].isNum {
			if t1[i].num != t2[i].num {
				return t1[i].num < t2[i].num
			}
		} else {
			if t1[i].str != t2[i].str {
				return t1[i].str < t2[i].str
			}
		}
	}

	return len(t1) < len(t2)
}
