// This file turns the user's naming template into a precise regular
// expression for matching one specific issue against local filenames.

package collection

import (
	"log"
	"regexp"
	"strings"

	"github.com/longbox-dev/longbox/internal/util"
)

// Template placeholders understood by CompilePattern:
//   {series_name}  - the series name (flexible whitespace/punctuation/case)
//   {issue_number} - the issue number (with optional leading zeros)
//   {year}         - any 4-digit year

// Connector words that filenames frequently drop ("Magik Colossus" for
// "Magik and Colossus").
var optionalWords = map[string]bool{
	"and": true, "the": true, "of": true, "or": true, "vs": true, "versus": true,
}

// punctuationRun collapses separator punctuation so "Nemesis: Forever",
// "Nemesis - Forever" and "Nemesis Forever" all normalize the same way.
var punctuationRun = regexp.MustCompile(`[\s\-_:;,\.]+`)

// flexibleSep matches the separator runs seen between filename components.
const flexibleSep = `[\s\-_:'\.&]*`

// CompilePattern converts a naming template into a compiled case-insensitive
// matcher for the given series and issue. It returns nil when the template or
// series name is missing or the resulting expression does not compile; the
// caller falls through to the next matching tier, so compilation failures are
// never surfaced as errors.
func CompilePattern(template, seriesName, issueNumber string) *regexp.Regexp {
	if template == "" || seriesName == "" {
		return nil
	}

	// Protect the placeholders behind sentinels before escaping, so literal
	// parentheses in the template (e.g. around {year}) can be escaped without
	// destroying the markers.
	pattern := template
	pattern = strings.ReplaceAll(pattern, "{series_name}", "<<<SERIES>>>")
	pattern = strings.ReplaceAll(pattern, "{issue_number}", "<<<ISSUE>>>")
	pattern = strings.ReplaceAll(pattern, "{year}", "<<<YEAR>>>")
	pattern = strings.ReplaceAll(pattern, "(", `\(`)
	pattern = strings.ReplaceAll(pattern, ")", `\)`)

	// A leading "The " becomes optional: the catalog may say "The Ultimates"
	// while files on disk say "Ultimates".
	workingName := seriesName
	thePrefix := ""
	if strings.HasPrefix(strings.ToLower(seriesName), "the ") {
		thePrefix = `(?:The[\s\-_]+)?`
		workingName = seriesName[4:]
	}

	// Apostrophes and ampersands are dropped entirely ("Night's" -> "Nights",
	// "Black & White" -> "Black White"), then separator punctuation collapses
	// to single spaces.
	tempName := strings.NewReplacer("'", "", "&", "").Replace(workingName)
	normalizedName := strings.TrimSpace(punctuationRun.ReplaceAllString(tempName, " "))

	words := strings.Fields(normalizedName)
	var parts []string
	for i, word := range words {
		escaped := regexp.QuoteMeta(word)
		if optionalWords[strings.ToLower(word)] {
			parts = append(parts, "(?:"+escaped+flexibleSep+")?")
		} else {
			parts = append(parts, escaped)
			if i < len(words)-1 {
				parts = append(parts, flexibleSep)
			}
		}
	}
	seriesPattern := thePrefix + strings.Join(parts, "")

	// "1", "01" and "001" all match the same issue.
	issueClean := util.NormalizeIssueNumber(issueNumber)
	issuePattern := "0*" + regexp.QuoteMeta(issueClean)

	pattern = strings.ReplaceAll(pattern, "<<<SERIES>>>", "(?:"+seriesPattern+")")
	pattern = strings.ReplaceAll(pattern, "<<<ISSUE>>>", "("+issuePattern+")")
	pattern = strings.ReplaceAll(pattern, "<<<YEAR>>>", `\d{4}`)

	// Loosen the space between adjacent groups into a separator class so
	// trailing punctuation before the space still matches ("K.O. 003").
	pattern = strings.ReplaceAll(pattern, ") (", `)[\s\-_:'\.&]+(`)

	// Only supported archive files can ever match.
	pattern += `.*\.(?:cbz|cbr|zip|rar)$`

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		log.Printf("Failed to compile filename pattern %q: %v", template, err)
		return nil
	}
	return re
}
