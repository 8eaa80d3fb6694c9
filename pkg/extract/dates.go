package extract

import (
	"regexp"
	"strings"
)

const monthNames = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.?`

// datePatterns are tried in order against a row's text.
var datePatterns = []Pattern{
	{
		Name: "published",
		Re:   regexp.MustCompile(`(?i)\bPublished\s+(?:on\s+)?(` + monthNames + `\s+\d{1,2}(?:,\s*\d{4})?)`),
	},
	{
		Name: "updated",
		Re: regexp.MustCompile(`(?i)\b(Updated\s+(?:(?:about|over|almost)\s+)?` +
			`(?:(?:\d+|an?|one)\s+(?:second|minute|hour|day|week|month|year)s?\s+ago|just now|yesterday|today))`),
	},
	{
		Name:   "read-time",
		Re:     regexp.MustCompile(`(?i)\b(\d+)\s*min(?:ute)?s?\s+read\b`),
		Format: func(m []string) string { return m[1] + " min read" },
	},
}

// cardDatePatterns recognise the short dates shown on feed cards.
var cardDatePatterns = []Pattern{
	{Name: "absolute", Re: regexp.MustCompile(`\b(` + monthNames + `\s+\d{1,2}(?:,\s*\d{4})?)`)},
	{Name: "relative", Re: regexp.MustCompile(`(?i)\b(\d+[smhdw]\s+ago|\d+\s+(?:minute|hour|day|week)s?\s+ago|just now|yesterday)\b`)},
}

var readTimePatterns = datePatterns[2:]

// ExtractDate returns the first date-like fragment of text: an explicit
// publish date, then a relative update time, then a reading time. The empty
// string means none was found.
func ExtractDate(text string) string {
	v, _ := firstMatch(cleanText(text), datePatterns)
	return v
}

// ExtractReadTime returns "<N> min read" when text carries a reading time.
func ExtractReadTime(text string) string {
	v, _ := firstMatch(cleanText(text), readTimePatterns)
	return v
}

// rowStatusWords are checked against lower-cased row text.
var rowStatusWords = []struct {
	word   string
	status ArticleStatus
}{
	{"scheduled", StatusScheduled},
	{"unlisted", StatusUnlisted},
	{"submitted", StatusSubmission},
	{"submission", StatusSubmission},
	{"draft", StatusDraft},
	{"last edited", StatusDraft},
	{"published", StatusPublished},
}

func statusFromText(text string) ArticleStatus {
	lower := strings.ToLower(text)
	for _, w := range rowStatusWords {
		if strings.Contains(lower, w.word) {
			return w.status
		}
	}
	return StatusUnknown
}
