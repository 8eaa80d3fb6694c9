package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var clapCount = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*([km]?)$`)

// ParseClaps converts a displayed clap count such as "1.2K", "3M" or "1,204"
// to an integer. Anything unparseable is 0.
func ParseClaps(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	m := clapCount.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		n *= 1_000
	case "M":
		n *= 1_000_000
	}
	return int64(n + 0.5)
}

var clapPatterns = []Pattern{
	{Name: "labelled", Re: regexp.MustCompile(`(?i)(\d[\d.,]*\s*[km]?)\s+claps?\b`)},
}

// clapField finds a clap count on a card: the clap control's label, a
// dedicated count element, then "N claps" wording in the text.
var clapField = []FieldFunc{
	func(s *goquery.Selection) string {
		v, _ := firstMatch(attrOf(`[aria-label*="clap"]`, "aria-label")(s), clapPatterns)
		return v
	},
	textOf(`[data-testid*="clapCount"]`),
	textOf(".clapCount"),
	matchIn(clapPatterns),
}
