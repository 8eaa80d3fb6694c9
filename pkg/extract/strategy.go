package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule is the data half of a strategy: where to look and how many records
// must come out before the strategy is accepted. Rule tables are ordered
// most specific and modern first, most generic and legacy last.
type Rule struct {
	Name     string
	Selector string
	MinCount int
}

// Strategy pairs a Rule with the function that turns one matched element into
// a record. Extract returns false to skip an element.
type Strategy[T any] struct {
	Rule
	Extract func(s *goquery.Selection) (T, bool)
}

// Outcome is what FirstAccepted produced and which strategy produced it.
type Outcome[T any] struct {
	Strategy string
	Items    []T
}

// Bind attaches one extractor to every rule in a table.
func Bind[T any](rules []Rule, extract func(s *goquery.Selection) (T, bool)) []Strategy[T] {
	out := make([]Strategy[T], len(rules))
	for i, r := range rules {
		out[i] = Strategy[T]{Rule: r, Extract: extract}
	}
	return out
}

// FirstAccepted tries strategies in order and returns the records of the
// first one that yields at least MinCount records (minimum 1). Later
// strategies are not consulted once one is accepted. An empty Outcome means
// no strategy matched.
func FirstAccepted[T any](root *goquery.Selection, strategies []Strategy[T]) Outcome[T] {
	for _, st := range strategies {
		var items []T
		root.Find(st.Selector).Each(func(_ int, s *goquery.Selection) {
			if item, ok := st.Extract(s); ok {
				items = append(items, item)
			}
		})

		min := st.MinCount
		if min < 1 {
			min = 1
		}
		if len(items) >= min {
			return Outcome[T]{Strategy: st.Name, Items: items}
		}
	}
	return Outcome[T]{}
}

// FieldFunc extracts one field from an element, returning "" when absent.
type FieldFunc func(s *goquery.Selection) string

// firstField returns the first non-empty value among fns.
func firstField(s *goquery.Selection, fns ...FieldFunc) string {
	for _, fn := range fns {
		if v := fn(s); v != "" {
			return v
		}
	}
	return ""
}

// textOf reads the normalized text of the first descendant matching selector.
func textOf(selector string) FieldFunc {
	return func(s *goquery.Selection) string {
		var out string
		s.Find(selector).EachWithBreak(func(_ int, m *goquery.Selection) bool {
			out = cleanText(m.Text())
			return out == ""
		})
		return out
	}
}

// attrOf reads an attribute of the first descendant matching selector.
func attrOf(selector, attr string) FieldFunc {
	return func(s *goquery.Selection) string {
		var out string
		s.Find(selector).EachWithBreak(func(_ int, m *goquery.Selection) bool {
			v, _ := m.Attr(attr)
			out = strings.TrimSpace(v)
			return out == ""
		})
		return out
	}
}

// Pattern is a regular expression strategy over plain text. Format builds
// the field value from the submatches; nil means the first group.
type Pattern struct {
	Name   string
	Re     *regexp.Regexp
	Format func(m []string) string
}

// firstMatch returns the value and name of the first pattern matching text.
func firstMatch(text string, patterns []Pattern) (string, string) {
	for _, p := range patterns {
		m := p.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if p.Format != nil {
			return p.Format(m), p.Name
		}
		if len(m) > 1 {
			return strings.TrimSpace(m[1]), p.Name
		}
		return strings.TrimSpace(m[0]), p.Name
	}
	return "", ""
}

// matchIn applies patterns to the element's text.
func matchIn(patterns []Pattern) FieldFunc {
	return func(s *goquery.Selection) string {
		v, _ := firstMatch(cleanText(s.Text()), patterns)
		return v
	}
}

var spaceRun = regexp.MustCompile(`\s+`)

// cleanText collapses whitespace runs and trims.
func cleanText(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
