package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ArticleRowRules locate one row per story on the account's stories page.
var ArticleRowRules = []Rule{
	{Name: "table-row", Selector: "table tbody tr", MinCount: 1},
	{Name: "aria-row", Selector: `[role="row"]`, MinCount: 1},
	{Name: "story-testid", Selector: `[data-testid*="story"]`, MinCount: 1},
	{Name: "legacy-stream", Selector: "div.js-streamItem, li", MinCount: 1},
}

var (
	editLinkID  = regexp.MustCompile(`/p/([0-9a-f]{8,16})/edit`)
	contentLink = regexp.MustCompile(`(?:-|/p/)[0-9a-f]{10,12}(?:[/?#]|$)`)
)

var rowTitleField = []FieldFunc{
	textOf("h2"),
	textOf("h3"),
	textOf("h4"),
	textOf(`[data-testid*="title"]`),
}

// Articles extracts story rows from a stories page. tabStatus is the status
// of the view the page shows, or StatusUnknown. Rows without a heading or a
// resolvable link are skipped; duplicates by URL keep the first row.
func (e *Extractor) Articles(rawHTML string, tabStatus ArticleStatus) Outcome[Article] {
	out := FirstAccepted(parse(rawHTML), Bind(ArticleRowRules, e.articleRow(tabStatus)))
	out.Items = dedupe(out.Items, func(a Article) string { return a.URL })
	return out
}

func (e *Extractor) articleRow(tabStatus ArticleStatus) func(*goquery.Selection) (Article, bool) {
	return func(row *goquery.Selection) (Article, bool) {
		title := firstField(row, rowTitleField...)
		if title == "" {
			return Article{}, false
		}
		link, fromEdit := e.articleURL(row)
		if link == "" {
			return Article{}, false
		}

		text := cleanText(row.Text())
		status := tabStatus
		switch {
		case status != "" && status != StatusUnknown:
		case fromEdit:
			status = StatusDraft
		default:
			status = statusFromText(text)
		}

		return Article{
			Title:       title,
			URL:         link,
			Status:      status,
			PublishedAt: ExtractDate(text),
			Tags:        rowTags(row),
		}, true
	}
}

// articleURL resolves a row's link: an edit link rebuilt into the canonical
// post URL, then a profile-scoped story link kept as is, then any link with
// a content id. fromEdit reports the first case.
func (e *Extractor) articleURL(row *goquery.Selection) (link string, fromEdit bool) {
	hrefs := row.Find("a[href]").Map(func(_ int, a *goquery.Selection) string {
		v, _ := a.Attr("href")
		return strings.TrimSpace(v)
	})

	for _, h := range hrefs {
		if m := editLinkID.FindStringSubmatch(h); m != nil {
			return e.BaseURL() + "/p/" + m[1], true
		}
	}
	for _, h := range hrefs {
		if isProfileStoryLink(h) {
			return e.resolve(h), false
		}
	}
	for _, h := range hrefs {
		if contentLink.MatchString(h) {
			return e.canonical(h), false
		}
	}
	return "", false
}

// isProfileStoryLink matches /@author/slug style links, not bare profiles.
func isProfileStoryLink(href string) bool {
	i := strings.Index(href, "/@")
	if i < 0 {
		return false
	}
	rest := strings.Trim(href[i+2:], "/")
	if q := strings.IndexAny(rest, "?#"); q >= 0 {
		rest = rest[:q]
	}
	return strings.Contains(rest, "/")
}

func rowTags(row *goquery.Selection) []string {
	var tags []string
	seen := map[string]bool{}
	row.Find(`a[href*="/tag/"]`).Each(func(_ int, a *goquery.Selection) {
		tag := cleanText(a.Text())
		if tag == "" {
			href, _ := a.Attr("href")
			tag = tagFromPath(href)
		}
		if tag != "" && !seen[strings.ToLower(tag)] {
			seen[strings.ToLower(tag)] = true
			tags = append(tags, tag)
		}
	})
	return tags
}

func tagFromPath(href string) string {
	_, after, ok := strings.Cut(href, "/tag/")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(after, "/?#"); i >= 0 {
		after = after[:i]
	}
	return after
}

// dedupe keeps the first record for each non-empty key.
func dedupe[T any](items []T, key func(T) string) []T {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		k := key(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}
