package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadingListRules locate the account's lists on its lists page.
var ReadingListRules = []Rule{
	{Name: "reading-list-testid", Selector: `[data-testid="readingList"]`, MinCount: 1},
	{Name: "list-article", Selector: `article:has(a[href*="/list/"])`, MinCount: 1},
	{Name: "list-link", Selector: `a[href*="/list/"]`, MinCount: 1},
}

var listItemCount = regexp.MustCompile(`(?i)\b(\d[\d,]*)\s+(?:stories|story|items?)\b`)

// ReadingLists extracts the account's lists. A list is identified by the
// path segment after /list/; duplicates by ID keep the first.
func (e *Extractor) ReadingLists(rawHTML string) Outcome[ReadingList] {
	out := FirstAccepted(parse(rawHTML), Bind(ReadingListRules, e.readingList))
	out.Items = dedupe(out.Items, func(l ReadingList) string { return l.ID })
	return out
}

func (e *Extractor) readingList(s *goquery.Selection) (ReadingList, bool) {
	link := s
	if goquery.NodeName(s) != "a" {
		link = s.Find(`a[href*="/list/"]`).First()
	}
	href, _ := link.Attr("href")
	id := ListID(href)
	if id == "" {
		return ReadingList{}, false
	}

	name := firstField(s, textOf("h2"), textOf("h3"), textOf("h4"))
	if name == "" {
		name = cleanText(link.Text())
	}
	if name == "" {
		name = id
	}

	text := cleanText(s.Text())
	count := 0
	if m := listItemCount.FindStringSubmatch(text); m != nil {
		count, _ = strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	}

	var desc string
	s.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		t := cleanText(p.Text())
		if t != "" && t != name && !listItemCount.MatchString(t) {
			desc = t
		}
		return desc == ""
	})

	return ReadingList{
		ID:          id,
		Name:        name,
		Description: desc,
		ItemCount:   count,
		URL:         e.canonical(href),
	}, true
}

// ListID returns the path segment following /list/ in href, or "".
func ListID(href string) string {
	_, after, ok := strings.Cut(href, "/list/")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(after, "/?#"); i >= 0 {
		after = after[:i]
	}
	return after
}
