package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CardRules locate story previews on feeds, search results and lists.
var CardRules = []Rule{
	{Name: "post-preview", Selector: `[data-testid="post-preview"]`, MinCount: 1},
	{Name: "article", Selector: "article", MinCount: 1},
	{Name: "legacy-post", Selector: "div.postArticle", MinCount: 1},
	{Name: "legacy-stream", Selector: "div.streamItem", MinCount: 1},
}

var cardTitleField = []FieldFunc{
	textOf("h2"),
	textOf("h3"),
	textOf(`[data-testid*="title"]`),
	textOf(".graf--title"),
}

var cardAuthorField = []FieldFunc{
	textOf(`[data-testid="authorName"]`),
	textOf(`a[rel="author"]`),
	textOf(`a[data-action="show-user-card"]`),
	textOf(`a[href*="/@"] p`),
	func(s *goquery.Selection) string {
		var out string
		s.Find(`a[href*="/@"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if a.Find("h2, h3").Length() > 0 {
				return true
			}
			out = cleanText(a.Text())
			return out == ""
		})
		return out
	},
}

var cardDateField = []FieldFunc{
	textOf(`[data-testid="storyPublishDate"]`),
	attrOf("time[datetime]", "datetime"),
	matchIn(cardDatePatterns),
}

// Cards extracts story previews. A card needs a title and a link; cards
// repeating an earlier URL are dropped.
func (e *Extractor) Cards(rawHTML string) Outcome[FeedCard] {
	out := FirstAccepted(parse(rawHTML), Bind(CardRules, e.card))
	out.Items = dedupe(out.Items, func(c FeedCard) string { return c.URL })
	return out
}

func (e *Extractor) card(s *goquery.Selection) (FeedCard, bool) {
	title := firstField(s, cardTitleField...)
	if title == "" {
		return FeedCard{}, false
	}
	link := e.canonical(firstField(s, e.cardLinkField()...))
	if link == "" {
		return FeedCard{}, false
	}

	text := cleanText(s.Text())
	return FeedCard{
		Title:    title,
		Excerpt:  firstField(s, cardExcerptField(title)...),
		URL:      link,
		Author:   firstField(s, cardAuthorField...),
		Date:     firstField(s, cardDateField...),
		ReadTime: ExtractReadTime(text),
		Claps:    ParseClaps(firstField(s, clapField...)),
		Image:    firstField(s, cardImage, attrOf("img[src]", "src")),
	}, true
}

func (e *Extractor) cardLinkField() []FieldFunc {
	return []FieldFunc{
		attrOf("a:has(h2)", "href"),
		attrOf("a:has(h3)", "href"),
		attrOf(`a[data-action="open-post"]`, "href"),
		func(s *goquery.Selection) string {
			var out string
			s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href, _ := a.Attr("href")
				if contentLink.MatchString(href) {
					out = href
				}
				return out == ""
			})
			return out
		},
	}
}

// cardExcerptField skips text equal to the title so a repeated heading is
// not reported as the excerpt.
func cardExcerptField(title string) []FieldFunc {
	notTitle := func(fn FieldFunc) FieldFunc {
		return func(s *goquery.Selection) string {
			if v := fn(s); v != title {
				return v
			}
			return ""
		}
	}
	return []FieldFunc{
		textOf(`[data-testid*="description"]`),
		textOf(".graf--subtitle"),
		textOf("p.postArticle-subtitle"),
		notTitle(textOf("h3")),
		func(s *goquery.Selection) string {
			var out string
			s.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
				if t := cleanText(p.Text()); t != title && len(t) >= MinParagraphLength {
					out = t
				}
				return out == ""
			})
			return out
		},
	}
}

// cardImage picks the first image that is not a small avatar.
func cardImage(s *goquery.Selection) string {
	var out string
	s.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if w, ok := img.Attr("width"); ok {
			if n, err := strconv.Atoi(strings.TrimSuffix(w, "px")); err == nil && n <= 64 {
				return true
			}
		}
		src, _ := img.Attr("src")
		out = strings.TrimSpace(src)
		return out == ""
	})
	return out
}
