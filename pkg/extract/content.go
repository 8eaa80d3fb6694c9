package extract

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const (
	// MinParagraphLength is the shortest paragraph counted as body text.
	MinParagraphLength = 20

	// MinContainerLength is the shortest fallback text accepted.
	MinContainerLength = 200

	// ChunkSize is the window used to re-split fallback text.
	ChunkSize = 500

	// MinFullArticleLength is the length below which a page is suspected to
	// show only a preview.
	MinFullArticleLength = 1500

	// PreviewMarker prefixes partial content.
	PreviewMarker = "[PREVIEW ONLY: the full article requires a membership]"
)

// ContentRules are the paragraph families: modern, then classic, then generic.
var ContentRules = []Rule{
	{Name: "modern-body-paragraph", Selector: "p.pw-post-body-paragraph", MinCount: 2},
	{Name: "modern-story-content", Selector: `[data-testid="storyContent"] p`, MinCount: 2},
	{Name: "classic-graf", Selector: ".section-content p.graf", MinCount: 2},
	{Name: "classic-post-content", Selector: ".postArticle-content p", MinCount: 2},
	{Name: "generic-article", Selector: "article p", MinCount: 3},
	{Name: "generic-main", Selector: "main p", MinCount: 3},
	{Name: "generic-paragraph", Selector: "p", MinCount: 3},
}

// containerSelector lists the elements considered by the largest-container
// fallback.
const containerSelector = `body, article, main, [role="main"], section, div`

// PaywallKeywords mark a page whose body is withheld.
var PaywallKeywords = []string{
	"Member-only story",
	"This story is only available to members",
	"Become a member to read",
	"Upgrade to read",
	"Read the full story with a free account",
	"Sign up to read",
	"Get unlimited access",
	"paywall",
}

// PreviewKeywords mark a page that shows the first part of a story only.
// They are matched against the page text outside the extracted body.
var PreviewKeywords = []string{
	"Member-only story",
	"Continue reading",
	"Read the full story",
	"Sign up to continue",
}

var blockTag = regexp.MustCompile(`(?i)<(/?)(p|div|h[1-6]|li|br|section|article|blockquote|pre|tr|td|figcaption)\b`)

var strictPolicy = bluemonday.StrictPolicy()

func paragraph(s *goquery.Selection) (string, bool) {
	text := cleanText(s.Text())
	return text, utf8.RuneCountInString(text) >= MinParagraphLength
}

// Content extracts a story body from an article page. It never fails: pages
// with no body come back flagged or empty.
func (e *Extractor) Content(rawHTML string) Content {
	root := parse(rawHTML)
	res := Content{Title: firstField(root, textOf("h1"), attrOf(`meta[property="og:title"]`, "content"))}

	out := FirstAccepted(root, Bind(ContentRules, paragraph))
	if len(out.Items) > 0 {
		res.Text = strings.Join(out.Items, "\n\n")
		res.Strategy = out.Strategy
	} else if text := readableText(rawHTML); text != "" {
		res.Text = rechunk(text, ChunkSize)
		res.Strategy = "readability"
	} else if text := largestContainer(root); text != "" {
		res.Text = rechunk(text, ChunkSize)
		res.Strategy = "largest-container"
	}

	pageText := VisibleText(rawHTML)
	if res.Text == "" {
		if found := matchedKeywords(pageText, PaywallKeywords); len(found) > 0 {
			res.Paywalled = true
			res.Keywords = found
			res.Text = fmt.Sprintf("This article appears to be behind a paywall. Matched indicators: %s",
				strings.Join(found, ", "))
		}
		return res
	}

	if utf8.RuneCountInString(res.Text) < MinFullArticleLength {
		if found := matchedKeywords(outsideBody(pageText, res.Text), PreviewKeywords); len(found) > 0 {
			res.Preview = true
			res.Keywords = found
			res.Text = PreviewMarker + "\n\n" + res.Text
		}
	}
	return res
}

// readableText runs the readability algorithm and keeps its text only when
// it is long enough to be more than a title.
func readableText(rawHTML string) string {
	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return ""
	}
	var buf strings.Builder
	if err := article.RenderText(&buf); err != nil {
		return ""
	}
	text := cleanText(buf.String())
	if utf8.RuneCountInString(text) < MinContainerLength {
		return ""
	}
	return text
}

// largestContainer returns the tag-stripped text of the container with the
// most text.
func largestContainer(root *goquery.Selection) string {
	var best *goquery.Selection
	bestLen := 0
	root.Find(containerSelector).Each(func(_ int, s *goquery.Selection) {
		if n := len(cleanText(s.Text())); n > bestLen {
			best, bestLen = s, n
		}
	})
	if best == nil || bestLen < MinContainerLength {
		return ""
	}
	outer, err := goquery.OuterHtml(best)
	if err != nil {
		return ""
	}
	return stripTags(outer)
}

// stripTags removes all markup, keeping a space where a block element was.
func stripTags(raw string) string {
	spaced := blockTag.ReplaceAllString(raw, " <$1$2")
	return cleanText(html.UnescapeString(strictPolicy.Sanitize(spaced)))
}

// rechunk splits text into windows of about size characters at word
// boundaries, separated by blank lines.
func rechunk(text string, size int) string {
	words := strings.Fields(text)
	var chunks []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(w) > size {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return strings.Join(chunks, "\n\n")
}

// outsideBody returns pageText, whitespace-collapsed, with every blank-line
// separated block of body removed.
func outsideBody(pageText, body string) string {
	rest := strings.Join(strings.Fields(pageText), " ")
	for _, block := range strings.Split(body, "\n\n") {
		if block = strings.Join(strings.Fields(block), " "); block != "" {
			rest = strings.ReplaceAll(rest, block, " ")
		}
	}
	return rest
}

// matchedKeywords returns the keywords present in text, case-insensitively,
// in list order.
func matchedKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			found = append(found, k)
		}
	}
	return found
}
