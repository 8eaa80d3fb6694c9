package extract

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New("https://medium.com")
	require.NoError(t, err)
	return e
}

func TestFirstAcceptedStopsAtFirstAcceptedStrategy(t *testing.T) {
	root := parse(`<ul><li class="a">one</li><li class="a">two</li><li class="b">three</li></ul>`)

	var consulted []string
	extract := func(name string) func(*goquery.Selection) (string, bool) {
		return func(s *goquery.Selection) (string, bool) {
			consulted = append(consulted, name)
			return s.Text(), true
		}
	}
	strategies := []Strategy[string]{
		{Rule: Rule{Name: "needs-three", Selector: "li.a", MinCount: 3}, Extract: extract("needs-three")},
		{Rule: Rule{Name: "b-only", Selector: "li.b", MinCount: 1}, Extract: extract("b-only")},
		{Rule: Rule{Name: "never", Selector: "li", MinCount: 1}, Extract: extract("never")},
	}

	out := FirstAccepted(root, strategies)
	assert.Equal(t, "b-only", out.Strategy)
	assert.Equal(t, []string{"three"}, out.Items)
	assert.NotContains(t, consulted, "never")
}

func TestFirstAcceptedSkipsRejectedElements(t *testing.T) {
	root := parse(`<p>keep</p><p>drop</p><p>keep too</p>`)
	st := Bind([]Rule{{Name: "p", Selector: "p", MinCount: 2}}, func(s *goquery.Selection) (string, bool) {
		return s.Text(), s.Text() != "drop"
	})

	out := FirstAccepted(root, st)
	assert.Equal(t, []string{"keep", "keep too"}, out.Items)
}

func TestFirstAcceptedNothingMatches(t *testing.T) {
	out := FirstAccepted(parse(`<div></div>`), Bind(ArticleRowRules, func(*goquery.Selection) (int, bool) { return 1, true }))
	assert.Empty(t, out.Strategy)
	assert.Empty(t, out.Items)
}

func TestFirstFieldAndFirstMatch(t *testing.T) {
	s := parse(`<div><h3>  Heading  </h3><span data-x="val"></span></div>`)

	assert.Equal(t, "Heading", firstField(s, textOf("h2"), textOf("h3")))
	assert.Equal(t, "val", firstField(s, attrOf("span", "data-missing"), attrOf("span", "data-x")))
	assert.Empty(t, firstField(s, textOf("h5")))

	v, name := firstMatch("Updated 3 days ago · 5 min read", datePatterns)
	assert.Equal(t, "Updated 3 days ago", v)
	assert.Equal(t, "updated", name)
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Published Mar 3, 2024 · 4 min read", "Mar 3, 2024"},
		{"Published on Jan 12", "Jan 12"},
		{"Updated about 2 hours ago", "Updated about 2 hours ago"},
		{"Draft · 7 min read", "7 min read"},
		{"no date here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDate(tt.text))
		})
	}
}

func TestParseClaps(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"42", 42},
		{"1,204", 1204},
		{"1.2K", 1200},
		{"3k", 3000},
		{"2.5M", 2500000},
		{"", 0},
		{"many", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClaps(tt.in))
		})
	}
}

func TestStatusFromName(t *testing.T) {
	assert.Equal(t, StatusDraft, StatusFromName("Drafts"))
	assert.Equal(t, StatusPublished, StatusFromName("public"))
	assert.Equal(t, StatusSubmission, StatusFromName("Submissions"))
	assert.Equal(t, StatusUnknown, StatusFromName("Responses"))
	assert.True(t, KnownStatusName("UNLISTED"))
	assert.False(t, KnownStatusName("Responses"))
}

func TestVisibleText(t *testing.T) {
	got := VisibleText(`<html><head><title>t</title><script>var x = 1;</script></head>
<body><h1>Title</h1><p>First <b>bold</b> line</p><style>p{}</style><div>Second</div></body></html>`)
	assert.Equal(t, "Title\nFirst bold line\nSecond", got)
}

func TestNewRejectsRelativeBase(t *testing.T) {
	_, err := New("/relative")
	assert.Error(t, err)
}
