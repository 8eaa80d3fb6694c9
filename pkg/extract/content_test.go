package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentJoinsParagraphs(t *testing.T) {
	e := newTestExtractor(t)
	page := `<html><body><h1>A Title</h1><article>
<p>The first paragraph is comfortably long enough.</p>
<p>short</p>
<p>The second paragraph also clears the threshold.</p>
<p>The third paragraph rounds out the body text.</p>
</article></body></html>`

	got := e.Content(page)
	assert.Equal(t, "A Title", got.Title)
	assert.Equal(t, "generic-article", got.Strategy)
	assert.Equal(t, "The first paragraph is comfortably long enough.\n\n"+
		"The second paragraph also clears the threshold.\n\n"+
		"The third paragraph rounds out the body text.", got.Text)
	assert.False(t, got.Paywalled)
	assert.False(t, got.Preview)
}

func TestContentParagraphsWithoutWrapper(t *testing.T) {
	e := newTestExtractor(t)
	page := `<html><body>
<p>The opening paragraph sits straight under the body element.</p>
<p>A second paragraph follows with plenty of words in it.</p>
<p>The closing paragraph also clears the length threshold.</p>
</body></html>`

	got := e.Content(page)
	assert.Equal(t, "generic-paragraph", got.Strategy)
	assert.Equal(t, "The opening paragraph sits straight under the body element.\n\n"+
		"A second paragraph follows with plenty of words in it.\n\n"+
		"The closing paragraph also clears the length threshold.", got.Text)
}

func TestContentPrefersModernFamily(t *testing.T) {
	e := newTestExtractor(t)
	page := `<article>
<p class="pw-post-body-paragraph">Modern paragraph number one of the story.</p>
<p class="pw-post-body-paragraph">Modern paragraph number two of the story.</p>
<p>Some generic paragraph that should not be used.</p>
</article>`

	got := e.Content(page)
	assert.Equal(t, "modern-body-paragraph", got.Strategy)
	assert.NotContains(t, got.Text, "generic paragraph")
}

func TestContentPaywalled(t *testing.T) {
	e := newTestExtractor(t)
	page := `<html><body><div>Member-only story</div><button>Upgrade to read</button></body></html>`

	got := e.Content(page)
	assert.True(t, got.Paywalled)
	assert.False(t, got.Preview)
	require.NotEmpty(t, got.Keywords)
	assert.Contains(t, got.Keywords, "Member-only story")
	assert.Contains(t, got.Text, "Member-only story")
}

func TestContentEmptyWithoutPaywallWording(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Content(`<html><body><div>Nothing here</div></body></html>`)
	assert.Empty(t, got.Text)
	assert.False(t, got.Paywalled)
}

func TestContentPreviewKeepsPartialText(t *testing.T) {
	e := newTestExtractor(t)
	page := `<html><body><div>Member-only story</div><article>
<p class="pw-post-body-paragraph">Only the opening paragraph is visible here.</p>
<p class="pw-post-body-paragraph">And a second one before the fade out.</p>
</article><a href="/m/signin">Sign up to continue</a></body></html>`

	got := e.Content(page)
	assert.True(t, got.Preview)
	assert.False(t, got.Paywalled)
	assert.True(t, strings.HasPrefix(got.Text, PreviewMarker))
	assert.Contains(t, got.Text, "Only the opening paragraph is visible here.")
	assert.Contains(t, got.Text, "And a second one before the fade out.")
	assert.Contains(t, got.Keywords, "Sign up to continue")
}

func TestContentShortFullStoryIsNotPreview(t *testing.T) {
	e := newTestExtractor(t)
	page := `<html><body><h1>Short Story</h1><article>
<p class="pw-post-body-paragraph">A complete story can be short and still preview nothing.</p>
<p class="pw-post-body-paragraph">Its last paragraph says Continue reading in the body text.</p>
</article><footer>Read more from The Publication</footer></body></html>`

	got := e.Content(page)
	assert.False(t, got.Preview)
	assert.Empty(t, got.Keywords)
	assert.False(t, strings.HasPrefix(got.Text, PreviewMarker))
	assert.Contains(t, got.Text, "Continue reading in the body text.")
}

func TestOutsideBody(t *testing.T) {
	page := "Header\nFirst  paragraph here.\nSecond one.\nFooter"
	got := outsideBody(page, "First paragraph here.\n\nSecond one.")
	assert.Equal(t, []string{"Header", "Footer"}, strings.Fields(got))
}

func TestContentLongTextIsNotPreview(t *testing.T) {
	e := newTestExtractor(t)
	para := "<p>" + strings.Repeat("Long body text keeps going. ", 20) + "</p>"
	page := "<div>Member-only story</div><article>" + strings.Repeat(para, 3) + "</article>"

	got := e.Content(page)
	assert.False(t, got.Preview)
	assert.NotEmpty(t, got.Text)
}

func TestLargestContainerFallback(t *testing.T) {
	body := strings.Repeat("word ", 150)
	root := parse(`<div><section><span>` + body + `</span></section><div>tiny</div></div>`)

	got := largestContainer(root)
	assert.Equal(t, strings.TrimSpace(body)+" tiny", got, "the outermost container holds the most text")
}

func TestStripTagsKeepsBlockBoundaries(t *testing.T) {
	got := stripTags(`<div><p>One &amp; two</p><p>three</p><script>x()</script></div>`)
	assert.Equal(t, "One & two three", got)
}

func TestRechunk(t *testing.T) {
	text := strings.Repeat("abcd ", 250)

	got := rechunk(text, ChunkSize)
	chunks := strings.Split(got, "\n\n")
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), ChunkSize)
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.ReplaceAll(got, "\n\n", " ")))
}
