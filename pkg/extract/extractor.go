// Package extract turns the platform's HTML into typed records. Every record
// kind has an ordered table of strategies from the current layout to older
// ones; the first strategy producing enough records is used. Extraction works
// on serialized HTML only, so a live page and a saved fixture go through the
// same code.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extractor resolves relative links against the site's base URL.
type Extractor struct {
	base *url.URL
}

// New creates an Extractor for the site at baseURL.
func New(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	return &Extractor{base: u}, nil
}

// BaseURL returns the site root without a trailing slash.
func (e *Extractor) BaseURL() string {
	return strings.TrimRight(e.base.String(), "/")
}

// resolve makes href absolute. Unparseable or script links resolve to "".
func (e *Extractor) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return e.base.ResolveReference(u).String()
}

// canonical resolves href and drops its query and fragment, which the site
// uses for tracking only.
func (e *Extractor) canonical(href string) string {
	abs := e.resolve(href)
	if abs == "" {
		return ""
	}
	u, err := url.Parse(abs)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// parse never fails: unreadable input yields an empty document.
func parse(rawHTML string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode}).Selection
	}
	return doc.Selection
}
