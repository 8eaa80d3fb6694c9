// Package tabs finds the status views on the stories page and their item
// counts, so listings only open views that have something in them.
package tabs

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/entrhq/inkwell/pkg/extract"
)

// clickableSelector lists the elements whose text can label a tab.
const clickableSelector = `a, button, [role="tab"]`

// tabToken is a status label followed by an optional count, as the stories
// page renders it ("Drafts3" or "Drafts 3").
var tabToken = regexp.MustCompile(`^([A-Za-z]+) ?(\d*)$`)

// statusPaths are the stories-page routes of the known views.
var statusPaths = map[extract.ArticleStatus]string{
	extract.StatusDraft:      "/me/stories/drafts",
	extract.StatusPublished:  "/me/stories/public",
	extract.StatusUnlisted:   "/me/stories/unlisted",
	extract.StatusScheduled:  "/me/stories/scheduled",
	extract.StatusSubmission: "/me/stories/submissions",
}

// Descriptor is one discovered view.
type Descriptor struct {
	// Name is the lower-cased label, e.g. "drafts".
	Name   string
	Status extract.ArticleStatus
	Count  int

	// Locator is a text selector that activates the view.
	Locator string

	// Path is the view's route, empty for unrecognized labels.
	Path string
}

// Discover scans text for tab labels, one whitespace-separated token at a
// time. A token is kept when its label is a known status or it carries a
// count; a missing count means zero. The first occurrence of a label wins
// and page order is preserved.
func Discover(pageText string) []Descriptor {
	return collect(strings.Fields(pageText))
}

// DiscoverHTML matches each clickable element's whole text as one candidate,
// so words inside story titles never become tabs.
func DiscoverHTML(rawHTML string) []Descriptor {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	texts := doc.Find(clickableSelector).Map(func(_ int, s *goquery.Selection) string {
		return strings.Join(strings.Fields(s.Text()), " ")
	})
	return collect(texts)
}

func collect(candidates []string) []Descriptor {
	var out []Descriptor
	seen := map[string]bool{}
	for _, c := range candidates {
		d, ok := descriptorFor(c)
		if !ok || seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}

func descriptorFor(candidate string) (Descriptor, bool) {
	m := tabToken.FindStringSubmatch(candidate)
	if m == nil {
		return Descriptor{}, false
	}
	label, digits := m[1], m[2]
	if digits == "" && !extract.KnownStatusName(label) {
		return Descriptor{}, false
	}

	count := 0
	if digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Descriptor{}, false
		}
		count = n
	}
	name := strings.ToLower(label)
	status := StatusFor(name)
	return Descriptor{
		Name:    name,
		Status:  status,
		Count:   count,
		Locator: "text=" + label,
		Path:    statusPaths[status],
	}, true
}

// SelectNonEmpty keeps the views with at least one item.
func SelectNonEmpty(tabs []Descriptor) []Descriptor {
	var out []Descriptor
	for _, t := range tabs {
		if t.Count > 0 {
			out = append(out, t)
		}
	}
	return out
}

// StatusFor maps a tab label to a status; unknown labels map to
// extract.StatusUnknown.
func StatusFor(name string) extract.ArticleStatus {
	return extract.StatusFromName(name)
}
