package extract

import "strings"

// ArticleStatus is the publication state of one of the account's stories.
type ArticleStatus string

const (
	StatusDraft      ArticleStatus = "draft"
	StatusPublished  ArticleStatus = "published"
	StatusUnlisted   ArticleStatus = "unlisted"
	StatusScheduled  ArticleStatus = "scheduled"
	StatusSubmission ArticleStatus = "submission"
	StatusUnknown    ArticleStatus = "unknown"
)

var statusNames = map[string]ArticleStatus{
	"draft":       StatusDraft,
	"drafts":      StatusDraft,
	"published":   StatusPublished,
	"public":      StatusPublished,
	"unlisted":    StatusUnlisted,
	"scheduled":   StatusScheduled,
	"submission":  StatusSubmission,
	"submissions": StatusSubmission,
	"submitted":   StatusSubmission,
}

// StatusFromName maps a UI label to a status. Unrecognized labels are
// StatusUnknown, never an error.
func StatusFromName(name string) ArticleStatus {
	if s, ok := statusNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s
	}
	return StatusUnknown
}

// KnownStatusName reports whether name is in the status lookup table.
func KnownStatusName(name string) bool {
	_, ok := statusNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Article is one row of the account's story listing.
// Content is only filled by a full-content fetch, never by a listing.
type Article struct {
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	Status      ArticleStatus `json:"status"`
	PublishedAt string        `json:"published_at,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Content     string        `json:"content,omitempty"`
}

// FeedCard is a story preview from a feed, search result or reading list.
// Source is only set when several feeds are merged into one result.
type FeedCard struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	URL      string `json:"url"`
	Author   string `json:"author,omitempty"`
	Date     string `json:"date,omitempty"`
	ReadTime string `json:"read_time,omitempty"`
	Claps    int64  `json:"claps,omitempty"`
	Image    string `json:"image,omitempty"`
	Source   string `json:"source,omitempty"`
}

// ReadingList is one of the account's saved lists.
type ReadingList struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ItemCount   int    `json:"item_count,omitempty"`
	URL         string `json:"url"`
}

// Content is the result of a full-article fetch. Degraded outcomes are
// reported through the flags, never as errors.
type Content struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`

	// Paywalled is set when nothing could be extracted and the page shows
	// paywall wording. Text then explains the classification.
	Paywalled bool `json:"paywalled,omitempty"`

	// Preview is set when the extracted text is short and the page says only
	// a preview is shown. Text keeps the partial content behind a marker.
	Preview bool `json:"preview,omitempty"`

	// Keywords are the paywall or preview phrases that matched.
	Keywords []string `json:"keywords,omitempty"`

	// Strategy names the extraction strategy that produced Text.
	Strategy string `json:"strategy,omitempty"`
}
