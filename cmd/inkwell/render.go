package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/inkwell/pkg/extract"
	"github.com/entrhq/inkwell/pkg/session"
)

// Color palette for text output
var (
	accentColor = lipgloss.Color("#A8E6CF")
	mutedColor  = lipgloss.Color("245")
	warnColor   = lipgloss.Color("203")

	titleStyle = lipgloss.NewStyle().Bold(true)
	metaStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	urlStyle   = lipgloss.NewStyle().Foreground(accentColor).Underline(true)
	warnStyle  = lipgloss.NewStyle().Foreground(warnColor).Bold(true)
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(accentColor).
			Padding(0, 1)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

// renderer writes command results as JSON or styled text.
type renderer struct {
	w    io.Writer
	json bool
}

func newRenderer(format string, w io.Writer) (*renderer, error) {
	switch strings.ToLower(format) {
	case "json":
		return &renderer{w: w, json: true}, nil
	case "text", "":
		return &renderer{w: w}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (use text or json)", format)
}

func (r *renderer) encode(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *renderer) line(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *renderer) status(st session.Status) error {
	if r.json {
		return r.encode(st)
	}
	r.line(boxStyle.Render(fmt.Sprintf("Signed in (session from %s)", st.Source)))
	return nil
}

func (r *renderer) articles(articles []extract.Article) error {
	if r.json {
		return r.encode(articles)
	}
	if len(articles) == 0 {
		r.line(metaStyle.Render("No articles found."))
		return nil
	}
	for _, a := range articles {
		r.line(badgeStyle.Render(string(a.Status)) + " " + titleStyle.Render(a.Title))
		meta := []string{}
		if a.PublishedAt != "" {
			meta = append(meta, a.PublishedAt)
		}
		if len(a.Tags) > 0 {
			meta = append(meta, "#"+strings.Join(a.Tags, " #"))
		}
		if len(meta) > 0 {
			r.line("  " + metaStyle.Render(strings.Join(meta, " · ")))
		}
		r.line("  " + urlStyle.Render(a.URL))
	}
	return nil
}

func (r *renderer) content(c extract.Content) error {
	if r.json {
		return r.encode(c)
	}
	if c.Title != "" {
		r.line(titleStyle.Render(c.Title))
		r.line("")
	}
	switch {
	case c.Paywalled:
		r.line(warnStyle.Render("Paywalled"))
	case c.Preview:
		r.line(warnStyle.Render("Preview only"))
	}
	if c.Text == "" {
		r.line(metaStyle.Render("No content could be extracted."))
		return nil
	}
	r.line(c.Text)
	return nil
}

func (r *renderer) cards(cards []extract.FeedCard) error {
	if r.json {
		return r.encode(cards)
	}
	if len(cards) == 0 {
		r.line(metaStyle.Render("No stories found."))
		return nil
	}
	for _, c := range cards {
		head := titleStyle.Render(c.Title)
		if c.Source != "" {
			head = badgeStyle.Render(c.Source) + " " + head
		}
		r.line(head)

		meta := []string{}
		for _, v := range []string{c.Author, c.Date, c.ReadTime} {
			if v != "" {
				meta = append(meta, v)
			}
		}
		if c.Claps > 0 {
			meta = append(meta, fmt.Sprintf("%d claps", c.Claps))
		}
		if len(meta) > 0 {
			r.line("  " + metaStyle.Render(strings.Join(meta, " · ")))
		}
		if c.Excerpt != "" {
			r.line("  " + c.Excerpt)
		}
		r.line("  " + urlStyle.Render(c.URL))
	}
	return nil
}

func (r *renderer) readingLists(lists []extract.ReadingList) error {
	if r.json {
		return r.encode(lists)
	}
	if len(lists) == 0 {
		r.line(metaStyle.Render("No reading lists found."))
		return nil
	}
	for _, l := range lists {
		r.line(titleStyle.Render(l.Name) + " " + metaStyle.Render(fmt.Sprintf("[%s] %d stories", l.ID, l.ItemCount)))
		if l.Description != "" {
			r.line("  " + l.Description)
		}
	}
	return nil
}

func (r *renderer) published(u string) error {
	if r.json {
		return r.encode(map[string]string{"url": u})
	}
	r.line(boxStyle.Render("Published: " + u))
	return nil
}
