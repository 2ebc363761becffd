// Package digest assembles the briefing email from ordered topic sections.
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/DeafMist/news-briefing/internal/models"
)

// Fallbacks for articles missing a title or link.
const (
	NoTitle = "No Title"
	NoURL   = "#"
)

const (
	Title        = "Your AI-Powered News Briefing"
	Intro        = "Here are the top stories for today:"
	subjectBase  = "Your Daily AI News Briefing"
	subjectDates = "January 02, 2006"
)

var page = template.Must(template.New("digest").Parse(
	`<h1>{{.Title}}</h1><p>{{.Intro}}</p>` +
		`{{range .Sections}}<h2>Today's News on: {{.Topic}}</h2>` +
		`{{range .Entries}}
<div style="margin-bottom: 25px; border-bottom: 1px solid #eee; padding-bottom: 15px;">
    <h3 style="margin: 0 0 5px 0;"><a href='{{.URL}}' style='color: #0056b3; text-decoration: none;'>{{.Title}}</a></h3>
    <p style="margin: 0; font-size: 16px;">{{.Summary}}</p>
</div>
{{end}}{{end}}`))

type pageView struct {
	Title    string
	Intro    string
	Sections []sectionView
}

type sectionView struct {
	Topic   string
	Entries []entryView
}

type entryView struct {
	Title   string
	URL     string
	Summary string
}

// Builder collects sections in the order they are added.
type Builder struct {
	sections []models.Section
}

// NewBuilder returns an empty builder. Rendering it yields the header only.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddSection appends a topic with its entries. Topics without entries are
// dropped so they never produce a heading; the return reports whether it was added.
func (b *Builder) AddSection(topic string, entries []models.Entry) bool {
	if len(entries) == 0 {
		return false
	}
	cp := make([]models.Entry, len(entries))
	copy(cp, entries)
	b.sections = append(b.sections, models.Section{Topic: topic, Entries: cp})
	return true
}

// Sections returns a copy of the collected sections.
func (b *Builder) Sections() []models.Section {
	out := make([]models.Section, len(b.sections))
	copy(out, b.sections)
	return out
}

// TopicCount reports how many sections were added.
func (b *Builder) TopicCount() int {
	return len(b.sections)
}

// ArticleCount reports the entries across all sections.
func (b *Builder) ArticleCount() int {
	n := 0
	for _, s := range b.sections {
		n += len(s.Entries)
	}
	return n
}

// Render produces the HTML body. Article text is escaped.
func (b *Builder) Render() (string, error) {
	view := pageView{Title: Title, Intro: Intro, Sections: make([]sectionView, 0, len(b.sections))}
	for _, s := range b.sections {
		sv := sectionView{Topic: s.Topic, Entries: make([]entryView, 0, len(s.Entries))}
		for _, e := range s.Entries {
			sv.Entries = append(sv.Entries, entryView{
				Title:   orDefault(e.Article.Title, NoTitle),
				URL:     orDefault(e.Article.URL, NoURL),
				Summary: e.Summary.Text,
			})
		}
		view.Sections = append(view.Sections, sv)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}

// Subject builds the dated subject line, e.g. "Your Daily AI News Briefing - March 05, 2025".
func Subject(now time.Time) string {
	return subjectBase + " - " + now.Format(subjectDates)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
