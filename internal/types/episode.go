package types

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// Section names used in Episode.Missing.
const (
	SectionLead       = "lead"
	SectionSummary    = "summary"
	SectionMainEvents = "main-events"
)

// Episode is the record assembled from one episode page.
type Episode struct {
	// Index is the 1-based position of the source URL in the input list.
	Index int

	// URL is the source page URL.
	URL string

	// Label is the episode marker parsed from the URL, empty if none.
	Label string

	// Lead is the first paragraph of the page.
	Lead string

	// Summary holds the paragraphs of the summary section.
	Summary []string

	// Events holds the bullet items of the main-events section.
	Events []string

	// Missing lists the sections that were not found and got placeholders.
	Missing []string

	// Text is the plain text block of the record, set once assembled.
	Text string

	// Err is the failure text for pages that could not be fetched or parsed.
	// When set, no structured field is populated.
	Err string

	// FetchedAt is when the page was fetched.
	FetchedAt time.Time
}

// NewEpisode creates an empty Episode for a source URL.
func NewEpisode(index int, sourceURL string) *Episode {
	return &Episode{
		Index:     index,
		URL:       sourceURL,
		FetchedAt: time.Now(),
	}
}

// NewFailedEpisode creates the placeholder record for a page that failed.
func NewFailedEpisode(index int, sourceURL string, err error) *Episode {
	ep := NewEpisode(index, sourceURL)
	ep.Err = "Error: " + err.Error()
	return ep
}

// Failed reports whether the page failed to fetch or parse.
func (e *Episode) Failed() bool { return e.Err != "" }

// IsMissing reports whether a section was substituted with a placeholder.
func (e *Episode) IsMissing(section string) bool {
	for _, m := range e.Missing {
		if m == section {
			return true
		}
	}
	return false
}

// MarkMissing records that a section was not found.
func (e *Episode) MarkMissing(section string) {
	if !e.IsMissing(section) {
		e.Missing = append(e.Missing, section)
	}
}

// Title returns the heading used for this episode in rendered output.
// Failed pages use their error text; otherwise the label, falling back to
// the decoded last path segment of the URL.
func (e *Episode) Title() string {
	if e.Failed() {
		return e.Err
	}
	if e.Label != "" {
		return e.Label
	}
	u, err := url.Parse(e.URL)
	if err != nil || u.Path == "" {
		return e.URL
	}
	seg := path.Base(u.Path)
	if dec, err := url.PathUnescape(seg); err == nil {
		seg = dec
	}
	return strings.ReplaceAll(seg, "_", " ")
}

// ToMap returns the episode as a field map for archive backends.
func (e *Episode) ToMap() map[string]any {
	m := map[string]any{
		"index":      e.Index,
		"url":        e.URL,
		"fetched_at": e.FetchedAt,
		"text":       e.Text,
	}
	if e.Failed() {
		m["error"] = e.Err
		return m
	}
	m["label"] = e.Label
	m["lead"] = e.Lead
	m["summary"] = e.Summary
	m["events"] = e.Events
	if len(e.Missing) > 0 {
		m["missing"] = e.Missing
	}
	return m
}

// ToFlatMap returns a flat map suitable for CSV export.
func (e *Episode) ToFlatMap() map[string]string {
	return map[string]string{
		"index":      strconv.Itoa(e.Index),
		"url":        e.URL,
		"fetched_at": e.FetchedAt.Format(time.RFC3339),
		"error":      e.Err,
		"label":      e.Label,
		"lead":       e.Lead,
		"summary":    strings.Join(e.Summary, "\n"),
		"events":     strings.Join(e.Events, "\n"),
		"missing":    strings.Join(e.Missing, ","),
		"text":       e.Text,
	}
}
