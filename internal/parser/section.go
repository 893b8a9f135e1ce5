package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/episodepdf/internal/types"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// ContentKind selects what is collected under a section heading.
type ContentKind int

const (
	// Paragraphs collects every paragraph sibling.
	Paragraphs ContentKind = iota
	// ListItems collects the items of the first list sibling.
	ListItems
)

// Section identifies a named content block on an episode page by the ids
// its heading anchor may carry.
type Section struct {
	Name    string
	Anchors []string
	Kind    ContentKind
}

// SectionExtractor reads summary and main-events sections by walking the
// siblings that follow a section heading.
type SectionExtractor struct {
	summary    Section
	mainEvents Section
	logger     *slog.Logger
}

// NewSectionExtractor creates an extractor for the given anchor ids.
func NewSectionExtractor(summaryAnchors, mainEventAnchors []string, logger *slog.Logger) *SectionExtractor {
	return &SectionExtractor{
		summary:    Section{Name: types.SectionSummary, Anchors: summaryAnchors, Kind: Paragraphs},
		mainEvents: Section{Name: types.SectionMainEvents, Anchors: mainEventAnchors, Kind: ListItems},
		logger:     logger.With("component", "section_extractor"),
	}
}

// Summary returns the non-empty paragraphs of the summary section.
func (e *SectionExtractor) Summary(doc *goquery.Document) ([]string, bool) {
	return e.Extract(doc, e.summary)
}

// Events returns the items of the first list in the main-events section.
func (e *SectionExtractor) Events(doc *goquery.Document) ([]string, bool) {
	return e.Extract(doc, e.mainEvents)
}

// Extract returns the text of a section. A section whose anchor or heading
// is absent and a section with no extractable content both report false.
func (e *SectionExtractor) Extract(doc *goquery.Document, section Section) ([]string, bool) {
	heading, ok := findHeading(doc, section.Anchors)
	if !ok {
		e.logger.Debug("section heading not found", "section", section.Name)
		return nil, false
	}

	var out []string
	switch section.Kind {
	case ListItems:
		out = listItems(heading)
	default:
		out = paragraphs(heading)
	}
	if len(out) == 0 {
		e.logger.Debug("section is empty", "section", section.Name)
		return nil, false
	}
	return out, true
}

// findHeading returns the nearest enclosing heading (the element itself
// counts) of the first anchor id that sits in one. An anchor outside any
// heading, such as a table of contents entry, is skipped.
func findHeading(doc *goquery.Document, anchors []string) (*goquery.Selection, bool) {
	for _, anchor := range anchors {
		if anchor == "" {
			continue
		}
		// ids are compared literally: MediaWiki ids such as ".E6.91.98"
		// are not valid in an #id selector.
		el := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			id, _ := s.Attr("id")
			return id == anchor
		}).First()
		if el.Length() == 0 {
			continue
		}
		heading := el.Closest(headingSelector)
		if heading.Length() == 0 {
			continue
		}
		return heading, true
	}
	return nil, false
}

// walkSection visits the element siblings after heading up to, not
// including, the next heading of the same level. visit returns false to
// stop early.
func walkSection(heading *goquery.Selection, visit func(*goquery.Selection) bool) {
	level := goquery.NodeName(heading)
	start := heading

	// <div class="mw-heading"><h2>..</h2><span class="mw-editsection">..</span></div>
	// keeps the content after the wrapper
	if heading.Parent().HasClass("mw-heading") {
		start = heading.Parent()
	}

	start.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		if isBoundary(sib, level) {
			return false
		}
		return visit(sib)
	})
}

func isBoundary(sib *goquery.Selection, level string) bool {
	if goquery.NodeName(sib) == level {
		return true
	}
	return sib.HasClass("mw-heading") && sib.ChildrenFiltered(level).Length() > 0
}

func paragraphs(heading *goquery.Selection) []string {
	var out []string
	walkSection(heading, func(sib *goquery.Selection) bool {
		if goquery.NodeName(sib) != "p" {
			return true
		}
		if text := strings.TrimSpace(sib.Text()); text != "" {
			out = append(out, text)
		}
		return true
	})
	return out
}

func listItems(heading *goquery.Selection) []string {
	var list *goquery.Selection
	walkSection(heading, func(sib *goquery.Selection) bool {
		if sib.Is("ul, ol") {
			list = sib
			return false
		}
		return true
	})
	if list == nil {
		return nil
	}

	var out []string
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		item := li.Clone()
		item.Find("ul, ol").Remove()
		if text := strings.TrimSpace(item.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}
