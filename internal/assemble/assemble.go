// Package assemble turns a fetched episode page into an Episode record.
package assemble

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/parser"
	"github.com/IshaanNene/episodepdf/internal/pipeline"
	"github.com/IshaanNene/episodepdf/internal/types"
)

var errDropped = errors.New("episode dropped by text pipeline")

// Assembler extracts the fields of an episode page and runs them through
// the text pipeline.
type Assembler struct {
	sections *parser.SectionExtractor
	lead     *parser.LeadLocator
	label    *parser.LabelParser
	pipeline *pipeline.Pipeline
	text     config.TextConfig
	logger   *slog.Logger
}

// New creates an Assembler from the parser and text configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Assembler, error) {
	lead, err := parser.NewLeadLocator(cfg.Parser.Lead, logger)
	if err != nil {
		return nil, err
	}
	label, err := parser.NewLabelParser(cfg.Parser.LabelPattern)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.NewTextPipeline(cfg.Text, logger)
	if err != nil {
		return nil, err
	}

	return &Assembler{
		sections: parser.NewSectionExtractor(cfg.Parser.SummaryAnchors, cfg.Parser.MainEventAnchors, logger),
		lead:     lead,
		label:    label,
		pipeline: p,
		text:     cfg.Text,
		logger:   logger.With("component", "assembler"),
	}, nil
}

// Assemble builds the Episode for a fetched page. index is the 1-based
// position of the page's URL in the input list.
func (a *Assembler) Assemble(resp *types.Response, index int) (*types.Episode, error) {
	sourceURL := resp.Request.URLString()
	if !resp.IsSuccess() {
		return nil, &types.FetchError{URL: sourceURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: sourceURL, Err: err}
	}

	ep := types.NewEpisode(index, sourceURL)
	if !resp.FetchedAt.IsZero() {
		ep.FetchedAt = resp.FetchedAt
	}
	ep.Label = a.label.Label(sourceURL)
	ep.Lead = a.lead.Lead(doc)
	if summary, ok := a.sections.Summary(doc); ok {
		ep.Summary = summary
	}
	if events, ok := a.sections.Events(doc); ok {
		ep.Events = events
	}

	return a.finish(ep)
}

// Failed builds the placeholder record for a page that could not be
// fetched or parsed. It goes through the same text pipeline.
func (a *Assembler) Failed(index int, sourceURL string, cause error) *types.Episode {
	ep := types.NewFailedEpisode(index, sourceURL, cause)
	if out, err := a.finish(ep); err == nil {
		return out
	}
	ep.Text = ep.Err
	return ep
}

func (a *Assembler) finish(ep *types.Episode) (*types.Episode, error) {
	out, err := a.pipeline.Process(ep)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &types.PipelineError{Episode: ep, Err: errDropped}
	}
	out.Text = TextBlock(out, a.text)

	a.logger.Debug("episode assembled",
		"index", out.Index,
		"label", out.Label,
		"summary", len(out.Summary),
		"events", len(out.Events),
		"missing", strings.Join(out.Missing, ","),
	)
	return out, nil
}

// TextBlock renders an episode as the newline-delimited text block: label,
// lead, summary heading and paragraphs, events heading and bulleted items.
// Failed episodes render as their error text alone.
func TextBlock(ep *types.Episode, cfg config.TextConfig) string {
	if ep.Failed() {
		return ep.Err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n", ep.Label, ep.Lead, cfg.SummaryHeading)
	b.WriteString(strings.Join(ep.Summary, "\n"))
	fmt.Fprintf(&b, "\n%s\n", cfg.EventsHeading)

	if ep.IsMissing(types.SectionMainEvents) {
		b.WriteString(strings.Join(ep.Events, "\n"))
		return b.String()
	}
	for _, e := range ep.Events {
		fmt.Fprintf(&b, "\n%s %s", cfg.Bullet, e)
	}
	return b.String()
}
