// Package batch drives a season build: it partitions the URL list, fetches
// and assembles every page, archives the records and renders one PDF per
// batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/IshaanNene/episodepdf/internal/observability"
	"github.com/IshaanNene/episodepdf/internal/render"
	"github.com/IshaanNene/episodepdf/internal/types"
)

// Fetcher retrieves one page.
type Fetcher interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)
}

// Assembler turns a fetched page into an Episode, or builds the
// placeholder record for a page that failed.
type Assembler interface {
	Assemble(resp *types.Response, index int) (*types.Episode, error)
	Failed(index int, sourceURL string, cause error) *types.Episode
}

// Renderer writes one batch document and returns its page count.
type Renderer interface {
	Render(ctx context.Context, path string, doc render.Document) (int, error)
}

// Storage archives the records of a batch.
type Storage interface {
	Store(ctx context.Context, episodes []*types.Episode) error
}

// Batch is a positional slice of the URL list and its records.
type Batch struct {
	Number   int
	Start    int
	End      int
	Episodes []*types.Episode
}

// Options configures a Driver.
type Options struct {
	Season      string
	OutputDir   string
	FilePattern string
	BatchSize   int
	Progress    bool
}

// Result summarizes a run.
type Result struct {
	Files    []string
	Episodes int
	Failed   int
	Pages    int
	Duration time.Duration
}

// Driver runs the fetch, assemble, archive and render loop sequentially.
type Driver struct {
	fetcher   Fetcher
	assembler Assembler
	renderer  Renderer
	storage   Storage
	metrics   *observability.Metrics
	opts      Options
	progress  io.Writer
	logger    *slog.Logger
}

// Option configures optional Driver collaborators.
type Option func(*Driver)

// WithStorage archives every batch before it is rendered.
func WithStorage(s Storage) Option {
	return func(d *Driver) { d.storage = s }
}

// WithMetrics records run counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithProgressWriter sets where progress bars are drawn (default stderr).
func WithProgressWriter(w io.Writer) Option {
	return func(d *Driver) { d.progress = w }
}

// NewDriver creates a Driver.
func NewDriver(f Fetcher, a Assembler, r Renderer, opts Options, logger *slog.Logger, options ...Option) *Driver {
	d := &Driver{
		fetcher:   f,
		assembler: a,
		renderer:  r,
		opts:      opts,
		progress:  os.Stderr,
		logger:    logger.With("component", "batch_driver", "season", opts.Season),
	}
	for _, o := range options {
		o(d)
	}
	if d.metrics == nil {
		d.metrics = observability.NewMetrics(logger)
	}
	return d
}

// Run processes urls batch by batch. Cancelling ctx stops the run between
// pages; the batches completed so far are kept and ctx.Err() is returned.
// Render and archive failures abort the run.
func (d *Driver) Run(ctx context.Context, urls []string) (*Result, error) {
	start := time.Now()
	ranges := Partition(len(urls), d.opts.BatchSize)
	result := &Result{}

	d.logger.Info("build started", "urls", len(urls), "batches", len(ranges), "batch_size", d.opts.BatchSize)

	for i, r := range ranges {
		b := &Batch{Number: i + 1, Start: r.Start, End: r.End}

		if err := d.collect(ctx, b, urls, len(ranges)); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		if d.storage != nil {
			if err := d.storage.Store(ctx, b.Episodes); err != nil {
				result.Duration = time.Since(start)
				return result, fmt.Errorf("archive batch %d: %w", b.Number, err)
			}
			d.metrics.RecordsArchived.Add(int64(len(b.Episodes)))
		}

		path := render.OutputPath(d.opts.OutputDir, d.opts.FilePattern, d.opts.Season, b.Number)
		d.logger.Info("building pdf", "batch", b.Number, "first", b.Start+1, "last", b.End, "path", path)

		pages, err := d.renderer.Render(ctx, path, render.Document{
			Title:    fmt.Sprintf("%s episodes part %d", d.opts.Season, b.Number),
			Season:   d.opts.Season,
			Batch:    b.Number,
			Episodes: b.Episodes,
		})
		if err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		d.metrics.BatchesRendered.Add(1)
		d.metrics.PDFPages.Add(int64(pages))
		result.Files = append(result.Files, path)
		result.Pages += pages
		result.Episodes += len(b.Episodes)
		for _, ep := range b.Episodes {
			if ep.Failed() {
				result.Failed++
			}
		}

		d.logger.Info("completed batch", "batch", b.Number, "of", len(ranges), "episodes", len(b.Episodes), "pages", pages)
	}

	result.Duration = time.Since(start)
	d.logger.Info("all batches completed",
		"files", len(result.Files),
		"episodes", result.Episodes,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return result, nil
}

// collect fills b.Episodes, one record per URL in the batch range.
func (d *Driver) collect(ctx context.Context, b *Batch, urls []string, batches int) error {
	var bar *progressbar.ProgressBar
	if d.opts.Progress {
		bar = progressbar.NewOptions(b.End-b.Start,
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription(fmt.Sprintf("Batch %d/%d", b.Number, batches)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
	}

	b.Episodes = make([]*types.Episode, 0, b.End-b.Start)
	for idx := b.Start; idx < b.End; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		index := idx + 1
		if bar == nil {
			d.logger.Info("processing url", "index", index, "total", len(urls), "url", urls[idx])
		}

		ep, err := d.process(ctx, index, urls[idx])
		if err != nil {
			return err
		}
		b.Episodes = append(b.Episodes, ep)
		d.record(ep)

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return nil
}

// process fetches and assembles one page. Per-page failures become
// placeholder records; only cancellation is returned as an error.
func (d *Driver) process(ctx context.Context, index int, rawURL string) (*types.Episode, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return d.fail(index, rawURL, err), nil
	}
	req.Index = index

	resp, err := d.fetcher.Fetch(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return d.fail(index, rawURL, err), nil
	}
	d.metrics.BytesDownloaded.Add(int64(len(resp.Body)))
	d.logger.Debug("page fetched",
		"index", index,
		"final_url", resp.FinalURL,
		"content_type", resp.ContentType,
		"duration", resp.FetchDuration,
	)

	ep, err := d.assembler.Assemble(resp, index)
	if err != nil {
		return d.fail(index, rawURL, err), nil
	}
	return ep, nil
}

func (d *Driver) fail(index int, rawURL string, err error) *types.Episode {
	d.logger.Warn("page failed", "index", index, "url", rawURL, "error", err)
	return d.assembler.Failed(index, rawURL, err)
}

func (d *Driver) record(ep *types.Episode) {
	d.metrics.PagesTotal.Add(1)
	if ep.Failed() {
		d.metrics.PagesFailed.Add(1)
		return
	}
	if ep.IsMissing(types.SectionLead) {
		d.metrics.LeadsMissing.Add(1)
	}
	if ep.IsMissing(types.SectionSummary) {
		d.metrics.SummariesMissing.Add(1)
	}
	if ep.IsMissing(types.SectionMainEvents) {
		d.metrics.EventsMissing.Add(1)
	}
}
