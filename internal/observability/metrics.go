package observability

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Metrics tracks counters for one build run.
type Metrics struct {
	// Page metrics
	PagesTotal      atomic.Int64
	PagesFailed     atomic.Int64
	BytesDownloaded atomic.Int64

	// Section metrics
	LeadsMissing     atomic.Int64
	SummariesMissing atomic.Int64
	EventsMissing    atomic.Int64

	// Output metrics
	BatchesRendered atomic.Int64
	PDFPages        atomic.Int64
	RecordsArchived atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type sample struct {
	name  string
	help  string
	value int64
}

func (m *Metrics) samples() []sample {
	return []sample{
		{"episodepdf_pages_total", "Total episode pages processed", m.PagesTotal.Load()},
		{"episodepdf_pages_failed_total", "Pages that became error placeholders", m.PagesFailed.Load()},
		{"episodepdf_bytes_downloaded_total", "Total bytes downloaded", m.BytesDownloaded.Load()},
		{"episodepdf_leads_missing_total", "Pages without a lead paragraph", m.LeadsMissing.Load()},
		{"episodepdf_summaries_missing_total", "Pages without a summary section", m.SummariesMissing.Load()},
		{"episodepdf_events_missing_total", "Pages without a main-events section", m.EventsMissing.Load()},
		{"episodepdf_batches_rendered_total", "PDF files written", m.BatchesRendered.Load()},
		{"episodepdf_pdf_pages_total", "Pages across all PDF files", m.PDFPages.Load()},
		{"episodepdf_records_archived_total", "Episode records written to the archive", m.RecordsArchived.Load()},
	}
}

// WriteText writes the counters in Prometheus text exposition format, for
// a node_exporter textfile collector.
func (m *Metrics) WriteText(w io.Writer) error {
	for _, s := range m.samples() {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", s.name, s.help, s.name, s.name, s.value); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"pages_total":       m.PagesTotal.Load(),
		"pages_failed":      m.PagesFailed.Load(),
		"bytes_downloaded":  m.BytesDownloaded.Load(),
		"leads_missing":     m.LeadsMissing.Load(),
		"summaries_missing": m.SummariesMissing.Load(),
		"events_missing":    m.EventsMissing.Load(),
		"batches_rendered":  m.BatchesRendered.Load(),
		"pdf_pages":         m.PDFPages.Load(),
		"records_archived":  m.RecordsArchived.Load(),
	}
}

// LogSummary logs the snapshot at info level.
func (m *Metrics) LogSummary() {
	snap := m.Snapshot()
	args := make([]any, 0, len(snap)*2)
	for _, k := range []string{
		"pages_total", "pages_failed", "leads_missing", "summaries_missing",
		"events_missing", "batches_rendered", "pdf_pages", "records_archived", "bytes_downloaded",
	} {
		args = append(args, k, snap[k])
	}
	m.logger.Info("run summary", args...)
}
