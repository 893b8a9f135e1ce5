package observability

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestSnapshot(t *testing.T) {
	m := NewMetrics(testLogger)
	m.PagesTotal.Add(3)
	m.PagesFailed.Add(1)
	m.BatchesRendered.Add(1)

	snap := m.Snapshot()
	if snap["pages_total"] != 3 || snap["pages_failed"] != 1 || snap["batches_rendered"] != 1 {
		t.Errorf("unexpected snapshot: %v", snap)
	}
	m.LogSummary()
}

func TestWriteText(t *testing.T) {
	m := NewMetrics(testLogger)
	m.PDFPages.Add(12)

	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "episodepdf_pdf_pages_total 12\n") {
		t.Errorf("missing pdf pages sample:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE episodepdf_pages_total counter") {
		t.Errorf("missing type line:\n%s", out)
	}
}
