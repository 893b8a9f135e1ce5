package batch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IshaanNene/episodepdf/internal/assemble"
	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/fetcher"
	"github.com/IshaanNene/episodepdf/internal/storage"
	"github.com/IshaanNene/episodepdf/internal/types"
)

const wikiPage = `<html><body><div class="mw-parser-output">
<p>第%[1]d集的开头。</p>
<div class="mw-heading mw-heading2"><h2 id=".E6.91.98.E8.A6.81">摘要</h2><span class="mw-editsection">[编辑]</span></div>
<p>梦想的摘要。</p>
<div class="mw-heading mw-heading2"><h2 id=".E4.B8.BB.E8.A6.81.E4.BA.8B.E4.BB.B6">主要事件</h2><span class="mw-editsection">[编辑]</span></div>
<ul><li>事件%[1]d</li></ul>
<div class="mw-heading mw-heading2"><h2 id="x">登场宝可梦</h2><span class="mw-editsection">[编辑]</span></div>
</div></body></html>`

// TestBuildAgainstWiki runs the HTTP fetcher and assembler against a local
// wiki, with the renderer faked.
func TestBuildAgainstWiki(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n int
		if _, err := fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/wiki/ep"), "%d", &n); err != nil || n == 2 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, wikiPage, n)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Fetcher.PolitenessDelay = 0

	f, err := fetcher.New(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	asm, err := assemble.New(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	archive, err := storage.NewArchive(config.ArchiveConfig{Type: "jsonl"}, dir, "test", testLogger)
	if err != nil {
		t.Fatal(err)
	}

	list := []string{srv.URL + "/wiki/ep1", srv.URL + "/wiki/ep2", srv.URL + "/wiki/ep3"}
	r := &fakeRenderer{}
	d := NewDriver(f, asm, r, Options{
		Season: "test", OutputDir: dir, FilePattern: cfg.Render.FilePattern, BatchSize: 2,
	}, testLogger, WithStorage(archive))

	if _, err := d.Run(context.Background(), list); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatal(err)
	}

	if len(r.docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(r.docs))
	}
	first, second := r.docs[0].Episodes, r.docs[1].Episodes

	if first[0].Summary[0] != "夢想的摘要。" {
		t.Errorf("expected converted summary, got %q", first[0].Summary)
	}
	if len(first[0].Events) != 1 || first[0].Events[0] != "事件1" {
		t.Errorf("unexpected events: %q", first[0].Events)
	}
	if !first[1].Failed() || !strings.Contains(first[1].Err, "404") {
		t.Errorf("second page should be a 404 placeholder, got %+v", first[1])
	}
	if second[0].Index != 3 || second[0].IsMissing(types.SectionSummary) {
		t.Errorf("unexpected third episode: %+v", second[0])
	}

	data, err := os.ReadFile(filepath.Join(dir, "test_episodes.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 3 {
		t.Errorf("expected 3 archived records, got %d", lines)
	}
}
