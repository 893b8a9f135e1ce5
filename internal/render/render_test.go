package render

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IshaanNene/episodepdf/internal/browser"
	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func sampleEpisodes() []*types.Episode {
	ok := types.NewEpisode(1, "https://wiki.52poke.com/wiki/x_%E7%AC%AC1%E9%9B%86")
	ok.Label = "第1集"
	ok.Lead = "小智出发了 <script>alert(1)</script>"
	ok.Summary = []string{"摘要一", "摘要二"}
	ok.Events = []string{"事件一", "事件二", "事件三"}

	missing := types.NewEpisode(2, "https://wiki.52poke.com/wiki/Some_Page")
	missing.Lead = "lead"
	missing.Summary = []string{"No summary found."}
	missing.Events = []string{"No main events found."}
	missing.MarkMissing(types.SectionSummary)
	missing.MarkMissing(types.SectionMainEvents)

	failed := types.NewFailedEpisode(3, "https://wiki.52poke.com/wiki/y", errors.New("HTTP 404"))

	return []*types.Episode{ok, missing, failed}
}

func TestBuildHTML(t *testing.T) {
	doc := Document{Title: "1997 part 1", Season: "1997", Batch: 1, Episodes: sampleEpisodes()}
	out, err := BuildHTML(doc, config.DefaultConfig().Text, Font{}, 48)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	html := string(out)

	if strings.Count(html, `<section class="episode">`) != 3 {
		t.Errorf("expected 3 episode sections")
	}
	if strings.Count(html, `class="normal bullet"`) != 3 {
		t.Errorf("expected 3 bulleted events, got %d", strings.Count(html, `class="normal bullet"`))
	}
	if strings.Contains(html, "<script>") {
		t.Error("episode text must be escaped")
	}
	if !strings.Contains(html, "Some Page") {
		t.Error("missing label should fall back to the URL segment")
	}
	if !strings.Contains(html, `<p class="title">Error: HTTP 404</p>`) {
		t.Error("failed episode should render its error as the title")
	}
	if !strings.Contains(html, "margin: 48pt") {
		t.Error("expected 48pt page margin")
	}
	if !strings.Contains(html, "font-family: sans-serif") {
		t.Error("expected sans-serif fallback without a font")
	}
	if strings.Count(html, `<div class="gap-30"></div>`) != 3 {
		t.Error("expected record spacing after every episode")
	}
}

func TestBuildHTMLFailedHasNoSections(t *testing.T) {
	failed := types.NewFailedEpisode(1, "https://example.com/x", errors.New("boom"))
	out, err := BuildHTML(Document{Episodes: []*types.Episode{failed}}, config.DefaultConfig().Text, Font{}, 48)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), `class="summary"`) || strings.Contains(string(out), `class="normal`) {
		t.Errorf("failed episode should only carry a title: %s", out)
	}
}

func TestBuildHTMLEmbedsFont(t *testing.T) {
	font := Font{Path: "/fonts/My Font.ttc", Family: embeddedFamily}
	out, err := BuildHTML(Document{}, config.DefaultConfig().Text, font, 48)
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	if !strings.Contains(html, "@font-face") || !strings.Contains(html, "file:///fonts/My%20Font.ttc") {
		t.Errorf("expected embedded font face: %s", html)
	}
	if !strings.Contains(html, `"EpisodeCJK", sans-serif`) {
		t.Error("expected font stack with fallback")
	}
}

func TestFindFont(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "cjk.ttf")
	if err := os.WriteFile(fontPath, []byte("font"), 0o644); err != nil {
		t.Fatal(err)
	}

	font, ok := FindFont([]string{"", filepath.Join(dir, "missing.ttc"), dir, fontPath})
	if !ok || font.Path != fontPath {
		t.Errorf("expected %s, got %+v (found=%v)", fontPath, font, ok)
	}

	if _, ok := FindFont([]string{filepath.Join(dir, "none.ttf")}); ok {
		t.Error("expected no font")
	}
	if LoadFont(nil, testLogger).Family != "" {
		t.Error("no candidates should yield the fallback font")
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("1997/pdf", "%s_episodes_part%d.pdf", "1997", 3)
	if got != filepath.Join("1997", "pdf", "1997_episodes_part3.pdf") {
		t.Errorf("unexpected path: %s", got)
	}
}

// Needs a local Chromium; enable with EPISODEPDF_BROWSER_TESTS=1.
func TestPDFRendererRender(t *testing.T) {
	if os.Getenv("EPISODEPDF_BROWSER_TESTS") == "" {
		t.Skip("set EPISODEPDF_BROWSER_TESTS to run browser tests")
	}

	cfg := config.DefaultConfig()
	b, err := browser.Launch(cfg.Browser, testLogger)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	defer b.Close()

	path := filepath.Join(t.TempDir(), "out.pdf")
	r := NewPDFRenderer(b, cfg, testLogger)
	pages, err := r.Render(context.Background(), path, Document{Title: "test", Season: "test", Batch: 1, Episodes: sampleEpisodes()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if pages < 1 {
		t.Errorf("expected at least one page, got %d", pages)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("raw print output should be removed")
	}
}
