package assemble

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const episodeURL = "https://wiki.52poke.com/wiki/%E5%AE%9D%E5%8F%AF%E6%A2%A6_%E7%AC%AC5%E9%9B%86"

const fullPage = `<html><body>
<p>小智来到了新的城市。</p>
<h2><span id=".E6.91.98.E8.A6.81">摘要</span></h2>
<p>摘要一</p>
<p>摘要二</p>
<h2><span id=".E4.B8.BB.E8.A6.81.E4.BA.8B.E4.BB.B6">主要事件</span></h2>
<ul><li>事件一</li><li>事件二</li></ul>
<h2>登场角色</h2>
</body></html>`

func newAssembler(t *testing.T, convert string) *Assembler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Text.Convert = convert
	a, err := New(cfg, testLogger)
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}
	return a
}

func response(t *testing.T, raw, body string) *types.Response {
	t.Helper()
	req, err := types.NewRequest(raw)
	if err != nil {
		t.Fatal(err)
	}
	return &types.Response{Request: req, StatusCode: 200, Body: []byte(body)}
}

func TestAssembleFullPage(t *testing.T) {
	a := newAssembler(t, "none")
	ep, err := a.Assemble(response(t, episodeURL, fullPage), 5)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if ep.Index != 5 || ep.Label != "第5集" {
		t.Errorf("unexpected index/label: %d %q", ep.Index, ep.Label)
	}
	if ep.Lead != "小智来到了新的城市。" {
		t.Errorf("unexpected lead: %q", ep.Lead)
	}
	if len(ep.Summary) != 2 || len(ep.Events) != 2 {
		t.Errorf("unexpected sections: %q %q", ep.Summary, ep.Events)
	}
	if len(ep.Missing) != 0 {
		t.Errorf("nothing should be missing, got %v", ep.Missing)
	}

	want := "第5集\n小智来到了新的城市。\n摘要\n摘要一\n摘要二\n主要事件：\n\n• 事件一\n• 事件二"
	if got := TextBlock(ep, config.DefaultConfig().Text); got != want {
		t.Errorf("text block mismatch:\ngot  %q\nwant %q", got, want)
	}
	if ep.Text != want {
		t.Errorf("assembled record should carry the text block, got %q", ep.Text)
	}
}

func TestAssembleRejectsNonSuccessStatus(t *testing.T) {
	a := newAssembler(t, "none")
	resp := response(t, episodeURL, fullPage)
	resp.StatusCode = 302

	_, err := a.Assemble(resp, 1)
	var fe *types.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 302 {
		t.Fatalf("expected a fetch error with status 302, got %v", err)
	}
}

func TestAssemblePlaceholders(t *testing.T) {
	a := newAssembler(t, "none")
	ep, err := a.Assemble(response(t, "https://example.com/wiki/Page", `<html><body><div>nothing</div></body></html>`), 1)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	text := config.DefaultConfig().Text
	if ep.Label != "" {
		t.Errorf("expected empty label, got %q", ep.Label)
	}
	if ep.Title() != "Page" {
		t.Errorf("title should fall back to the URL segment, got %q", ep.Title())
	}
	if ep.Lead != text.LeadPlaceholder {
		t.Errorf("expected lead placeholder, got %q", ep.Lead)
	}
	for _, s := range []string{types.SectionLead, types.SectionSummary, types.SectionMainEvents} {
		if !ep.IsMissing(s) {
			t.Errorf("expected %s to be missing", s)
		}
	}

	block := TextBlock(ep, text)
	if !strings.HasSuffix(block, "主要事件：\n"+text.EventsPlaceholder) {
		t.Errorf("missing events should render the placeholder without bullets: %q", block)
	}
	if strings.Contains(block, "•") {
		t.Errorf("no bullets expected: %q", block)
	}
}

func TestAssembleConvertsScript(t *testing.T) {
	a := newAssembler(t, "s2t")
	ep, err := a.Assemble(response(t, episodeURL, `<html><body><p>宝可梦</p></body></html>`), 1)
	if err != nil {
		t.Fatal(err)
	}
	if ep.Lead != "寶可夢" {
		t.Errorf("expected traditional lead, got %q", ep.Lead)
	}
}

func TestFailedEpisode(t *testing.T) {
	a := newAssembler(t, "none")
	ep := a.Failed(2, "https://example.com/x", errors.New("timeout"))

	if !ep.Failed() || ep.Err != "Error: timeout" {
		t.Errorf("unexpected failed episode: %+v", ep)
	}
	if got := TextBlock(ep, config.DefaultConfig().Text); got != "Error: timeout" {
		t.Errorf("failed text block should be the error alone, got %q", got)
	}
	if ep.Text != "Error: timeout" {
		t.Errorf("failed record text should be the error, got %q", ep.Text)
	}
	if ep.Title() != "Error: timeout" {
		t.Errorf("failed title should be the error, got %q", ep.Title())
	}
}
