package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

// A4 in inches, the unit of the print request.
const (
	a4WidthIn   = 8.27
	a4HeightIn  = 11.69
	pointsPerIn = 72.0
)

const footerTemplate = `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// PDFRenderer prints Documents to PDF files through headless Chromium.
type PDFRenderer struct {
	browser   *rod.Browser
	cfg       config.RenderConfig
	text      config.TextConfig
	printWait time.Duration
	font      Font
	logger    *slog.Logger
}

// NewPDFRenderer creates a renderer on a running browser. The CJK font is
// resolved once here.
func NewPDFRenderer(b *rod.Browser, cfg *config.Config, logger *slog.Logger) *PDFRenderer {
	logger = logger.With("component", "pdf_renderer")
	return &PDFRenderer{
		browser:   b,
		cfg:       cfg.Render,
		text:      cfg.Text,
		printWait: cfg.Browser.PrintWait,
		font:      LoadFont(cfg.Render.Fonts, logger),
		logger:    logger,
	}
}

// Render writes doc to path and returns the page count of the result.
func (r *PDFRenderer) Render(ctx context.Context, path string, doc Document) (int, error) {
	fail := func(err error) (int, error) {
		return 0, &types.RenderError{Batch: doc.Batch, Path: path, Err: err}
	}

	html, err := BuildHTML(doc, r.text, r.font, r.cfg.MarginPt)
	if err != nil {
		return fail(err)
	}

	htmlPath, cleanup, err := r.writeHTML(path, html)
	if err != nil {
		return fail(err)
	}
	defer cleanup()

	rawPath := path + ".tmp"
	defer os.Remove(rawPath)
	if err := r.print(ctx, htmlPath, rawPath); err != nil {
		return fail(err)
	}

	props := map[string]string{
		"Season":    doc.Season,
		"Batch":     fmt.Sprint(doc.Batch),
		"Episodes":  fmt.Sprint(len(doc.Episodes)),
		"Generator": r.cfg.Author,
	}
	pages, err := Finalize(rawPath, path, props)
	if err != nil {
		return fail(err)
	}

	r.logger.Debug("pdf written", "path", path, "episodes", len(doc.Episodes), "pages", pages)
	return pages, nil
}

// writeHTML stores the page either next to the PDF (keep_html) or in a
// temp file that cleanup removes.
func (r *PDFRenderer) writeHTML(pdfPath string, html []byte) (string, func(), error) {
	if r.cfg.KeepHTML {
		p := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".html"
		if err := os.WriteFile(p, html, 0o644); err != nil {
			return "", nil, fmt.Errorf("write html: %w", err)
		}
		return p, func() {}, nil
	}

	f, err := os.CreateTemp("", "episodepdf-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("create temp html: %w", err)
	}
	name := f.Name()
	cleanup := func() { _ = os.Remove(name) }
	if _, err := f.Write(html); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp html: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp html: %w", err)
	}
	return name, cleanup, nil
}

func (r *PDFRenderer) print(ctx context.Context, htmlPath, outPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}
	pageURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("load page: %w", err)
	}
	if r.printWait > 0 {
		if err := page.WaitStable(r.printWait); err != nil {
			r.logger.Warn("page did not settle before printing", "error", err)
		}
	}

	margin := gson.Num(r.cfg.MarginPt / pointsPerIn)
	req := &proto.PagePrintToPDF{
		PaperWidth:      gson.Num(a4WidthIn),
		PaperHeight:     gson.Num(a4HeightIn),
		MarginTop:       margin,
		MarginBottom:    margin,
		MarginLeft:      margin,
		MarginRight:     margin,
		PrintBackground: true,
	}
	if r.cfg.PageNumbers {
		req.DisplayHeaderFooter = true
		req.HeaderTemplate = "<span></span>"
		req.FooterTemplate = footerTemplate
	}

	stream, err := page.PDF(req)
	if err != nil {
		return fmt.Errorf("print to pdf: %w", err)
	}
	defer stream.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if _, err := io.Copy(out, stream); err != nil {
		out.Close()
		return fmt.Errorf("write pdf: %w", err)
	}
	return out.Close()
}
