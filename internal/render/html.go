// Package render lays out episode records as HTML and prints them to PDF
// with headless Chromium.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strconv"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

// Document is one output file: the episodes of a single batch.
type Document struct {
	Title    string
	Season   string
	Batch    int
	Episodes []*types.Episode
}

// OutputPath returns the file path for batch n of a season.
func OutputPath(dir, pattern, season string, n int) string {
	return filepath.Join(dir, fmt.Sprintf(pattern, season, n))
}

type episodeView struct {
	Title    string
	Failed   bool
	Lead     string
	Summary  []string
	Events   []string
	Bulleted bool
}

type documentView struct {
	Title          string
	FontFace       template.CSS
	FontStack      template.CSS
	Margin         template.CSS
	SummaryHeading string
	EventsHeading  string
	Bullet         string
	Episodes       []episodeView
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
{{.FontFace}}
@page { size: A4; margin: {{.Margin}}; }
body { margin: 0; font-family: {{.FontStack}}; }
p { margin: 0; }
.title { font-size: 12pt; line-height: 16pt; margin-bottom: 12pt; text-align: center; }
.normal { font-size: 10pt; line-height: 14pt; margin: 6pt 0; text-align: justify; line-break: strict; overflow-wrap: anywhere; }
.summary { font-size: 10pt; line-height: 14pt; margin: 12pt 0 6pt; text-align: justify; }
.bullet { padding-left: 2em; }
.gap-6 { height: 6pt; }
.gap-12 { height: 12pt; }
.gap-30 { height: 30pt; }
</style>
</head>
<body>
{{- range .Episodes}}
<section class="episode">
<p class="title">{{.Title}}</p>
<div class="gap-12"></div>
{{- if not .Failed}}
<p class="normal">{{.Lead}}</p>
<div class="gap-12"></div>
{{- if .Summary}}
<p class="summary">{{$.SummaryHeading}}</p>
<div class="gap-6"></div>
{{- range .Summary}}
<p class="normal">{{.}}</p>
{{- end}}
<div class="gap-12"></div>
{{- end}}
{{- if .Events}}
<p class="summary">{{$.EventsHeading}}</p>
<div class="gap-6"></div>
{{- $bulleted := .Bulleted}}
{{- range .Events}}
{{- if $bulleted}}
<p class="normal bullet">{{$.Bullet}} {{.}}</p>
{{- else}}
<p class="normal">{{.}}</p>
{{- end}}
{{- end}}
{{- end}}
{{- end}}
</section>
<div class="gap-30"></div>
{{- end}}
</body>
</html>
`))

// BuildHTML lays out the episodes of doc as a printable HTML page. All
// episode text is escaped.
func BuildHTML(doc Document, text config.TextConfig, font Font, marginPt float64) ([]byte, error) {
	view := documentView{
		Title:          doc.Title,
		FontFace:       font.fontFace(),
		FontStack:      font.stack(),
		Margin:         template.CSS(strconv.FormatFloat(marginPt, 'f', -1, 64) + "pt"),
		SummaryHeading: text.SummaryHeading,
		EventsHeading:  text.EventsHeading,
		Bullet:         text.Bullet,
		Episodes:       make([]episodeView, 0, len(doc.Episodes)),
	}

	for _, ep := range doc.Episodes {
		view.Episodes = append(view.Episodes, episodeView{
			Title:    ep.Title(),
			Failed:   ep.Failed(),
			Lead:     ep.Lead,
			Summary:  ep.Summary,
			Events:   ep.Events,
			Bulleted: !ep.IsMissing(types.SectionMainEvents),
		})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}
