package render

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
)

// embeddedFamily is the CSS family name given to the font file found on the
// host.
const embeddedFamily = "EpisodeCJK"

// Font is a font file embedded into the rendered document.
type Font struct {
	Path   string
	Family string
}

// FindFont returns the first candidate that exists as a regular file.
func FindFont(candidates []string) (Font, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			abs = c
		}
		return Font{Path: abs, Family: embeddedFamily}, true
	}
	return Font{}, false
}

// LoadFont looks up a CJK font and logs which one is used. When none of
// the candidates exist it warns and returns the zero Font, which renders
// with the generic sans-serif family.
func LoadFont(candidates []string, logger *slog.Logger) Font {
	font, ok := FindFont(candidates)
	if !ok {
		logger.Warn("no CJK font found, text may not display correctly", "candidates", len(candidates))
		return Font{}
	}
	logger.Info("loaded CJK font", "path", font.Path)
	return font
}

// fontFace returns the @font-face rule for f, or "" for the zero Font.
func (f Font) fontFace() template.CSS {
	if f.Path == "" {
		return ""
	}
	src := (&url.URL{Scheme: "file", Path: filepath.ToSlash(f.Path)}).String()
	return template.CSS(fmt.Sprintf("@font-face { font-family: %q; src: url(%q); }", f.Family, src))
}

// stack returns the CSS font-family value.
func (f Font) stack() template.CSS {
	if f.Family == "" {
		return "sans-serif"
	}
	return template.CSS(fmt.Sprintf("%q, sans-serif", f.Family))
}
