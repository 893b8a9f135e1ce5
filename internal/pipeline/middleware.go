package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/longbridgeapp/opencc"
	"golang.org/x/text/unicode/norm"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

// --- Built-in Middleware ---

// NormalizeMiddleware trims every text field, collapses runs of whitespace
// and applies Unicode NFC. Empty summary paragraphs and events are removed.
type NormalizeMiddleware struct{}

func (m *NormalizeMiddleware) Name() string { return "normalize" }

func (m *NormalizeMiddleware) Process(ep *types.Episode) (*types.Episode, error) {
	ep.Label = normalize(ep.Label)
	ep.Lead = normalize(ep.Lead)
	ep.Summary = normalizeAll(ep.Summary)
	ep.Events = normalizeAll(ep.Events)
	return ep, nil
}

func normalize(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func normalizeAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := in[:0]
	for _, s := range in {
		if s = normalize(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// PlaceholderMiddleware substitutes placeholder text for sections that were
// not found and records them in Episode.Missing. Failed episodes pass
// through untouched.
type PlaceholderMiddleware struct {
	Lead    string
	Summary string
	Events  string
}

// NewPlaceholderMiddleware creates the placeholder stage from text config.
func NewPlaceholderMiddleware(cfg config.TextConfig) *PlaceholderMiddleware {
	return &PlaceholderMiddleware{
		Lead:    cfg.LeadPlaceholder,
		Summary: cfg.SummaryPlaceholder,
		Events:  cfg.EventsPlaceholder,
	}
}

func (m *PlaceholderMiddleware) Name() string { return "placeholders" }

func (m *PlaceholderMiddleware) Process(ep *types.Episode) (*types.Episode, error) {
	if ep.Failed() {
		return ep, nil
	}
	if ep.Lead == "" {
		ep.Lead = m.Lead
		ep.MarkMissing(types.SectionLead)
	}
	if len(ep.Summary) == 0 {
		ep.Summary = []string{m.Summary}
		ep.MarkMissing(types.SectionSummary)
	}
	if len(ep.Events) == 0 {
		ep.Events = []string{m.Events}
		ep.MarkMissing(types.SectionMainEvents)
	}
	return ep, nil
}

// ScriptConvertMiddleware converts Chinese text between scripts with an
// OpenCC profile such as "s2t".
type ScriptConvertMiddleware struct {
	profile string
	cc      *opencc.OpenCC
	logger  *slog.Logger
}

// NewScriptConvertMiddleware loads the OpenCC profile. It returns nil and no
// error for the profiles "" and "none", meaning the stage is disabled.
func NewScriptConvertMiddleware(profile string, logger *slog.Logger) (*ScriptConvertMiddleware, error) {
	if profile == "" || profile == "none" {
		return nil, nil
	}
	cc, err := opencc.New(profile)
	if err != nil {
		return nil, fmt.Errorf("load opencc profile %q: %w", profile, err)
	}
	return &ScriptConvertMiddleware{
		profile: profile,
		cc:      cc,
		logger:  logger.With("component", "script_convert", "profile", profile),
	}, nil
}

func (m *ScriptConvertMiddleware) Name() string { return "script_convert" }

func (m *ScriptConvertMiddleware) Process(ep *types.Episode) (*types.Episode, error) {
	var err error
	convert := func(s string) string {
		if err != nil || s == "" {
			return s
		}
		var out string
		out, err = m.cc.Convert(s)
		return out
	}

	if ep.Failed() {
		ep.Err = convert(ep.Err)
		if err != nil {
			return nil, err
		}
		return ep, nil
	}

	ep.Label = convert(ep.Label)
	ep.Lead = convert(ep.Lead)
	for i := range ep.Summary {
		ep.Summary[i] = convert(ep.Summary[i])
	}
	for i := range ep.Events {
		ep.Events[i] = convert(ep.Events[i])
	}
	if err != nil {
		return nil, err
	}
	return ep, nil
}

// NewTextPipeline builds the standard chain: normalize, placeholders, then
// script conversion when enabled.
func NewTextPipeline(cfg config.TextConfig, logger *slog.Logger) (*Pipeline, error) {
	p := New(logger)
	p.Use(&NormalizeMiddleware{})
	p.Use(NewPlaceholderMiddleware(cfg))

	conv, err := NewScriptConvertMiddleware(cfg.Convert, logger)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		p.Use(conv)
	}
	return p, nil
}
