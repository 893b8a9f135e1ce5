package types

import (
	"errors"
	"testing"
)

func TestEpisodeTitle(t *testing.T) {
	tests := []struct {
		name string
		ep   *Episode
		want string
	}{
		{"label", &Episode{Label: "AG001", URL: "https://wiki.52poke.com/wiki/x"}, "AG001"},
		{"url segment", &Episode{URL: "https://wiki.52poke.com/wiki/%E7%AC%AC1%E9%9B%86_A"}, "第1集 A"},
		{"no path", &Episode{URL: "https://wiki.52poke.com"}, "https://wiki.52poke.com"},
		{"failed", NewFailedEpisode(1, "https://x/y", errors.New("boom")), "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ep.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkMissing(t *testing.T) {
	ep := NewEpisode(1, "https://x/y")
	ep.MarkMissing(SectionLead)
	ep.MarkMissing(SectionLead)
	ep.MarkMissing(SectionMainEvents)

	if len(ep.Missing) != 2 {
		t.Fatalf("expected 2 missing sections, got %v", ep.Missing)
	}
	if !ep.IsMissing(SectionMainEvents) || ep.IsMissing(SectionSummary) {
		t.Errorf("unexpected missing set: %v", ep.Missing)
	}
}

func TestToMapFailed(t *testing.T) {
	ep := NewFailedEpisode(2, "https://x/y", errors.New("timeout"))
	m := ep.ToMap()
	if m["error"] != "Error: timeout" {
		t.Errorf("unexpected error field: %v", m["error"])
	}
	if m["text"] != ep.Text {
		t.Errorf("text field should mirror the record, got %v", m["text"])
	}
	if _, ok := m["summary"]; ok {
		t.Error("failed episode should not carry structured fields")
	}
}
