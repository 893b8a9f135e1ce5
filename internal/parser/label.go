package parser

import (
	"fmt"
	"net/url"
	"regexp"
)

// LabelParser extracts an episode label (e.g. "第12集") from a source URL.
type LabelParser struct {
	re *regexp.Regexp
}

// NewLabelParser compiles the label pattern.
func NewLabelParser(pattern string) (*LabelParser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return &LabelParser{re: re}, nil
}

// Label matches the pattern against the percent-decoded URL and returns the
// first capture group, the whole match when the pattern has no groups, or
// "" when nothing matches.
func (p *LabelParser) Label(rawURL string) string {
	decoded, err := url.PathUnescape(rawURL)
	if err != nil {
		decoded = rawURL
	}

	match := p.re.FindStringSubmatch(decoded)
	switch {
	case match == nil:
		return ""
	case len(match) > 1:
		return match[1]
	default:
		return match[0]
	}
}
