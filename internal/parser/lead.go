package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/IshaanNene/episodepdf/internal/config"
)

// LeadLocator finds the introductory paragraph of a page using a CSS or
// XPath rule.
type LeadLocator struct {
	rule   config.ParseRule
	expr   *xpath.Expr
	logger *slog.Logger
}

// NewLeadLocator creates a locator for the given rule. An empty rule type
// defaults to CSS.
func NewLeadLocator(rule config.ParseRule, logger *slog.Logger) (*LeadLocator, error) {
	var expr *xpath.Expr
	switch rule.Type {
	case "", "css":
		rule.Type = "css"
	case "xpath":
		compiled, err := xpath.Compile(rule.Selector)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", rule.Selector, err)
		}
		expr = compiled
	default:
		return nil, fmt.Errorf("unsupported lead rule type %q", rule.Type)
	}

	return &LeadLocator{
		rule:   rule,
		expr:   expr,
		logger: logger.With("component", "lead_locator", "type", rule.Type),
	}, nil
}

// Lead returns the trimmed text of the first matching element, or "" when
// nothing matches.
func (l *LeadLocator) Lead(doc *goquery.Document) string {
	var text string
	if l.rule.Type == "xpath" {
		text = l.leadXPath(doc)
	} else {
		text = strings.TrimSpace(doc.Find(l.rule.Selector).First().Text())
	}
	if text == "" {
		l.logger.Debug("lead paragraph not found", "selector", l.rule.Selector)
	}
	return text
}

func (l *LeadLocator) leadXPath(doc *goquery.Document) string {
	if len(doc.Nodes) == 0 {
		return ""
	}
	node := htmlquery.QuerySelector(doc.Nodes[0], l.expr)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}
