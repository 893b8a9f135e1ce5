package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Input.URLsFile) == "" {
		return fmt.Errorf("input.urls_file must not be empty")
	}
	if strings.TrimSpace(cfg.Input.OutputDir) == "" {
		return fmt.Errorf("input.output_dir must not be empty")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.PolitenessDelay < 0 {
		return fmt.Errorf("fetcher.politeness_delay must be >= 0")
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if _, err := regexp.Compile(cfg.Parser.LabelPattern); err != nil {
		return fmt.Errorf("parser.label_pattern: %w", err)
	}
	if cfg.Parser.Lead.Type != "css" && cfg.Parser.Lead.Type != "xpath" {
		return fmt.Errorf("parser.lead.type must be 'css' or 'xpath', got %q", cfg.Parser.Lead.Type)
	}
	if strings.TrimSpace(cfg.Parser.Lead.Selector) == "" {
		return fmt.Errorf("parser.lead.selector must not be empty")
	}
	if len(cfg.Parser.SummaryAnchors) == 0 {
		return fmt.Errorf("parser.summary_anchors must list at least one id")
	}
	if len(cfg.Parser.MainEventAnchors) == 0 {
		return fmt.Errorf("parser.main_event_anchors must list at least one id")
	}

	if cfg.Text.Convert != "none" && cfg.Text.Convert != "" && !validConversions[cfg.Text.Convert] {
		return fmt.Errorf("text.convert %q is not supported", cfg.Text.Convert)
	}

	if cfg.Render.BatchSize < 1 {
		return fmt.Errorf("render.batch_size must be >= 1, got %d", cfg.Render.BatchSize)
	}
	if !validFilePattern(cfg.Render.FilePattern) {
		return fmt.Errorf("render.file_pattern must contain one %%s verb followed by one %%d verb, got %q", cfg.Render.FilePattern)
	}
	if cfg.Render.MarginPt < 0 {
		return fmt.Errorf("render.margin_pt must be >= 0")
	}

	for _, t := range ArchiveTypes(cfg.Archive.Type) {
		switch t {
		case "json", "jsonl", "csv":
		case "mongodb":
			if cfg.Archive.MongoURI == "" {
				return fmt.Errorf("archive.mongo_uri is required for the mongodb archive")
			}
		default:
			return fmt.Errorf("archive.type %q is not supported (valid: json, jsonl, csv, mongodb)", t)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json", "pretty":
	default:
		return fmt.Errorf("logging.format must be 'text', 'json' or 'pretty', got %q", cfg.Logging.Format)
	}

	return nil
}

// validConversions lists the OpenCC conversion profiles accepted by text.convert.
var validConversions = map[string]bool{
	"s2t": true, "t2s": true, "s2tw": true, "tw2s": true,
	"s2hk": true, "hk2s": true, "s2twp": true, "tw2sp": true,
}

// validFilePattern reports whether p holds exactly two verbs, a %s for the
// season and a later %d for the batch number.
func validFilePattern(p string) bool {
	if strings.Count(p, "%") != 2 {
		return false
	}
	season, batch := strings.Index(p, "%s"), strings.Index(p, "%d")
	return season >= 0 && batch > season
}

// ArchiveTypes splits the archive.type value into its backends.
func ArchiveTypes(value string) []string {
	var types []string
	for _, t := range strings.Split(value, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			types = append(types, t)
		}
	}
	return types
}

// ValidateURL checks if a URL string is valid for fetching.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
