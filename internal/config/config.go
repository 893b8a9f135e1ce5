package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for episodepdf.
type Config struct {
	Input   InputConfig   `mapstructure:"input"   yaml:"input"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Parser  ParserConfig  `mapstructure:"parser"  yaml:"parser"`
	Text    TextConfig    `mapstructure:"text"    yaml:"text"`
	Render  RenderConfig  `mapstructure:"render"  yaml:"render"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// InputConfig locates season directories and their files.
type InputConfig struct {
	Root      string `mapstructure:"root"       yaml:"root"`
	URLsFile  string `mapstructure:"urls_file"  yaml:"urls_file"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay"  yaml:"politeness_delay"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	AcceptLanguage  string        `mapstructure:"accept_language"   yaml:"accept_language"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"`
}

// ParserConfig controls how episode pages are read.
type ParserConfig struct {
	LabelPattern     string    `mapstructure:"label_pattern"      yaml:"label_pattern"`
	Lead             ParseRule `mapstructure:"lead"               yaml:"lead"`
	SummaryAnchors   []string  `mapstructure:"summary_anchors"    yaml:"summary_anchors"`
	MainEventAnchors []string  `mapstructure:"main_event_anchors" yaml:"main_event_anchors"`
}

// ParseRule defines a single extraction rule.
type ParseRule struct {
	Selector string `mapstructure:"selector" yaml:"selector"`
	Type     string `mapstructure:"type"     yaml:"type"` // css, xpath
}

// TextConfig controls the text pipeline and the assembled text block.
type TextConfig struct {
	Convert            string `mapstructure:"convert"              yaml:"convert"`
	SummaryHeading     string `mapstructure:"summary_heading"      yaml:"summary_heading"`
	EventsHeading      string `mapstructure:"events_heading"       yaml:"events_heading"`
	Bullet             string `mapstructure:"bullet"               yaml:"bullet"`
	LeadPlaceholder    string `mapstructure:"lead_placeholder"     yaml:"lead_placeholder"`
	SummaryPlaceholder string `mapstructure:"summary_placeholder"  yaml:"summary_placeholder"`
	EventsPlaceholder  string `mapstructure:"events_placeholder"   yaml:"events_placeholder"`
}

// RenderConfig controls PDF output.
type RenderConfig struct {
	BatchSize   int      `mapstructure:"batch_size"   yaml:"batch_size"`
	FilePattern string   `mapstructure:"file_pattern" yaml:"file_pattern"`
	Fonts       []string `mapstructure:"fonts"        yaml:"fonts"`
	MarginPt    float64  `mapstructure:"margin_pt"    yaml:"margin_pt"`
	PageNumbers bool     `mapstructure:"page_numbers" yaml:"page_numbers"`
	KeepHTML    bool     `mapstructure:"keep_html"    yaml:"keep_html"`
	Author      string   `mapstructure:"author"       yaml:"author"`
}

// BrowserConfig controls the headless Chromium shared by the browser
// fetcher and the PDF renderer.
type BrowserConfig struct {
	Bin        string        `mapstructure:"bin"         yaml:"bin"`
	NoSandbox  bool          `mapstructure:"no_sandbox"  yaml:"no_sandbox"`
	PrintWait  time.Duration `mapstructure:"print_wait"  yaml:"print_wait"`
	WindowSize string        `mapstructure:"window_size" yaml:"window_size"`
}

// ArchiveConfig controls the optional record archive.
type ArchiveConfig struct {
	Type       string `mapstructure:"type"       yaml:"type"` // "", json, jsonl, csv, mongodb, or a comma list
	Dir        string `mapstructure:"dir"        yaml:"dir"`
	MongoURI   string `mapstructure:"mongo_uri"  yaml:"mongo_uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level    string `mapstructure:"level"    yaml:"level"`
	Format   string `mapstructure:"format"   yaml:"format"`
	Progress bool   `mapstructure:"progress" yaml:"progress"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Root:      ".",
			URLsFile:  "urls.txt",
			OutputDir: "pdf",
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			PolitenessDelay: 1 * time.Second,
			RequestTimeout:  30 * time.Second,
			UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AcceptLanguage:  "zh-CN,zh;q=0.9,en;q=0.8",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
		},
		Parser: ParserConfig{
			LabelPattern: `(第\d+集)`,
			Lead: ParseRule{
				Selector: "p",
				Type:     "css",
			},
			SummaryAnchors:   []string{".E6.91.98.E8.A6.81", "摘要", "summary"},
			MainEventAnchors: []string{".E4.B8.BB.E8.A6.81.E4.BA.8B.E4.BB.B6", "主要事件", "main-events"},
		},
		Text: TextConfig{
			Convert:            "s2t",
			SummaryHeading:     "摘要",
			EventsHeading:      "主要事件：",
			Bullet:             "•",
			LeadPlaceholder:    "No first paragraph found",
			SummaryPlaceholder: "No summary found.",
			EventsPlaceholder:  "No main events found.",
		},
		Render: RenderConfig{
			BatchSize:   20,
			FilePattern: "%s_episodes_part%d.pdf",
			Fonts: []string{
				"/System/Library/Fonts/STHeiti Light.ttc",
				"/System/Library/Fonts/STHeiti Medium.ttc",
				"/Library/Fonts/Arial Unicode.ttf",
				"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
				"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
				"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
			},
			MarginPt:    48,
			PageNumbers: true,
			Author:      "episodepdf",
		},
		Browser: BrowserConfig{
			NoSandbox:  true,
			PrintWait:  500 * time.Millisecond,
			WindowSize: "1280,1696",
		},
		Archive: ArchiveConfig{
			Dir:        "archive",
			Database:   "episodepdf",
			Collection: "episodes",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Progress: true,
		},
	}
}
