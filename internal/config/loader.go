package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied by the caller after Load returns.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("EPISODEPDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("episodepdf")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".episodepdf"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides bind.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("input.root", cfg.Input.Root)
	v.SetDefault("input.urls_file", cfg.Input.URLsFile)
	v.SetDefault("input.output_dir", cfg.Input.OutputDir)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.politeness_delay", cfg.Fetcher.PolitenessDelay)
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.accept_language", cfg.Fetcher.AcceptLanguage)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)

	v.SetDefault("parser.label_pattern", cfg.Parser.LabelPattern)
	v.SetDefault("parser.lead.selector", cfg.Parser.Lead.Selector)
	v.SetDefault("parser.lead.type", cfg.Parser.Lead.Type)
	v.SetDefault("parser.summary_anchors", cfg.Parser.SummaryAnchors)
	v.SetDefault("parser.main_event_anchors", cfg.Parser.MainEventAnchors)

	v.SetDefault("text.convert", cfg.Text.Convert)
	v.SetDefault("text.summary_heading", cfg.Text.SummaryHeading)
	v.SetDefault("text.events_heading", cfg.Text.EventsHeading)
	v.SetDefault("text.bullet", cfg.Text.Bullet)
	v.SetDefault("text.lead_placeholder", cfg.Text.LeadPlaceholder)
	v.SetDefault("text.summary_placeholder", cfg.Text.SummaryPlaceholder)
	v.SetDefault("text.events_placeholder", cfg.Text.EventsPlaceholder)

	v.SetDefault("render.batch_size", cfg.Render.BatchSize)
	v.SetDefault("render.file_pattern", cfg.Render.FilePattern)
	v.SetDefault("render.fonts", cfg.Render.Fonts)
	v.SetDefault("render.margin_pt", cfg.Render.MarginPt)
	v.SetDefault("render.page_numbers", cfg.Render.PageNumbers)
	v.SetDefault("render.keep_html", cfg.Render.KeepHTML)
	v.SetDefault("render.author", cfg.Render.Author)

	v.SetDefault("browser.bin", cfg.Browser.Bin)
	v.SetDefault("browser.no_sandbox", cfg.Browser.NoSandbox)
	v.SetDefault("browser.print_wait", cfg.Browser.PrintWait)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)

	v.SetDefault("archive.type", cfg.Archive.Type)
	v.SetDefault("archive.dir", cfg.Archive.Dir)
	v.SetDefault("archive.mongo_uri", cfg.Archive.MongoURI)
	v.SetDefault("archive.database", cfg.Archive.Database)
	v.SetDefault("archive.collection", cfg.Archive.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.progress", cfg.Logging.Progress)
}
