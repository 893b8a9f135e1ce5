package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/episodepdf/internal/assemble"
	"github.com/IshaanNene/episodepdf/internal/batch"
	"github.com/IshaanNene/episodepdf/internal/browser"
	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/fetcher"
	"github.com/IshaanNene/episodepdf/internal/observability"
	"github.com/IshaanNene/episodepdf/internal/render"
	"github.com/IshaanNene/episodepdf/internal/season"
	"github.com/IshaanNene/episodepdf/internal/storage"
	"github.com/IshaanNene/episodepdf/internal/urls"
)

type buildFlags struct {
	root        string
	delay       time.Duration
	batchSize   int
	fetcherType string
	convert     string
	archive     string
	noProgress  bool
	keepHTML    bool
	metricsFile string
}

// buildCmd creates the "build" subcommand.
func buildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build <season>",
		Short: "Fetch a season's episode pages and render them to PDF",
		Example: `  episodepdf build 1997
  episodepdf build advanced_generation --delay 2s --archive jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], &flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "directory holding the season folders (default from config)")
	cmd.Flags().DurationVar(&flags.delay, "delay", 0, "politeness delay before every request")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "episodes per PDF file")
	cmd.Flags().StringVar(&flags.fetcherType, "fetcher", "", "page fetcher: http or browser")
	cmd.Flags().StringVar(&flags.convert, "convert", "", "OpenCC profile for script conversion, or none")
	cmd.Flags().StringVar(&flags.archive, "archive", "", "also archive records: json, jsonl, csv, mongodb (comma-separated)")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "disable progress bars")
	cmd.Flags().BoolVar(&flags.keepHTML, "keep-html", false, "keep the HTML printed for each PDF")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write run counters in Prometheus text format to this file")

	return cmd
}

func runBuild(cmd *cobra.Command, name string, flags *buildFlags) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyBuildOverrides(cmd, cfg, flags)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	s, err := season.Resolve(cfg.Input.Root, name, cfg.Input)
	if err != nil {
		return err
	}
	list, err := urls.Load(s.URLsFile)
	if err != nil {
		return err
	}
	if err := s.EnsureOutputDir(); err != nil {
		return err
	}

	logger.Info("starting build",
		"season", s.Name,
		"urls", len(list),
		"urls_file", s.URLsFile,
		"output", s.OutputDir,
		"fetcher", cfg.Fetcher.Type,
		"batch_size", cfg.Render.BatchSize,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, stopping after the current page", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	b, err := browser.Launch(cfg.Browser, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	// the browser fetcher shares the renderer's Chromium
	var f fetcher.Fetcher
	switch cfg.Fetcher.Type {
	case "browser":
		f = fetcher.NewPolite(fetcher.NewBrowserFetcherWith(b, &cfg.Fetcher, logger), cfg.Fetcher.PolitenessDelay, logger)
	default:
		if f, err = fetcher.New(cfg, logger); err != nil {
			return fmt.Errorf("create fetcher: %w", err)
		}
	}
	defer f.Close()

	asm, err := assemble.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create assembler: %w", err)
	}

	metrics := observability.NewMetrics(logger)
	options := []batch.Option{batch.WithMetrics(metrics)}

	archive, err := storage.NewArchive(cfg.Archive, s.Path(cfg.Archive.Dir), s.Name, logger)
	if err != nil {
		return err
	}
	if archive != nil {
		defer func() {
			if err := archive.Close(); err != nil {
				logger.Error("archive close failed", "error", err)
			}
		}()
		options = append(options, batch.WithStorage(archive))
	}

	driver := batch.NewDriver(f, asm, render.NewPDFRenderer(b, cfg, logger), batch.Options{
		Season:      s.Name,
		OutputDir:   s.OutputDir,
		FilePattern: cfg.Render.FilePattern,
		BatchSize:   cfg.Render.BatchSize,
		Progress:    cfg.Logging.Progress,
	}, logger, options...)

	result, runErr := driver.Run(ctx, list)
	metrics.LogSummary()
	if flags.metricsFile != "" {
		if err := writeMetrics(flags.metricsFile, metrics); err != nil {
			logger.Warn("failed to write metrics file", "path", flags.metricsFile, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	printSummary(result, s.OutputDir)
	return nil
}

func writeMetrics(path string, m *observability.Metrics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(res *batch.Result, outputDir string) {
	fmt.Printf("\n✅ All batches completed in %s\n", res.Duration.Round(time.Millisecond))
	fmt.Printf("   Episodes:  %d (%d failed)\n", res.Episodes, res.Failed)
	fmt.Printf("   Files:     %d, %d pages\n", len(res.Files), res.Pages)
	fmt.Printf("   Output:    %s\n", outputDir)
}

// applyBuildOverrides applies explicitly set command-line flags to the config.
func applyBuildOverrides(cmd *cobra.Command, cfg *config.Config, flags *buildFlags) {
	changed := cmd.Flags().Changed

	if changed("root") {
		cfg.Input.Root = flags.root
	}
	if changed("delay") {
		cfg.Fetcher.PolitenessDelay = flags.delay
	}
	if changed("batch-size") {
		cfg.Render.BatchSize = flags.batchSize
	}
	if changed("fetcher") {
		cfg.Fetcher.Type = strings.ToLower(flags.fetcherType)
	}
	if changed("convert") {
		cfg.Text.Convert = strings.ToLower(flags.convert)
	}
	if changed("archive") {
		cfg.Archive.Type = flags.archive
	}
	if flags.noProgress {
		cfg.Logging.Progress = false
	}
	if flags.keepHTML {
		cfg.Render.KeepHTML = true
	}
}
