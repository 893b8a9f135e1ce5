package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/urls"
)

// urlsCmd creates the "urls" subcommand that writes a season's URL list.
func urlsCmd() *cobra.Command {
	var (
		root  string
		count int
		start int
		base  string
		title string
	)

	cmd := &cobra.Command{
		Use:   "urls <season>",
		Short: "Generate a season's urls.txt from a page title template",
		Example: `  episodepdf urls advanced_generation --count 191
  episodepdf urls 1997 --count 276 --title "宝可梦_第{n}集"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("root") {
				cfg.Input.Root = root
			}
			logger := setupLogger(cfg.Logging)

			list, err := urls.Generate(base, title, start, count)
			if err != nil {
				return err
			}

			dir := filepath.Join(cfg.Input.Root, args[0])
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create season dir: %w", err)
			}
			path := filepath.Join(dir, cfg.Input.URLsFile)
			if err := urls.Write(path, list); err != nil {
				return err
			}

			logger.Info("url list written", "path", path, "count", len(list), "first", list[0])
			fmt.Printf("Wrote %d URLs to %s\n", len(list), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "directory holding the season folders (default from config)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of episodes")
	cmd.Flags().IntVar(&start, "start", 1, "first episode number")
	cmd.Flags().StringVar(&base, "base", urls.DefaultBase, "URL prefix the encoded title is appended to")
	cmd.Flags().StringVar(&title, "title", urls.DefaultTitle, "page title template; {n} is the episode number")
	_ = cmd.MarkFlagRequired("count")

	return cmd
}
