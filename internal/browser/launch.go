// Package browser launches the headless Chromium shared by the browser
// fetcher and the PDF renderer.
package browser

import (
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/IshaanNene/episodepdf/internal/config"
)

// Launch starts a headless Chromium and connects to it. An empty Bin lets
// the launcher locate or download a browser.
func Launch(cfg config.BrowserConfig, logger *slog.Logger) (*rod.Browser, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.WindowSize != "" {
		l = l.Set("window-size", cfg.WindowSize)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	logger.Debug("browser ready", "component", "browser", "control_url", controlURL)
	return b, nil
}
