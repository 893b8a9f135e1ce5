package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

// Fetcher is the interface for all request fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New builds the fetcher selected by cfg.Fetcher.Type, wrapped so that
// every request waits the politeness delay first.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	var (
		f   Fetcher
		err error
	)
	switch cfg.Fetcher.Type {
	case "http", "":
		f, err = NewHTTPFetcher(&cfg.Fetcher, logger)
	case "browser":
		f, err = NewBrowserFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrNoFetcher, cfg.Fetcher.Type)
	}
	if err != nil {
		return nil, err
	}
	return NewPolite(f, cfg.Fetcher.PolitenessDelay, logger), nil
}
