// Package season resolves the on-disk layout of one season: its directory,
// URL list and PDF output directory.
package season

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

// Season is a resolved season directory.
type Season struct {
	Name      string
	Dir       string
	URLsFile  string
	OutputDir string
}

// Resolve checks that <root>/<name> and its URL file exist. It never
// creates anything; see EnsureOutputDir.
func Resolve(root, name string, cfg config.InputConfig) (*Season, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("%w: invalid season name %q", types.ErrSeasonNotFound, name)
	}

	dir := filepath.Join(root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", types.ErrSeasonNotFound, name)
	}

	urlsFile := filepath.Join(dir, cfg.URLsFile)
	info, err = os.Stat(urlsFile)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w in %q directory", types.ErrURLsFileNotFound, name)
	}

	return &Season{
		Name:      name,
		Dir:       dir,
		URLsFile:  urlsFile,
		OutputDir: filepath.Join(dir, cfg.OutputDir),
	}, nil
}

// EnsureOutputDir creates the PDF output directory if needed.
func (s *Season) EnsureOutputDir() error {
	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// Path resolves p against the season directory unless it is absolute.
func (s *Season) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir, p)
}
