// Package urls reads and generates the per-season URL list.
package urls

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

// Defaults for Generate, matching the wiki the list was first built for.
const (
	DefaultBase  = "https://wiki.52poke.com/wiki/"
	DefaultTitle = "宝可梦_超世代_第{n}集"
)

// Load reads one URL per line. Blank lines and lines starting with '#' are
// skipped and surrounding whitespace is trimmed. An empty list is
// ErrNoURLs.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list at line %d: %w", lineNum, err)
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%w in %s", types.ErrNoURLs, path)
	}
	return list, nil
}

// Generate builds count URLs starting at episode start. Each URL is base
// followed by the percent-encoded title, with {n} replaced by the episode
// number.
func Generate(base, title string, start, count int) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be >= 1, got %d", count)
	}
	if !strings.Contains(title, "{n}") {
		return nil, fmt.Errorf("title template %q has no {n} placeholder", title)
	}
	if err := config.ValidateURL(base); err != nil {
		return nil, fmt.Errorf("%w %q: %v", types.ErrInvalidURL, base, err)
	}

	out := make([]string, 0, count)
	for n := start; n < start+count; n++ {
		t := strings.ReplaceAll(title, "{n}", strconv.Itoa(n))
		out = append(out, base+url.PathEscape(t))
	}
	return out, nil
}

// Write stores the list one URL per line, creating parent directories.
func Write(path string, list []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create url list: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, u := range list {
		if _, err := w.WriteString(u + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write url list: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write url list: %w", err)
	}
	return f.Close()
}
