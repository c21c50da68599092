// Package discovery finds model files on disk for preloading.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"inferplug/internal/common/fsutil"
)

// DefaultExtensions are the model file suffixes picked up when a Scanner has none.
var DefaultExtensions = []string{".gguf"}

// Scanner lists model files in a directory. It does not recurse.
type Scanner struct {
	// Extensions are matched case-insensitively, including the dot.
	Extensions []string
}

// NewGGUFScanner returns a scanner for *.gguf files.
func NewGGUFScanner() *Scanner { return &Scanner{Extensions: DefaultExtensions} }

// Scan returns the absolute paths of matching files in dir, sorted.
// A leading '~' in dir is expanded to the user's home directory.
func (s *Scanner) Scan(dir string) ([]string, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !fsutil.HasExt(e.Name(), exts...) {
			continue
		}
		paths = append(paths, filepath.Join(abs, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDir scans dir for *.gguf files.
func LoadDir(dir string) ([]string, error) {
	return NewGGUFScanner().Scan(dir)
}
