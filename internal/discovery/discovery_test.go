package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGGUFScanner_ScanFiltersGGUF(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"b.gguf",
		"a.GGUF", // case-insensitive
		"not-model.txt",
		"model.bin",
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(""), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	paths, err := NewGGUFScanner().Scan(dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 models, got %v", paths)
	}
	if filepath.Base(paths[0]) != "a.GGUF" || filepath.Base(paths[1]) != "b.gguf" {
		t.Fatalf("unexpected order: %v", paths)
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			t.Fatalf("path not absolute: %s", p)
		}
	}
}

func TestScannerCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"m.bin", "m.gguf"} {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	s := &Scanner{Extensions: []string{".bin"}}
	paths, err := s.Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "m.bin" {
		t.Fatalf("unexpected: %v", paths)
	}
}

func TestGGUFScanner_ExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	if err := os.MkdirAll(filepath.Join(home, "models"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, "models", "x.gguf"), []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	paths, err := LoadDir("~/models")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "x.gguf" {
		t.Fatalf("unexpected models: %v", paths)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
