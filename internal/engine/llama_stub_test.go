//go:build !llama

package engine

import (
	"context"
	"testing"
)

func TestStubRefusesLoad(t *testing.T) {
	e := NewLlama(Options{})
	_, err := e.Load(context.Background(), "/models/x.gguf")
	if !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if _, err := e.Load(context.Background(), "  "); err != errEmptyPath {
		t.Fatalf("expected empty path error, got %v", err)
	}
}

func TestStubSanityReport(t *testing.T) {
	r := SanityCheck()
	if r.Available || r.Error == "" || r.Name != "llama.cpp" {
		t.Fatalf("unexpected report: %+v", r)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.ContextSize != 2048 || o.Threads != 1 || o.DefaultMaxTokens != 256 {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	o = Options{ContextSize: 512, Threads: 4}.withDefaults()
	if o.ContextSize != 512 || o.Threads != 4 {
		t.Fatalf("overrides lost: %+v", o)
	}
}
