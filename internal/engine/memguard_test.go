package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"inferplug/pkg/types"
)

type nopHandle struct{ path string }

func (h nopHandle) Generate(context.Context, types.GenerateRequest) (types.GenerateResponse, error) {
	return types.GenerateResponse{}, nil
}
func (h nopHandle) Info() types.ModelInfo { return fileInfo(h.path) }
func (h nopHandle) Close() error          { return nil }

func writeModel(t *testing.T, size int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "m.gguf")
	if err := os.WriteFile(p, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func countingEngine(calls *int) Engine {
	return Func(func(_ context.Context, path string) (Handle, error) {
		*calls++
		return nopHandle{path: path}, nil
	})
}

func TestMemoryGuardDisabled(t *testing.T) {
	var calls int
	next := countingEngine(&calls)
	g := WithMemoryGuard(next, 0, func() (uint64, error) { return 0, nil })
	if _, err := g.Load(context.Background(), writeModel(t, 10)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected passthrough, calls=%d", calls)
	}
}

func TestMemoryGuardRefusesWhenShort(t *testing.T) {
	var calls int
	g := WithMemoryGuard(countingEngine(&calls), 64, func() (uint64, error) { return 32 << 20, nil })
	_, err := g.Load(context.Background(), writeModel(t, 1024))
	if !IsInsufficientMemory(err) {
		t.Fatalf("expected insufficient memory, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("engine should not be called")
	}
}

func TestMemoryGuardAllowsWhenRoomy(t *testing.T) {
	var calls int
	g := WithMemoryGuard(countingEngine(&calls), 64, func() (uint64, error) { return 1 << 30, nil })
	h, err := g.Load(context.Background(), writeModel(t, 1024))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info := h.Info(); info.Name != "m.gguf" || info.Size != 1024 || !info.Loaded {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestMemoryGuardDefersOnProbeOrStatError(t *testing.T) {
	var calls int
	g := WithMemoryGuard(countingEngine(&calls), 64, func() (uint64, error) { return 0, errors.New("no proc") })
	if _, err := g.Load(context.Background(), writeModel(t, 8)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := g.Load(context.Background(), "/does/not/exist.gguf"); err != nil {
		t.Fatalf("missing file should reach the backend: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d", calls)
	}
}
