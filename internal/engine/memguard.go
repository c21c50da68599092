package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryProbe reports available system memory in bytes.
type MemoryProbe func() (uint64, error)

// SystemMemory reads available memory from the OS.
func SystemMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// memoryGuard refuses to load a model whose file would not fit in available
// memory while keeping marginMB free.
type memoryGuard struct {
	next     Engine
	marginMB uint64
	probe    MemoryProbe
}

// WithMemoryGuard wraps next so loads fail fast when the model file plus
// marginMB exceeds available memory. A zero margin disables the guard.
func WithMemoryGuard(next Engine, marginMB int, probe MemoryProbe) Engine {
	if marginMB <= 0 {
		return next
	}
	if probe == nil {
		probe = SystemMemory
	}
	return &memoryGuard{next: next, marginMB: uint64(marginMB), probe: probe}
}

func (g *memoryGuard) Load(ctx context.Context, path string) (Handle, error) {
	fi, err := os.Stat(path)
	if err != nil {
		// Let the backend report missing files in its own words.
		return g.next.Load(ctx, path)
	}
	avail, err := g.probe()
	if err != nil {
		return g.next.Load(ctx, path)
	}
	need := uint64(fi.Size()) + g.marginMB*1024*1024
	if need > avail {
		return nil, insufficientMemoryError{msg: fmt.Sprintf(
			"insufficient memory: need %d MB (model %d MB + margin %d MB), available %d MB",
			need>>20, uint64(fi.Size())>>20, g.marginMB, avail>>20)}
	}
	return g.next.Load(ctx, path)
}
