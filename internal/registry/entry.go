package registry

import (
	"sync/atomic"
	"time"

	"inferplug/internal/engine"
)

// State represents the lifecycle state of an entry.
type State string

const (
	StateReady    State = "ready"
	StateDraining State = "draining"
)

// entry is one loaded model. handle is only touched while slot is held.
type entry struct {
	path     string
	handle   engine.Handle
	loadedAt time.Time
	// slot has capacity 1: a single call into the handle at a time.
	slot chan struct{}

	lastUsed    atomic.Int64 // unix nanos
	generations atomic.Uint64
	draining    atomic.Bool
	// retired is set once the handle is closed; guarded by slot.
	retired bool
}

func newEntry(path string, h engine.Handle) *entry {
	now := time.Now()
	e := &entry{
		path:     path,
		handle:   h,
		loadedAt: now,
		slot:     make(chan struct{}, 1),
	}
	e.lastUsed.Store(now.UnixNano())
	return e
}

func (e *entry) state() State {
	if e.draining.Load() {
		return StateDraining
	}
	return StateReady
}
