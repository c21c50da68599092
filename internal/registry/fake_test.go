package registry

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"inferplug/internal/engine"
	"inferplug/pkg/types"
)

// fakeEngine builds fakeHandles and records every construction per path.
type fakeEngine struct {
	mu     sync.Mutex
	loads  map[string]int
	fail   map[string]error
	delay  time.Duration
	panics bool
	// gate, if set, blocks every Generate until it is closed.
	gate    chan struct{}
	handles map[string][]*fakeHandle
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		loads:   map[string]int{},
		fail:    map[string]error{},
		handles: map[string][]*fakeHandle{},
	}
}

func (f *fakeEngine) Load(_ context.Context, path string) (engine.Handle, error) {
	f.mu.Lock()
	f.loads[path]++
	err := f.fail[path]
	delay, panics, gate := f.delay, f.panics, f.gate
	f.mu.Unlock()
	if panics {
		panic("boom")
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	h := &fakeHandle{path: path, gate: gate}
	f.mu.Lock()
	f.handles[path] = append(f.handles[path], h)
	f.mu.Unlock()
	return h, nil
}

func (f *fakeEngine) loadCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[path]
}

func (f *fakeEngine) handlesFor(path string) []*fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeHandle(nil), f.handles[path]...)
}

func (f *fakeEngine) setFail(path string, err error) {
	f.mu.Lock()
	f.fail[path] = err
	f.mu.Unlock()
}

// fakeHandle echoes the prompt and detects overlapping calls.
type fakeHandle struct {
	path string
	gate chan struct{}

	active      atomic.Int32
	overlapped  atomic.Bool
	calls       atomic.Int32
	closed      atomic.Bool
	usedClosed  atomic.Bool
	generateErr error
	panicOnGen  bool
}

func (h *fakeHandle) enter() {
	if h.active.Add(1) > 1 {
		h.overlapped.Store(true)
	}
	if h.closed.Load() {
		h.usedClosed.Store(true)
	}
	h.calls.Add(1)
}

func (h *fakeHandle) leave() { h.active.Add(-1) }

func (h *fakeHandle) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	h.enter()
	defer h.leave()
	if h.panicOnGen {
		panic("generate exploded")
	}
	if h.gate != nil {
		<-h.gate
	} else {
		time.Sleep(time.Millisecond)
	}
	if h.generateErr != nil {
		return types.GenerateResponse{}, h.generateErr
	}
	n := 16
	if req.MaxTokens != nil {
		n = *req.MaxTokens
	}
	return types.GenerateResponse{Text: "echo: " + req.Prompt, TokensGenerated: n, Stopped: false, StopReason: "length"}, nil
}

func (h *fakeHandle) Info() types.ModelInfo {
	h.enter()
	defer h.leave()
	return types.ModelInfo{Name: filepath.Base(h.path), Size: 42}
}

func (h *fakeHandle) Close() error {
	if h.active.Load() > 0 {
		h.usedClosed.Store(true)
	}
	h.closed.Store(true)
	return nil
}

var errBadFile = errors.New("file not found")

func newTestRegistry(t *testing.T, eng engine.Engine) *Registry {
	t.Helper()
	r, err := New(Config{Engine: eng})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.Close(ctx)
	})
	return r
}
