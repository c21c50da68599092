package registry

import (
	"context"
	"errors"
	"time"

	"inferplug/internal/engine"
)

var errNilHandle = errors.New("engine returned no handle")

// Load ensures a handle for path exists. Loading an already-loaded path is a
// successful no-op; it never reloads. On failure the registry is unchanged.
func (r *Registry) Load(ctx context.Context, path string) error {
	_, err := r.ensure(ctx, path)
	return err
}

// ensure returns the entry for path, constructing it if absent. Concurrent
// callers for the same path share one construction; ctx only bounds how long
// this caller waits for it.
func (r *Registry) ensure(ctx context.Context, path string) (*entry, error) {
	e, closed := r.lookup(path)
	if closed {
		return nil, ErrClosed()
	}
	if e != nil {
		return e, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := r.loads.DoChan(path, func() (any, error) {
		return r.load(loadCtx, path)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*entry), nil
	case <-ctx.Done():
		return nil, errWait(path, ctx.Err())
	}
}

// load constructs a handle outside the table lock and inserts it.
func (r *Registry) load(ctx context.Context, path string) (*entry, error) {
	if e, closed := r.lookup(path); closed {
		return nil, ErrClosed()
	} else if e != nil {
		return e, nil
	}

	start := time.Now()
	r.publisher.Publish(Event{Name: "load_start", Path: path})
	r.log.Debug().Str("path", path).Msg("load start")

	h, err := r.construct(ctx, path)
	if err != nil {
		r.metrics.observeLoad(false, time.Since(start))
		r.publisher.Publish(Event{Name: "load_failed", Path: path, Fields: map[string]any{"error": err.Error()}})
		r.log.Warn().Str("path", path).Err(err).Msg("load failed")
		if IsInternal(err) {
			return nil, err
		}
		return nil, ErrLoadFailed(path, err)
	}

	e := newEntry(path, h)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.closeHandle(e)
		return nil, ErrClosed()
	}
	if existing := r.entries[path]; existing != nil {
		r.mu.Unlock()
		r.closeHandle(e)
		return existing, nil
	}
	r.entries[path] = e
	n := len(r.entries)
	r.mu.Unlock()

	r.loadsTotal.Add(1)
	r.metrics.observeLoad(true, time.Since(start))
	r.metrics.setLoaded(n)
	r.publisher.Publish(Event{Name: "load_done", Path: path, Fields: map[string]any{"dur_ms": int(time.Since(start) / time.Millisecond)}})
	r.log.Info().Str("path", path).Dur("dur", time.Since(start)).Msg("model loaded")
	return e, nil
}

// construct calls the engine, converting a panic into an internal error.
func (r *Registry) construct(ctx context.Context, path string) (h engine.Handle, err error) {
	defer func() {
		if v := recover(); v != nil {
			h, err = nil, errPanic(path, "load", v)
		}
	}()
	h, err = r.engine.Load(ctx, path)
	if err == nil && h == nil {
		err = errNilHandle
	}
	return h, err
}
