package registry

import (
	"context"
)

// Unload removes the entry for path and releases its handle. It fails with
// a NOT_LOADED error when path has no entry. The entry leaves the table
// immediately; if a call is in flight the handle is closed once it returns.
func (r *Registry) Unload(_ context.Context, path string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed()
	}
	e := r.entries[path]
	if e == nil {
		r.mu.Unlock()
		return ErrNotLoaded(path)
	}
	delete(r.entries, path)
	n := len(r.entries)
	// Add under mu so a concurrent Close cannot start waiting first.
	r.retiring.Add(1)
	r.mu.Unlock()

	r.metrics.unload(n)
	r.publisher.Publish(Event{Name: "unload_start", Path: path})
	r.retire(e)
	r.log.Info().Str("path", path).Msg("model unloaded")
	return nil
}

// retire closes e's handle as soon as no call holds it, then marks one
// r.retiring unit done. The caller must have added that unit while holding
// r.mu. It does not block the caller when a call is in flight.
func (r *Registry) retire(e *entry) {
	e.draining.Store(true)
	select {
	case e.slot <- struct{}{}:
		r.closeHandle(e)
		<-e.slot
		r.retiring.Done()
	default:
		go func() {
			defer r.retiring.Done()
			e.slot <- struct{}{}
			r.closeHandle(e)
			<-e.slot
		}()
	}
}

// closeHandle releases e's handle. Callers hold e.slot or own e exclusively.
func (r *Registry) closeHandle(e *entry) {
	if e.retired {
		return
	}
	e.retired = true
	defer func() {
		if v := recover(); v != nil {
			r.log.Error().Str("path", e.path).Interface("panic", v).Msg("engine panic during close")
		}
	}()
	if err := e.handle.Close(); err != nil {
		r.log.Warn().Str("path", e.path).Err(err).Msg("close handle")
	}
	r.publisher.Publish(Event{Name: "unload_done", Path: e.path})
}
