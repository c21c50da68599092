package registry

import "context"

// Close tears the registry down. New operations fail immediately with a
// "registry closed" internal error. Idle handles are released right away;
// busy handles are released when their in-flight call returns. Close waits
// for that until ctx is done, in which case the remaining handles are still
// released in the background and ctx.Err() is returned.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*entry)
	// Unloads that won the lock before us have already added their unit;
	// none can add after closed is set.
	r.retiring.Add(len(entries))
	r.mu.Unlock()

	for _, e := range entries {
		r.retire(e)
	}
	r.metrics.setLoaded(0)
	r.log.Info().Int("models", len(entries)).Msg("registry closed")

	done := make(chan struct{})
	go func() {
		r.retiring.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
