package registry

import (
	"context"
	"time"
)

// acquire takes the entry's single call slot, waiting for any in-flight
// call to finish. Returns a release func to be deferred.
func (r *Registry) acquire(ctx context.Context, e *entry) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return nil, errWait(e.path, err)
	}
	select {
	case e.slot <- struct{}{}:
		e.lastUsed.Store(time.Now().UnixNano())
		return func() { <-e.slot }, nil
	case <-ctx.Done():
		return nil, errWait(e.path, ctx.Err())
	}
}

// withEntry resolves path (auto-loading it), holds its slot and runs fn.
// If the entry was retired by an unload between lookup and acquisition, the
// path is resolved again.
func (r *Registry) withEntry(ctx context.Context, path string, fn func(*entry) error) error {
	for {
		e, err := r.ensure(ctx, path)
		if err != nil {
			return err
		}
		release, err := r.acquire(ctx, e)
		if err != nil {
			return err
		}
		if e.retired {
			release()
			continue
		}
		err = fn(e)
		release()
		return err
	}
}
