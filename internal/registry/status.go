package registry

import (
	"sort"
	"time"

	"inferplug/internal/engine"
	"inferplug/pkg/types"
)

// Status returns a point-in-time snapshot of the registry for the admin
// surface. Inflight is best-effort.
func (r *Registry) Status() types.StatusResponse {
	r.mu.RLock()
	entries := make([]types.EntryStatus, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, types.EntryStatus{
			Path:        e.path,
			State:       string(e.state()),
			Inflight:    len(e.slot),
			LoadedAt:    e.loadedAt.Unix(),
			LastUsed:    time.Unix(0, e.lastUsed.Load()).Unix(),
			Generations: e.generations.Load(),
		})
	}
	state := "open"
	if r.closed {
		state = "closed"
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return types.StatusResponse{
		Entries:       entries,
		State:         state,
		LoadsTotal:    r.loadsTotal.Load(),
		UptimeSeconds: int64(time.Since(r.startTime) / time.Second),
		Engine:        engine.SanityCheck(),
	}
}
