// Package registry holds the process-wide table of loaded models, keyed by
// model path. It is structured into small files by concern:
//
//   - registry.go: Registry type, constructor, List, Len.
//   - config.go: Config and defaults.
//   - entry.go: per-model entry state.
//   - errors.go: error codes, constructors and IsXxx predicates.
//   - load.go: Load and the auto-load path shared by Generate and Info.
//   - admission.go: per-entry exclusive access.
//   - generate.go: Generate and Info.
//   - unload.go: Unload and handle retirement.
//   - close.go: registry teardown.
//   - status.go: Status snapshot.
//   - events.go, metrics.go: lifecycle events and Prometheus collectors.
//
// Locking is two-tier. mu guards the path table and is held only for
// insert, remove and snapshot. Each entry owns a one-slot channel held for
// the whole duration of a call into its handle, so calls against the same
// path never interleave while different paths run in parallel.
//
// Keys are exact strings: "./m.gguf" and "m.gguf" are distinct entries.
package registry
