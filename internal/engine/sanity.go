package engine

import "inferplug/pkg/types"

// SanityCheck reports whether the llama backend is usable in this binary.
// It does not touch any model and is safe to call at any time.
func SanityCheck() types.EngineReport {
	r := types.EngineReport{Name: "llama.cpp", Available: llamaBuilt}
	if !llamaBuilt {
		r.Error = stubReason
	}
	return r
}
