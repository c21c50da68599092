package registry

import (
	"context"
	"time"

	"inferplug/pkg/types"
)

// Generate runs one generation against path, loading it first if needed.
// Calls against the same path are serialized; different paths run in
// parallel. A generation failure leaves the model loaded.
func (r *Registry) Generate(ctx context.Context, path string, req types.GenerateRequest) (types.GenerateResponse, error) {
	var resp types.GenerateResponse
	err := r.withEntry(ctx, path, func(e *entry) error {
		start := time.Now()
		out, err := r.callGenerate(ctx, e, req)
		r.metrics.observeGeneration(err == nil, time.Since(start))
		if err != nil {
			r.publisher.Publish(Event{Name: "generate_failed", Path: path, Fields: map[string]any{"error": err.Error()}})
			r.log.Warn().Str("path", path).Err(err).Msg("generation failed")
			return err
		}
		e.generations.Add(1)
		r.publisher.Publish(Event{Name: "generate_done", Path: path, Fields: map[string]any{
			"tokens": out.TokensGenerated,
			"dur_ms": int(time.Since(start) / time.Millisecond),
		}})
		r.log.Debug().Str("path", path).Int("tokens", out.TokensGenerated).Dur("dur", time.Since(start)).Msg("generation done")
		resp = out
		return nil
	})
	return resp, err
}

// Info returns the metadata of path, loading it first if needed.
func (r *Registry) Info(ctx context.Context, path string) (types.ModelInfo, error) {
	var info types.ModelInfo
	err := r.withEntry(ctx, path, func(e *entry) (err error) {
		defer func() {
			if v := recover(); v != nil {
				err = errPanic(path, "info", v)
			}
		}()
		info = e.handle.Info()
		info.Loaded = true
		return nil
	})
	return info, err
}

// callGenerate calls the handle with the slot held, recovering panics.
// Once the slot is held the call runs to completion: the handle sees ctx's
// values but not its cancellation.
func (r *Registry) callGenerate(ctx context.Context, e *entry, req types.GenerateRequest) (resp types.GenerateResponse, err error) {
	defer func() {
		if v := recover(); v != nil {
			resp, err = types.GenerateResponse{}, errPanic(e.path, "generate", v)
		}
	}()
	resp, err = e.handle.Generate(context.WithoutCancel(ctx), req)
	if err != nil {
		return types.GenerateResponse{}, ErrGenerationFailed(e.path, err)
	}
	return resp, nil
}
