package httpapi

import (
	"context"
	"net/http"
)

// shutdownCtx is canceled when the process shuts down; handlers stop waiting
// for a model when it is done.
var shutdownCtx = context.Background()

// SetBaseContext ties in-flight invocations to ctx. Nil restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx = ctx
}

// invocationContext derives a context from r that is also canceled when the
// server shuts down. The returned func must be called when the handler ends.
func invocationContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	stop := context.AfterFunc(shutdownCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
