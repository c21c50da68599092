// Package dispatch translates boundary calls into registry operations.
//
// Two front-ends share one operation set: the structured service parses a
// JSON payload, the CLI service parses a subcommand with argument tokens
// and options. Both build an Operation, call Execute and render the Result
// the same way, so identical intent yields identical output.
package dispatch

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"inferplug/internal/registry"
	"inferplug/pkg/types"
)

var tracer = otel.Tracer("inferplug/dispatch")

// Registry is the subset of *registry.Registry the dispatcher drives.
type Registry interface {
	Load(ctx context.Context, path string) error
	Unload(ctx context.Context, path string) error
	List() []string
	Generate(ctx context.Context, path string, req types.GenerateRequest) (types.GenerateResponse, error)
	Info(ctx context.Context, path string) (types.ModelInfo, error)
}

// Dispatcher is stateless per call; all state lives in the registry.
type Dispatcher struct {
	reg Registry
}

// New returns a dispatcher over reg.
func New(reg Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Execute runs op against the registry.
func (d *Dispatcher) Execute(ctx context.Context, op Operation) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "dispatch.execute",
		trace.WithAttributes(
			attribute.String("op", op.Kind.String()),
			attribute.String("model.path", op.Path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logFailure(ctx, op, err)
		}
		span.End()
	}()

	res = Result{Kind: op.Kind, Path: op.Path}
	switch op.Kind {
	case OpLoad:
		err = d.reg.Load(ctx, op.Path)
	case OpUnload:
		err = d.reg.Unload(ctx, op.Path)
	case OpList:
		res.Models = d.reg.List()
		span.SetAttributes(attribute.Int("models", len(res.Models)))
	case OpGenerate:
		var out types.GenerateResponse
		out, err = d.reg.Generate(ctx, op.Path, op.Request)
		if err == nil {
			res.Generation = &out
			span.SetAttributes(attribute.Int("tokens_generated", out.TokensGenerated))
		}
	case OpInfo:
		var info types.ModelInfo
		info, err = d.reg.Info(ctx, op.Path)
		if err == nil {
			res.Info = &info
		}
	default:
		err = ErrUsage("unsupported operation " + op.Kind.String())
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// run executes op and renders its result.
func (d *Dispatcher) run(ctx context.Context, op Operation) (string, error) {
	res, err := d.Execute(ctx, op)
	if err != nil {
		return "", err
	}
	return res.Render()
}

// logFailure logs err at a level matching its class: caller mistakes at
// debug, model failures at warn, internal errors at error.
func logFailure(ctx context.Context, op Operation, err error) {
	l := zerolog.Ctx(ctx)
	var ev *zerolog.Event
	switch KindOf(err) {
	case CodeUsage, CodeMethodNotFound, registry.CodeNotLoaded:
		ev = l.Debug()
	case registry.CodeLoadFailed, registry.CodeGenerationFailed:
		ev = l.Warn()
	default:
		ev = l.Error()
	}
	ev.Str("op", op.Kind.String()).Str("path", op.Path).Str("kind", KindOf(err)).Err(err).Msg("operation failed")
}
