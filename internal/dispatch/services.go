package dispatch

import (
	"context"
	"encoding/json"
	"sort"

	"inferplug/pkg/types"
)

// Service ids registered with the host.
const (
	ServiceInference = "llm.inference"
	ServiceCLI       = "llm.cli"
)

// Service is one method set exposed across the boundary.
type Service struct {
	Descriptor types.ServiceDescriptor
	Methods    []types.ServiceMethod
	invoke     func(ctx context.Context, method string, args []byte) (string, error)
}

// Services returns the inference and CLI services backed by d, ordered by id.
func (d *Dispatcher) Services(version, provider string) []Service {
	svcs := []Service{
		{
			Descriptor: types.ServiceDescriptor{
				ID:          ServiceInference,
				Version:     version,
				Provider:    provider,
				Description: "Text generation against local models",
			},
			Methods: []types.ServiceMethod{
				{Name: "generate", Description: "Generate text using a model, loading it if needed"},
				{Name: "list_methods", Description: "List methods of this service"},
			},
			invoke: d.invokeInference,
		},
		{
			Descriptor: types.ServiceDescriptor{
				ID:          ServiceCLI,
				Version:     version,
				Provider:    provider,
				Description: "Command-line model management",
			},
			Methods: []types.ServiceMethod{
				{Name: "run_command", Description: "Run a CLI command"},
				{Name: "list_commands", Description: "List available commands"},
				{Name: "list_methods", Description: "List methods of this service"},
			},
			invoke: d.invokeCLI,
		},
	}
	sort.Slice(svcs, func(i, j int) bool { return svcs[i].Descriptor.ID < svcs[j].Descriptor.ID })
	return svcs
}

// Invoke calls method on the service with the given JSON args.
func (s Service) Invoke(ctx context.Context, method string, args []byte) (string, error) {
	if method == "list_methods" {
		return marshalString(s.Methods)
	}
	return s.invoke(ctx, method, args)
}

func (d *Dispatcher) invokeInference(ctx context.Context, method string, args []byte) (string, error) {
	switch method {
	case "generate":
		return d.Generate(ctx, args)
	default:
		return "", ErrMethodNotFound(ServiceInference, method)
	}
}

func (d *Dispatcher) invokeCLI(ctx context.Context, method string, args []byte) (string, error) {
	switch method {
	case "run_command":
		var req types.CommandRequest
		if len(args) > 0 {
			if err := json.Unmarshal(args, &req); err != nil {
				return "", ErrInvalidPayload("run_command", err)
			}
		}
		return d.RunCommand(ctx, req)
	case "list_commands":
		return marshalString(Commands)
	default:
		return "", ErrMethodNotFound(ServiceCLI, method)
	}
}

func marshalString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
