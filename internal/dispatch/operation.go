package dispatch

import (
	"encoding/json"
	"fmt"

	"inferplug/pkg/types"
)

// Kind names one of the five registry operations both front-ends reduce to.
type Kind int

const (
	OpLoad Kind = iota + 1
	OpUnload
	OpList
	OpGenerate
	OpInfo
)

func (k Kind) String() string {
	switch k {
	case OpLoad:
		return "load"
	case OpUnload:
		return "unload"
	case OpList:
		return "list"
	case OpGenerate:
		return "generate"
	case OpInfo:
		return "info"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Operation is a validated request against the registry. Path is empty for
// OpList; Request is only read for OpGenerate.
type Operation struct {
	Kind    Kind
	Path    string
	Request types.GenerateRequest
}

// Result carries the typed outcome of Execute. Exactly one payload field is
// set, matching Kind.
type Result struct {
	Kind       Kind
	Path       string
	Models     []string
	Generation *types.GenerateResponse
	Info       *types.ModelInfo
}

// Render encodes r into the boundary string shared by both front-ends:
// a confirmation line for load/unload, a JSON array for list and a JSON
// object for generate and info.
func (r Result) Render() (string, error) {
	var v any
	switch r.Kind {
	case OpLoad:
		return "Model loaded: " + r.Path, nil
	case OpUnload:
		return "Model unloaded: " + r.Path, nil
	case OpList:
		models := r.Models
		if models == nil {
			models = []string{}
		}
		v = models
	case OpGenerate:
		v = r.Generation
	case OpInfo:
		v = r.Info
	default:
		return "", fmt.Errorf("render: unknown operation %v", r.Kind)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
