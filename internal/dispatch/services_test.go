package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inferplug/pkg/types"
)

func service(t *testing.T, d *Dispatcher, id string) Service {
	t.Helper()
	for _, s := range d.Services("1.0.0", "test") {
		if s.Descriptor.ID == id {
			return s
		}
	}
	t.Fatalf("service %s not registered", id)
	return Service{}
}

func TestServicesAreOrdered(t *testing.T) {
	d, _ := newDispatcher(t)
	svcs := d.Services("1.0.0", "test")
	require.Len(t, svcs, 2)
	assert.Equal(t, ServiceCLI, svcs[0].Descriptor.ID)
	assert.Equal(t, ServiceInference, svcs[1].Descriptor.ID)
	assert.Equal(t, "1.0.0", svcs[1].Descriptor.Version)
}

func TestInferenceUnknownMethod(t *testing.T) {
	d, _ := newDispatcher(t)
	_, err := service(t, d, ServiceInference).Invoke(context.Background(), "summarize", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, IsMethodNotFound(err))
	se := ToServiceError(err)
	assert.Equal(t, types.CodeMethodNotFound, se.Code)
	assert.Equal(t, "method not found: summarize", se.Message)
}

func TestInferenceMalformedPayload(t *testing.T) {
	d, reg := newDispatcher(t)
	svc := service(t, d, ServiceInference)
	payloads := []string{
		`{"model_path":`,
		`{"prompt":"hi"}`,
		`{"model_path":"","prompt":"hi"}`,
		`{"model_path":"m","prompt":"hi","max_tokens":0}`,
		`{"model_path":"m","prompt":"hi","temperature":-0.1}`,
		`{"model_path":"m","prompt":7}`,
	}
	for _, p := range payloads {
		_, err := svc.Invoke(context.Background(), "generate", []byte(p))
		require.Error(t, err, p)
		assert.True(t, IsUsage(err), p)
		se := ToServiceError(err)
		assert.Equal(t, types.CodeInvocationError, se.Code, p)
		assert.Contains(t, se.Message, "invalid generate payload", p)
	}
	assert.Empty(t, reg.List())
}

func TestInferenceExtraFieldsIgnored(t *testing.T) {
	d, _ := newDispatcher(t)
	out, err := service(t, d, ServiceInference).Invoke(context.Background(), "generate",
		[]byte(`{"model_path":"m","prompt":"hi","seed":1}`))
	require.NoError(t, err)
	assert.Contains(t, out, `"text":"hi"`)
}

func TestListMethods(t *testing.T) {
	d, _ := newDispatcher(t)
	out, err := service(t, d, ServiceCLI).Invoke(context.Background(), "list_methods", nil)
	require.NoError(t, err)
	var methods []types.ServiceMethod
	require.NoError(t, json.Unmarshal([]byte(out), &methods))
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"run_command", "list_commands", "list_methods"}, names)
}

func TestListCommands(t *testing.T) {
	d, _ := newDispatcher(t)
	out, err := service(t, d, ServiceCLI).Invoke(context.Background(), "list_commands", nil)
	require.NoError(t, err)
	var cmds []types.CommandDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &cmds))
	require.Len(t, cmds, len(Commands))
	assert.Equal(t, "load", cmds[0].Name)
	assert.Equal(t, "load <model-path>", cmds[0].Usage)
}

func TestRunCommandPayload(t *testing.T) {
	d, _ := newDispatcher(t)
	svc := service(t, d, ServiceCLI)
	out, err := svc.Invoke(context.Background(), "run_command", []byte(`{"command":"load","args":["m.bin"]}`))
	require.NoError(t, err)
	assert.Equal(t, "Model loaded: m.bin", out)

	_, err = svc.Invoke(context.Background(), "run_command", []byte(`not json`))
	assert.True(t, IsUsage(err))
}

func TestToServiceErrorUncoded(t *testing.T) {
	se := ToServiceError(errNoFile)
	assert.Equal(t, types.CodeInvocationError, se.Code)
	assert.Equal(t, "INTERNAL", se.Kind)
	assert.Nil(t, ToServiceError(nil))
}

func TestGenerateSchemaShape(t *testing.T) {
	raw, err := GenerateSchema()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, GenerateSchemaID, doc["$id"])
	assert.ElementsMatch(t, []any{"model_path", "prompt"}, doc["required"])
	props := doc["properties"].(map[string]any)
	assert.Contains(t, props, "max_tokens")
	assert.Contains(t, props, "temperature")
}
