package e2e

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inferplug/internal/dispatch"
	"inferplug/internal/engine"
	"inferplug/internal/plugin"
	"inferplug/pkg/types"
)

type wordHandle struct{ path string }

func (h wordHandle) Generate(_ context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	words := strings.Fields(req.Prompt)
	limit := 16
	if req.MaxTokens != nil {
		limit = *req.MaxTokens
	}
	n := min(len(words), limit)
	return types.GenerateResponse{
		Text:            strings.Join(words[:n], " "),
		TokensGenerated: n,
		Stopped:         n < limit,
		StopReason:      "stop",
	}, nil
}

func (h wordHandle) Info() types.ModelInfo {
	return types.ModelInfo{Name: filepath.Base(h.path), Size: 1}
}

func (h wordHandle) Close() error { return nil }

func newWordPlugin(t *testing.T) *plugin.Plugin {
	t.Helper()
	eng := engine.Func(func(_ context.Context, path string) (engine.Handle, error) {
		if strings.HasPrefix(filepath.Base(path), "missing") {
			return nil, errors.New("open " + path + ": no such file or directory")
		}
		return wordHandle{path: path}, nil
	})
	impl := plugin.New(plugin.Config{Engine: eng})
	require.NoError(t, impl.Init(context.Background()))
	t.Cleanup(func() { _ = impl.Cleanup(context.Background()) })
	return impl
}

func dial(t *testing.T) plugin.Host {
	t.Helper()
	impl := newWordPlugin(t)
	client, _ := hashiplug.TestPluginRPCConn(t, map[string]hashiplug.Plugin{
		plugin.PluginName: &plugin.RPCPlugin{Impl: impl},
	}, nil)
	t.Cleanup(func() { _ = client.Close() })

	raw, err := client.Dispense(plugin.PluginName)
	require.NoError(t, err)
	host, ok := raw.(plugin.Host)
	require.True(t, ok, "dispensed %T", raw)
	return host
}

func runCommand(t *testing.T, h plugin.Host, line string) (string, error) {
	t.Helper()
	fields := strings.Fields(line)
	req := types.CommandRequest{Command: fields[0], Args: fields[1:]}
	return h.Invoke(dispatch.ServiceCLI, "run_command", mustJSON(t, req))
}

func TestHostSeesPluginMetadata(t *testing.T) {
	h := dial(t)
	info, err := h.Info()
	require.NoError(t, err)
	assert.Equal(t, plugin.ID, info.ID)

	svcs, err := h.Services()
	require.NoError(t, err)
	require.Len(t, svcs, 2)

	methods, err := h.ListMethods(dispatch.ServiceInference)
	require.NoError(t, err)
	assert.Equal(t, "generate", methods[0].Name)

	_, err = h.ListMethods("nope")
	var serr *types.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, types.CodeMethodNotFound, serr.Code)
}

func TestEndToEndScenarios(t *testing.T) {
	h := dial(t)

	// 1: load then list
	out, err := runCommand(t, h, "load m.bin")
	require.NoError(t, err)
	assert.Equal(t, "Model loaded: m.bin", out)
	out, err = runCommand(t, h, "list")
	require.NoError(t, err)
	assert.JSONEq(t, `["m.bin"]`, out)

	// 2: generate auto-loads
	out, err = h.Invoke(dispatch.ServiceInference, "generate",
		[]byte(`{"model_path":"other.bin","prompt":"Hello","max_tokens":16}`))
	require.NoError(t, err)
	var resp types.GenerateResponse
	require.NoError(t, jsonUnmarshal(out, &resp))
	assert.LessOrEqual(t, resp.TokensGenerated, 16)
	out, err = runCommand(t, h, "list")
	require.NoError(t, err)
	assert.JSONEq(t, `["m.bin","other.bin"]`, out)

	// 3: info on a model the engine cannot load
	_, err = runCommand(t, h, "info missing.bin")
	var serr *types.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "LOAD_FAILED", serr.Kind)
	assert.Contains(t, serr.Message, "no such file or directory")
	out, err = runCommand(t, h, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "missing.bin")

	// 4: unload twice
	out, err = runCommand(t, h, "unload m.bin")
	require.NoError(t, err)
	assert.Equal(t, "Model unloaded: m.bin", out)
	_, err = runCommand(t, h, "unload m.bin")
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "NOT_LOADED", serr.Kind)
	assert.Equal(t, types.CodeInvocationError, serr.Code)
}

func TestUnknownMethodAcrossBoundary(t *testing.T) {
	h := dial(t)
	_, err := h.Invoke(dispatch.ServiceInference, "summarize", nil)
	var serr *types.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, types.CodeMethodNotFound, serr.Code)
}
