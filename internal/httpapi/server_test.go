package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inferplug/internal/dispatch"
	"inferplug/internal/registry"
	"inferplug/pkg/types"
)

type mockService struct {
	models  []string
	status  types.StatusResponse
	ready   bool
	out     string
	err     *types.ServiceError
	gotArgs []byte
	gotSvc  string
	gotMeth string
}

func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Models() []string              { return append([]string{}, m.models...) }
func (m *mockService) Ready() bool                   { return m.ready }
func (m *mockService) Services() []types.ServiceDescriptor {
	return []types.ServiceDescriptor{{ID: dispatch.ServiceCLI}, {ID: dispatch.ServiceInference}}
}
func (m *mockService) ListMethods(service string) ([]types.ServiceMethod, *types.ServiceError) {
	if service != dispatch.ServiceInference {
		return nil, &types.ServiceError{Code: types.CodeMethodNotFound, Kind: dispatch.CodeMethodNotFound, Message: "service not found: " + service}
	}
	return []types.ServiceMethod{{Name: "generate"}, {Name: "list_methods"}}, nil
}
func (m *mockService) Invoke(ctx context.Context, service, method string, args []byte) (string, *types.ServiceError) {
	m.gotSvc, m.gotMeth, m.gotArgs = service, method, append([]byte(nil), args...)
	if m.err != nil {
		return "", m.err
	}
	return m.out, nil
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []string{"/m/a.gguf", "/m/b.gguf"}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 2 || body.Models[0] != "/m/a.gguf" {
		t.Fatalf("models=%v", body.Models)
	}
}

func TestModelsHandler_EmptyIsArray(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if !strings.Contains(w.Body.String(), `"models":[]`) {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{State: "open", LoadsTotal: 3}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.State != "open" || body.LoadsTotal != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}

func TestReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not ready") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestServices(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/services", nil))
	var body []types.ServiceDescriptor
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body) != 2 || body[0].ID != dispatch.ServiceCLI {
		t.Fatalf("services=%+v", body)
	}
}

func TestMethods(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/services/llm.inference/methods", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"generate"`) {
		t.Fatalf("body=%s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/services/nope/methods", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInvoke_TextResult(t *testing.T) {
	svc := &mockService{out: "Model loaded: /m/a.gguf"}
	r := NewMux(svc)
	body := `{"command":"load","args":["/m/a.gguf"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/services/llm.cli/run_command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content-type=%s", ct)
	}
	if w.Body.String() != "Model loaded: /m/a.gguf" {
		t.Fatalf("body=%q", w.Body.String())
	}
	if svc.gotSvc != "llm.cli" || svc.gotMeth != "run_command" || string(svc.gotArgs) != body {
		t.Fatalf("forwarded %s/%s %s", svc.gotSvc, svc.gotMeth, svc.gotArgs)
	}
}

func TestInvoke_JSONResult(t *testing.T) {
	svc := &mockService{out: `{"text":"hi","tokens_generated":1,"stopped":true,"stop_reason":"stop"}`}
	r := NewMux(svc)
	req := httptest.NewRequest(http.MethodPost, "/v1/services/llm.inference/generate",
		strings.NewReader(`{"model_path":"/m/a.gguf","prompt":"x"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%s", ct)
	}
	var g types.GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil || g.Text != "hi" {
		t.Fatalf("decode: %v %+v", err, g)
	}
}

func TestInvoke_EmptyBodyNeedsNoContentType(t *testing.T) {
	svc := &mockService{out: `[]`}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/services/llm.cli/list_commands", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if len(svc.gotArgs) != 0 {
		t.Fatalf("args=%q", svc.gotArgs)
	}
}

func TestInvoke_UnsupportedMediaType(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	req := httptest.NewRequest(http.MethodPost, "/v1/services/llm.cli/run_command", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.gotSvc != "" {
		t.Fatalf("service should not be invoked")
	}
}

func TestInvoke_BodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(8)
	defer SetMaxBodyBytes(0)
	r := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/v1/services/llm.cli/run_command",
		strings.NewReader(`{"command":"list"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestInvoke_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  types.ServiceError
		want int
	}{
		{"usage", types.ServiceError{Code: types.CodeInvocationError, Kind: dispatch.CodeUsage}, http.StatusBadRequest},
		{"not loaded", types.ServiceError{Code: types.CodeInvocationError, Kind: registry.CodeNotLoaded}, http.StatusNotFound},
		{"method not found", types.ServiceError{Code: types.CodeMethodNotFound, Kind: dispatch.CodeMethodNotFound}, http.StatusNotFound},
		{"load failed", types.ServiceError{Code: types.CodeInvocationError, Kind: registry.CodeLoadFailed}, http.StatusUnprocessableEntity},
		{"generation failed", types.ServiceError{Code: types.CodeInvocationError, Kind: registry.CodeGenerationFailed}, http.StatusBadGateway},
		{"internal", types.ServiceError{Code: types.CodeInvocationError, Kind: registry.CodeInternal}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			se := tc.err
			se.Message = "boom: " + tc.name
			r := NewMux(&mockService{err: &se})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/services/llm.cli/run_command", nil))
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d", w.Code, tc.want)
			}
			var body types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("json: %v", err)
			}
			if body.Code != tc.want || body.Kind != se.Kind || body.Error != se.Message {
				t.Fatalf("body=%+v", body)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/infer", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}
