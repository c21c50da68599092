package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inferplug/pkg/types"
)

// Service defines the methods required by the admin HTTP layer.
type Service interface {
	Status() types.StatusResponse
	Models() []string
	Ready() bool
	Services() []types.ServiceDescriptor
	ListMethods(service string) ([]types.ServiceMethod, *types.ServiceError)
	Invoke(ctx context.Context, service, method string, args []byte) (string, *types.ServiceError)
}

// NewMux builds the admin router.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Group(func(r chi.Router) {
		r.Use(inflight)
		r.Get("/healthz", h.healthz)
		r.Get("/readyz", h.readyz)
		r.Get("/status", h.status)
		r.Get("/models", h.models)
		r.Get("/v1/services", h.services)
		r.Get("/v1/services/{service}/methods", h.methods)
		r.Post("/v1/services/{service}/{method}", h.invoke)
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// healthz godoc
// @Summary  Liveness probe
// @Produce  plain
// @Success  200 {string} string "ok"
// @Router   /healthz [get]
func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz godoc
// @Summary  Readiness probe
// @Description Ready once the plugin is initialized and until cleanup.
// @Produce  plain
// @Success  200 {string} string "ready"
// @Failure  503 {string} string "not ready"
// @Router   /readyz [get]
func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.svc.Ready() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

// status godoc
// @Summary  Registry status
// @Produce  json
// @Success  200 {object} types.StatusResponse
// @Router   /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Status())
}

// models godoc
// @Summary  Loaded models
// @Produce  json
// @Success  200 {object} types.ModelsResponse
// @Router   /models [get]
func (h *handlers) models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, types.ModelsResponse{Models: h.svc.Models()})
}

// services godoc
// @Summary  Registered services
// @Produce  json
// @Success  200 {array} types.ServiceDescriptor
// @Router   /v1/services [get]
func (h *handlers) services(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Services())
}

// methods godoc
// @Summary  Methods of a service
// @Produce  json
// @Param    service path string true "Service id" example(llm.inference)
// @Success  200 {array} types.ServiceMethod
// @Failure  404 {object} types.ErrorResponse
// @Router   /v1/services/{service}/methods [get]
func (h *handlers) methods(w http.ResponseWriter, r *http.Request) {
	ms, se := h.svc.ListMethods(chi.URLParam(r, "service"))
	if se != nil {
		writeJSONError(w, statusFor(se), se.Kind, se.Message)
		return
	}
	writeJSON(w, ms)
}

// invoke godoc
// @Summary  Invoke a service method
// @Description The body is passed through as the method's JSON arguments. A JSON result
// @Description is returned as application/json, anything else as text/plain.
// @Accept   json
// @Produce  json,plain
// @Param    service path string true "Service id" example(llm.cli)
// @Param    method  path string true "Method name" example(run_command)
// @Param    args    body types.CommandRequest false "Method arguments"
// @Success  200 {string} string "method result"
// @Failure  400 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Failure  415 {object} types.ErrorResponse
// @Failure  422 {object} types.ErrorResponse
// @Failure  502 {object} types.ErrorResponse
// @Failure  500 {object} types.ErrorResponse
// @Router   /v1/services/{service}/{method} [post]
func (h *handlers) invoke(w http.ResponseWriter, r *http.Request) {
	service, method := chi.URLParam(r, "service"), chi.URLParam(r, "method")
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "", "request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "", "failed to read request body")
		return
	}
	if len(body) > 0 {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "", "Content-Type must be application/json")
			return
		}
	}

	l := requestLogger(r).Level(requestLogLevel(r))
	start := time.Now()
	ctx, done := invocationContext(r)
	defer done()
	out, se := h.svc.Invoke(l.WithContext(ctx), service, method, body)
	if se != nil {
		recordInvocation(service, method, se.Kind)
		status := statusFor(se)
		l.Info().Str("service", service).Str("method", method).Int("status", status).
			Str("kind", se.Kind).Dur("dur", time.Since(start)).Msg("invoke failed")
		writeJSONError(w, status, se.Kind, se.Message)
		return
	}
	recordInvocation(service, method, "")
	l.Debug().Str("service", service).Str("method", method).Dur("dur", time.Since(start)).Msg("invoke done")
	if json.Valid([]byte(out)) {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = io.WriteString(w, out)
}
