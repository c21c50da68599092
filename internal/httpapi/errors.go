package httpapi

import (
	"encoding/json"
	"net/http"

	"inferplug/internal/dispatch"
	"inferplug/internal/registry"
	"inferplug/pkg/types"
)

// statusFor maps a boundary error to an HTTP status.
func statusFor(se *types.ServiceError) int {
	if se.Code == types.CodeMethodNotFound {
		return http.StatusNotFound
	}
	switch se.Kind {
	case dispatch.CodeUsage:
		return http.StatusBadRequest
	case registry.CodeNotLoaded:
		return http.StatusNotFound
	case registry.CodeLoadFailed:
		return http.StatusUnprocessableEntity
	case registry.CodeGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Kind: kind, Code: status})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "", "failed to encode response")
	}
}
