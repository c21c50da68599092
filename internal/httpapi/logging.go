package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger used by the admin server. Logging is off until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "admin").Logger() }

// requestLogger returns zlog tagged with the chi request id, if any.
func requestLogger(r *http.Request) zerolog.Logger {
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		return zlog.With().Str("request_id", rid).Logger()
	}
	return zlog
}

// requestLogLevel lets a caller raise verbosity for one request with
// ?log=debug or an X-Log-Level header.
func requestLogLevel(r *http.Request) zerolog.Level {
	v := r.URL.Query().Get("log")
	if v == "" {
		v = r.Header.Get("X-Log-Level")
	}
	switch v {
	case "1", "debug":
		return zerolog.DebugLevel
	case "error":
		return zerolog.ErrorLevel
	case "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
