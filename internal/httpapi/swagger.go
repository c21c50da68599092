//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// SwaggerInfo is a hand-maintained subset of what `swag init` emits for the
// annotations in server.go.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "inferplug admin API",
	Description:      "Operator surface of the local LLM plugin.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {"get": {"summary": "Liveness probe", "produces": ["text/plain"], "responses": {"200": {"description": "ok"}}}},
        "/readyz": {"get": {"summary": "Readiness probe", "produces": ["text/plain"], "responses": {"200": {"description": "ready"}, "503": {"description": "not ready"}}}},
        "/status": {"get": {"summary": "Registry status", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/models": {"get": {"summary": "Loaded models", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/v1/services": {"get": {"summary": "Registered services", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/v1/services/{service}/methods": {"get": {"summary": "Methods of a service", "produces": ["application/json"],
            "parameters": [{"name": "service", "in": "path", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/v1/services/{service}/{method}": {"post": {"summary": "Invoke a service method", "consumes": ["application/json"], "produces": ["application/json", "text/plain"],
            "parameters": [
                {"name": "service", "in": "path", "required": true, "type": "string"},
                {"name": "method", "in": "path", "required": true, "type": "string"},
                {"name": "args", "in": "body", "schema": {"type": "object"}}
            ],
            "responses": {"200": {"description": "method result"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"},
                "415": {"description": "Unsupported Media Type"}, "422": {"description": "Unprocessable Entity"},
                "500": {"description": "Internal Server Error"}, "502": {"description": "Bad Gateway"}}}}
    }
}`

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
