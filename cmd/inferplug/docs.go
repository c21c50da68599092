package main

// General API documentation for swaggo. Run `swag init -g cmd/inferplug/docs.go` to regenerate.
//
// @title           inferplug admin API
// @version         1.0
// @description     Operator HTTP surface of the local LLM plugin: health, registry status and a passthrough to the plugin services.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
