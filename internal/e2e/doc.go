// Package e2e exercises the plugin across its go-plugin boundary.
package e2e
