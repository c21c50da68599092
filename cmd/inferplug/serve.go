package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/spf13/cobra"

	"inferplug/internal/httpapi"
	"inferplug/internal/plugin"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as a go-plugin server on stdio (launched by a host)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			p := a.newPlugin()
			if err := p.Init(ctx); err != nil {
				return err
			}
			stopAdmin := a.startAdmin(ctx, p)
			plugin.Serve(p, func(sc *hashiplug.ServeConfig) {
				sc.Logger = a.hclogger()
			})
			// the host has gone away
			cancel()
			stopAdmin()
			return a.cleanup(p)
		},
	}
}

// startAdmin runs the admin HTTP server when admin_addr is set. The returned
// func shuts it down.
func (a *app) startAdmin(ctx context.Context, svc httpapi.Service) func() {
	if a.cfg.AdminAddr == "" {
		return func() {}
	}
	srv := &http.Server{
		Addr:              a.cfg.AdminAddr,
		Handler:           a.adminHandler(ctx, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		a.log.Info().Str("addr", a.cfg.AdminAddr).Msg("admin listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("admin server error")
		}
	}()
	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			a.log.Warn().Err(err).Msg("admin graceful shutdown error")
		}
	}
}

// adminHandler applies the admin settings and builds the router.
func (a *app) adminHandler(ctx context.Context, svc httpapi.Service) http.Handler {
	httpapi.SetLogger(a.log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(a.cfg.AdminMaxBodyBytes)
	httpapi.SetCORSOptions(a.cfg.CORS.Enabled, a.cfg.CORS.Origins, a.cfg.CORS.Methods, a.cfg.CORS.Headers)
	return httpapi.NewMux(svc)
}

func (a *app) cleanup(p *plugin.Plugin) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return p.Cleanup(ctx)
}

// hclogger adapts the configured level and format for go-plugin's logger.
func (a *app) hclogger() hclog.Logger {
	level := hclog.LevelFromString(a.cfg.LogLevel)
	if strings.EqualFold(a.cfg.LogLevel, "off") {
		level = hclog.Off
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "inferplug",
		Output:     a.stderr,
		Level:      level,
		JSONFormat: a.cfg.LogFormat == "json",
	})
}
