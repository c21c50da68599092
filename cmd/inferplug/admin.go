package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Run the plugin in-process behind the admin HTTP API only",
		Example: "  inferplug admin --admin-addr 127.0.0.1:9090 --preload-dir ~/models/llm\n" +
			"  curl -s -XPOST localhost:9090/v1/services/llm.cli/run_command -d '{\"command\":\"list\"}' -H 'Content-Type: application/json'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.AdminAddr == "" {
				a.cfg.AdminAddr = "127.0.0.1:9090"
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			p := a.newPlugin()
			if err := p.Init(ctx); err != nil {
				return err
			}
			stopAdmin := a.startAdmin(ctx, p)
			// Graceful shutdown (Ctrl+C / SIGTERM)
			<-ctx.Done()
			a.log.Info().Msg("shutting down")
			stopAdmin()
			return a.cleanup(p)
		},
	}
	return cmd
}
