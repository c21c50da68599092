package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"inferplug/internal/dispatch"
	"inferplug/internal/plugin"
	"inferplug/pkg/types"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		maxTokens   int
		temperature float64
	)
	cmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run one CLI command against an in-process plugin",
		Long:  "Run one CLI command against an in-process plugin.\n\n" + dispatch.HelpText,
		Example: "  inferplug run generate ~/models/llm/tiny.gguf \"Hello\" --max-tokens 32\n" +
			"  inferplug run info ~/models/llm/tiny.gguf",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.CommandRequest{Options: map[string]string{}}
			if len(args) > 0 {
				req.Command, req.Args = args[0], args[1:]
			}
			if cmd.Flags().Changed("max-tokens") {
				req.Options["max-tokens"] = strconv.Itoa(maxTokens)
			}
			if cmd.Flags().Changed("temperature") {
				req.Options["temperature"] = strconv.FormatFloat(temperature, 'f', -1, 64)
			}
			payload, err := json.Marshal(req)
			if err != nil {
				return err
			}
			p := a.newPlugin()
			if err := p.Init(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = a.cleanup(p) }()
			out, err := invokeLocal(cmd.Context(), p, dispatch.ServiceCLI, "run_command", payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Token budget for generate")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature for generate")
	return cmd
}

// invokeLocal calls an in-process plugin and turns a ServiceError into an error.
func invokeLocal(ctx context.Context, p *plugin.Plugin, service, method string, args []byte) (string, error) {
	out, se := p.Invoke(ctx, service, method, args)
	if se != nil {
		return "", se
	}
	return out, nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the generate payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := dispatch.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
