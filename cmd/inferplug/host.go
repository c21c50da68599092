package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/spf13/cobra"

	"inferplug/internal/plugin"
)

// dialPlugin launches bin as a plugin subprocess and dispenses its Host. The
// returned func kills the subprocess.
func (a *app) dialPlugin(bin string) (plugin.Host, func(), error) {
	if bin == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, nil, fmt.Errorf("locate executable: %w", err)
		}
		bin = self
	}
	args := []string{"serve"}
	if a.configPath != "" {
		args = append(args, "--config", a.configPath)
	}
	client := hashiplug.NewClient(&hashiplug.ClientConfig{
		HandshakeConfig:  plugin.HandshakeConfig,
		Plugins:          plugin.PluginMap,
		Cmd:              exec.Command(bin, args...),
		Logger:           a.hclogger(),
		AllowedProtocols: []hashiplug.Protocol{hashiplug.ProtocolNetRPC},
	})
	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("start plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(plugin.PluginName)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	host, ok := raw.(plugin.Host)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("unexpected plugin type %T", raw)
	}
	return host, client.Kill, nil
}

func newInvokeCmd(a *app) *cobra.Command {
	var bin string
	cmd := &cobra.Command{
		Use:   "invoke <service> <method> [json-args]",
		Short: "Invoke a method through a plugin subprocess, as a host would",
		Example: "  inferplug invoke llm.inference generate '{\"model_path\":\"/models/tiny.gguf\",\"prompt\":\"Hi\"}'\n" +
			"  inferplug invoke llm.cli run_command '{\"command\":\"list\"}'",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			if len(args) == 3 {
				payload = []byte(args[2])
			}
			host, kill, err := a.dialPlugin(bin)
			if err != nil {
				return err
			}
			defer kill()
			out, err := host.Invoke(args[0], args[1], payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&bin, "plugin", "", "Plugin binary to launch (defaults to this executable)")
	return cmd
}

func newMethodsCmd(a *app) *cobra.Command {
	var bin string
	cmd := &cobra.Command{
		Use:   "methods [service]",
		Short: "List plugin info and services, or the methods of one service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, kill, err := a.dialPlugin(bin)
			if err != nil {
				return err
			}
			defer kill()
			var v any
			if len(args) == 1 {
				if v, err = host.ListMethods(args[0]); err != nil {
					return err
				}
			} else {
				info, err := host.Info()
				if err != nil {
					return err
				}
				svcs, err := host.Services()
				if err != nil {
					return err
				}
				v = map[string]any{"plugin": info, "services": svcs}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
	cmd.Flags().StringVar(&bin, "plugin", "", "Plugin binary to launch (defaults to this executable)")
	return cmd
}
