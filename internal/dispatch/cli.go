package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"inferplug/pkg/types"
)

// Commands lists the CLI subcommands in display order.
var Commands = []types.CommandDescriptor{
	{Name: "load", Description: "Load a model", Usage: "load <model-path>"},
	{Name: "unload", Description: "Unload a model", Usage: "unload <model-path>"},
	{Name: "list", Description: "List loaded models", Usage: "list"},
	{Name: "generate", Description: "Generate text", Usage: "generate <model-path> <prompt> [--max-tokens <n>] [--temperature <t>]"},
	{Name: "info", Description: "Show model info", Usage: "info <model-path>"},
	{Name: "help", Description: "Show this help", Usage: "help"},
}

// HelpText is returned by "help" and by an empty command.
var HelpText = buildHelp()

func buildHelp() string {
	width := 0
	for _, c := range Commands {
		width = max(width, len(c.Usage))
	}
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, c := range Commands {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, c.Usage, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func usageOf(name string) string {
	for _, c := range Commands {
		if c.Name == name {
			return "usage: " + c.Usage
		}
	}
	return "usage: " + name
}

// RunCommand is the CLI front-end. req.Command may carry the whole command
// line ("generate m.gguf hi"); it is split on whitespace and prepended to
// req.Args.
func (d *Dispatcher) RunCommand(ctx context.Context, req types.CommandRequest) (string, error) {
	name, args := splitCommand(req)
	if name == "" || name == "help" {
		return HelpText, nil
	}
	op, err := ParseCommand(name, args, req.Options)
	if err != nil {
		logFailure(ctx, Operation{}, err)
		return "", err
	}
	return d.run(ctx, op)
}

func splitCommand(req types.CommandRequest) (string, []string) {
	fields := strings.Fields(req.Command)
	if len(fields) == 0 {
		if len(req.Args) == 0 {
			return "", nil
		}
		return req.Args[0], req.Args[1:]
	}
	return fields[0], append(fields[1:], req.Args...)
}

// ParseCommand validates a subcommand and its arguments into an Operation.
// It never touches the registry.
func ParseCommand(name string, args []string, options map[string]string) (Operation, error) {
	switch name {
	case "load", "unload", "info":
		if len(args) < 1 || args[0] == "" {
			return Operation{}, ErrUsage(usageOf(name))
		}
		kind := map[string]Kind{"load": OpLoad, "unload": OpUnload, "info": OpInfo}[name]
		return Operation{Kind: kind, Path: args[0]}, nil
	case "list":
		return Operation{Kind: OpList}, nil
	case "generate":
		if len(args) < 2 || args[0] == "" {
			return Operation{}, ErrUsage(usageOf(name))
		}
		req, err := parseGenerateOptions(options)
		if err != nil {
			return Operation{}, err
		}
		req.Prompt = strings.Join(args[1:], " ")
		return Operation{Kind: OpGenerate, Path: args[0], Request: req}, nil
	default:
		return Operation{}, ErrUnknownCommand(name)
	}
}

// parseGenerateOptions reads --max-tokens and --temperature. Keys may be
// given with or without the leading dashes; max_tokens is an alias.
func parseGenerateOptions(options map[string]string) (types.GenerateRequest, error) {
	var req types.GenerateRequest
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(options[k])
		switch strings.TrimLeft(k, "-") {
		case "max-tokens", "max_tokens":
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return req, ErrUsage(fmt.Sprintf("invalid --max-tokens %q: must be an integer >= 1", v))
			}
			req.MaxTokens = types.IntPtr(n)
		case "temperature":
			t, err := strconv.ParseFloat(v, 64)
			if err != nil || t < 0 {
				return req, ErrUsage(fmt.Sprintf("invalid --temperature %q: must be a number >= 0", v))
			}
			req.Temperature = types.Float64Ptr(t)
		default:
			return req, ErrUsage(fmt.Sprintf("unknown option %q; %s", k, usageOf("generate")))
		}
	}
	return req, nil
}
