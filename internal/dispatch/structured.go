package dispatch

import (
	"context"

	"inferplug/pkg/types"
)

// Generate is the structured front-end: payload is the JSON object
// {model_path, prompt, max_tokens?, temperature?}.
func (d *Dispatcher) Generate(ctx context.Context, payload []byte) (string, error) {
	args, err := decodeGenerateArgs(payload)
	if err != nil {
		logFailure(ctx, Operation{Kind: OpGenerate}, err)
		return "", err
	}
	return d.run(ctx, Operation{
		Kind: OpGenerate,
		Path: args.ModelPath,
		Request: types.GenerateRequest{
			Prompt:      args.Prompt,
			MaxTokens:   args.MaxTokens,
			Temperature: args.Temperature,
		},
	})
}
