package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"inferplug/pkg/types"
)

// GenerateSchemaID is the $id of the structured generate payload schema.
const GenerateSchemaID = "https://inferplug.dev/schemas/generate.schema.json"

// GenerateSchema reflects the JSON Schema of the structured generate payload.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	schema := r.Reflect(&types.GenerateArgs{})
	schema.ID = jsonschema.ID(GenerateSchemaID)
	schema.Title = "generate"
	schema.Description = "Arguments of the llm.inference generate method"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

var compiledGenerate = sync.OnceValues(func() (*jschema.Schema, error) {
	raw, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}
	c := jschema.NewCompiler()
	if err := c.AddResource("generate.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return c.Compile("generate.json")
})

// decodeGenerateArgs parses and validates a structured generate payload.
func decodeGenerateArgs(payload []byte) (types.GenerateArgs, error) {
	var args types.GenerateArgs
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return args, ErrInvalidPayload("generate", err)
	}
	sch, err := compiledGenerate()
	if err != nil {
		return args, fmt.Errorf("compile generate schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return args, ErrInvalidPayload("generate", err)
	}
	if err := json.Unmarshal(payload, &args); err != nil {
		return args, ErrInvalidPayload("generate", err)
	}
	return args, nil
}
