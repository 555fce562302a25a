package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/frankx-ai/frankx/pkg/config"
)

// SchemaCmd generates JSON Schema from the config structs. Output goes
// to stdout so it can be redirected.
type SchemaCmd struct {
	Compact bool `short:"c" help:"Compact JSON output (no indentation)."`
}

func (c *SchemaCmd) Run(cli *CLI) error {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.Config{})

	schema.ID = "https://frankx.ai/schemas/config.json"
	schema.Title = "FrankX Configuration Schema"
	schema.Description = "Complete configuration schema for the FrankX AI service"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	schema.Examples = []interface{}{
		map[string]interface{}{
			"server": map[string]interface{}{
				"port": 8080,
			},
			"providers": map[string]interface{}{
				"anthropic": map[string]interface{}{
					"type":    "anthropic",
					"api_key": "${ANTHROPIC_API_KEY}",
				},
			},
			"store": map[string]interface{}{
				"backend": "sqlite",
				"path":    "frankx.db",
			},
		},
	}

	encoder := json.NewEncoder(os.Stdout)
	if !c.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(schema); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	return nil
}
