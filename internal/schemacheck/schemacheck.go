// Package schemacheck validates the decoded configuration document against
// a JSON Schema before the builder trusts any path out of it. The teacher
// repo uses google/jsonschema-go to describe MCP tool input shapes; here
// the same library validates a config document instead of a tool call —
// same schema machinery, different document.
package schemacheck

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// nonEmpty is the minimum length every configured path must have.
var nonEmpty = 1

// configSchema requires every tree to name all three paths as non-empty
// strings. It intentionally says nothing about include/exclude — those
// are optional and any shape is accepted.
var configSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"trees"},
	Properties: map[string]*jsonschema.Schema{
		"trees": {
			Type: "object",
			AdditionalProperties: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"paths"},
				Properties: map[string]*jsonschema.Schema{
					"paths": {
						Type:     "object",
						Required: []string{"index_path", "files_path", "objdir_path"},
						Properties: map[string]*jsonschema.Schema{
							"index_path":  {Type: "string", MinLength: &nonEmpty},
							"files_path":  {Type: "string", MinLength: &nonEmpty},
							"objdir_path": {Type: "string", MinLength: &nonEmpty},
						},
					},
				},
			},
		},
	},
}

var resolved *jsonschema.Resolved

func init() {
	r, err := configSchema.Resolve(nil)
	if err != nil {
		panic("schemacheck: invalid built-in config schema: " + err.Error())
	}
	resolved = r
}

// ValidateConfig checks doc (the map[string]any shape of a Config) against
// the built-in schema, returning every violation joined into one error.
func ValidateConfig(doc map[string]any) error {
	if err := resolved.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
