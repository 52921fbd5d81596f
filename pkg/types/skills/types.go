// Package skills defines the contract between the agent and the skills it
// can call.
package skills

import (
	"context"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
)

// Skill is a named capability the model may invoke with JSON arguments.
type Skill interface {
	Name() string
	Description() string
	GenerateSchema() *jsonschema.Schema
	// TracingKVs returns the span attributes describing a call with args.
	TracingKVs(args map[string]any) ([]attribute.KeyValue, error)
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Parameter describes one argument of a skill.
type Parameter struct {
	Name        string
	Type        string
	ItemType    string // element type when Type is "array"
	Description string
	Required    bool
	Default     any
}

// Descriptor is the registered, immutable view of a skill.
type Descriptor struct {
	Name        string
	Description string
	Parameters  []Parameter
	// Schema is the JSON schema of the arguments, stripped of title, $schema
	// and $id so it can be sent as a function definition.
	Schema map[string]any
}

// Parameter returns the named parameter.
func (d Descriptor) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
