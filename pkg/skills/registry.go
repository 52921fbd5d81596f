// Package skills implements the recipe agent's skills and the registry that
// describes them to the model and dispatches its tool calls.
package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/telemetry"
	skilltypes "github.com/jingkaihe/recipe-agent/pkg/types/skills"
)

var (
	// ErrSkillNotFound is returned when dispatching a name nobody registered.
	ErrSkillNotFound = errors.New("skill not found")
	// ErrInvalidArguments is returned when tool call arguments cannot be used.
	ErrInvalidArguments = errors.New("invalid skill arguments")
)

// schemaMetadataKeys are removed from generated schemas before they are sent
// to the model.
var schemaMetadataKeys = []string{"title", "$schema", "$id"}

// GenerateSchema reflects the JSON schema of a skill input struct.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T

	return reflector.Reflect(v)
}

// Registry holds skills in registration order.
type Registry struct {
	skills      map[string]skilltypes.Skill
	descriptors []skilltypes.Descriptor
}

// NewRegistry describes every skill and fails on an empty name, a non-object
// schema or a duplicate name.
func NewRegistry(skills ...skilltypes.Skill) (*Registry, error) {
	r := &Registry{skills: make(map[string]skilltypes.Skill, len(skills))}
	for _, skill := range skills {
		descriptor, err := Describe(skill)
		if err != nil {
			return nil, err
		}
		if _, exists := r.skills[descriptor.Name]; exists {
			return nil, errors.Errorf("skill %s is registered twice", descriptor.Name)
		}
		r.skills[descriptor.Name] = skill
		r.descriptors = append(r.descriptors, descriptor)
	}
	return r, nil
}

// Describe derives the descriptor of a single skill.
func Describe(skill skilltypes.Skill) (skilltypes.Descriptor, error) {
	name := strings.TrimSpace(skill.Name())
	if name == "" {
		return skilltypes.Descriptor{}, errors.New("skill name must not be empty")
	}

	schema := skill.GenerateSchema()
	if schema == nil || schema.Type != "object" {
		return skilltypes.Descriptor{}, errors.Errorf("skill %s: argument schema must be an object", name)
	}

	wire, err := wireSchema(schema)
	if err != nil {
		return skilltypes.Descriptor{}, errors.Wrapf(err, "skill %s", name)
	}

	return skilltypes.Descriptor{
		Name:        name,
		Description: normalizeWhitespace(skill.Description()),
		Parameters:  parameters(schema),
		Schema:      wire,
	}, nil
}

func parameters(schema *jsonschema.Schema) []skilltypes.Parameter {
	if schema.Properties == nil {
		return nil
	}

	var params []skilltypes.Parameter
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		param := skilltypes.Parameter{
			Name:        pair.Key,
			Type:        prop.Type,
			Description: normalizeWhitespace(prop.Description),
			Required:    slices.Contains(schema.Required, pair.Key),
			Default:     prop.Default,
		}
		if prop.Items != nil {
			param.ItemType = prop.Items.Type
		}
		params = append(params, param)
	}
	return params
}

func wireSchema(schema *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrap(err, "failed to decode schema")
	}

	stripMetadata(wire)
	if _, ok := wire["properties"]; !ok {
		wire["properties"] = map[string]any{}
	}
	return wire, nil
}

// stripMetadata removes metadata keywords from every schema node. Keys of a
// properties object are argument names and are left alone.
func stripMetadata(node map[string]any) {
	for _, key := range schemaMetadataKeys {
		delete(node, key)
	}
	for key, value := range node {
		switch v := value.(type) {
		case map[string]any:
			if key == "properties" || key == "$defs" || key == "definitions" {
				for _, sub := range v {
					if subSchema, ok := sub.(map[string]any); ok {
						stripMetadata(subSchema)
					}
				}
				continue
			}
			stripMetadata(v)
		case []any:
			for _, item := range v {
				if subSchema, ok := item.(map[string]any); ok {
					stripMetadata(subSchema)
				}
			}
		}
	}
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Len returns the number of registered skills.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Names returns skill names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		names[i] = d.Name
	}
	return names
}

// Descriptors returns the skill descriptors in registration order.
func (r *Registry) Descriptors() []skilltypes.Descriptor {
	return slices.Clone(r.descriptors)
}

// Get returns the descriptor of the named skill.
func (r *Registry) Get(name string) (skilltypes.Descriptor, bool) {
	for _, d := range r.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return skilltypes.Descriptor{}, false
}

// ToOpenAITools converts the registered skills to function tools.
func (r *Registry) ToOpenAITools() []openai.Tool {
	tools := make([]openai.Tool, len(r.descriptors))
	for i, d := range r.descriptors {
		tools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Schema,
			},
		}
	}
	return tools
}

// AgentDetails renders the name and description of an agent followed by the
// skills it has, if any.
func (r *Registry) AgentDetails(name, description string) string {
	details := fmt.Sprintf("- Name: %s\n- Description: %s", name, description)
	if len(r.descriptors) == 0 {
		return details
	}

	lines := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		lines[i] = fmt.Sprintf("  - %s: %s", d.Name, d.Description)
	}
	return details + "\n- Skills:\n" + strings.Join(lines, "\n")
}

// Dispatch invokes the named skill with args inside a span. Errors returned by
// the skill are passed through untouched. Arguments the skill does not declare
// are logged and still handed to it.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (result string, err error) {
	skill, ok := r.skills[name]
	if !ok {
		return "", errors.Wrapf(ErrSkillNotFound, "%s", name)
	}
	descriptor, _ := r.Get(name)
	log := logger.G(ctx).WithField("skill", name)

	if args == nil {
		args = map[string]any{}
	}

	kvs, kvErr := skill.TracingKVs(args)
	if kvErr != nil {
		log.WithError(kvErr).Debug("failed to get tracing kvs")
	}
	ctx, span := telemetry.Tracer("recipe-agent.skills").Start(
		ctx,
		fmt.Sprintf("skills.dispatch.%s", name),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("skill.name", name),
			attribute.Int("skill.args", len(args)),
		}, kvs...)...),
	)
	defer func() {
		telemetry.End(span, err)
		span.End()
	}()

	for _, p := range descriptor.Parameters {
		if _, present := args[p.Name]; p.Required && !present {
			return "", errors.Wrapf(ErrInvalidArguments, "%s: missing required argument %s", name, p.Name)
		}
	}
	for key := range args {
		if _, declared := descriptor.Parameter(key); !declared {
			log.WithField("argument", key).Warn("skill received an undeclared argument")
		}
	}

	log.Debug("dispatching skill")
	return skill.Execute(ctx, args)
}

// DispatchJSON decodes a JSON object of arguments and dispatches. An empty
// string means no arguments.
func (r *Registry) DispatchJSON(ctx context.Context, name, rawArgs string) (string, error) {
	args := map[string]any{}
	if trimmed := strings.TrimSpace(rawArgs); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			return "", errors.Wrapf(ErrInvalidArguments, "%s: %v", name, err)
		}
	}
	return r.Dispatch(ctx, name, args)
}

// DecodeArgs decodes dispatch arguments into a typed input struct using its
// json tags.
func DecodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create argument decoder")
	}
	if err := decoder.Decode(args); err != nil {
		return errors.Wrapf(ErrInvalidArguments, "%v", err)
	}
	return nil
}
