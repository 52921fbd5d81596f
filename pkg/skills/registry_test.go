package skills

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jingkaihe/recipe-agent/pkg/prompts"
	"github.com/jingkaihe/recipe-agent/pkg/telemetry/telemetrytest"
	skilltypes "github.com/jingkaihe/recipe-agent/pkg/types/skills"
)

type echoInput struct {
	Text  string `json:"text" jsonschema:"title=Text,description=Text to echo."`
	Times int    `json:"times,omitempty" jsonschema:"description=How many times."`
}

type echoSkill struct {
	name   string
	err    error
	schema *jsonschema.Schema
	calls  []map[string]any
}

func (s *echoSkill) TracingKVs(args map[string]any) ([]attribute.KeyValue, error) {
	var input echoInput
	if err := DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	return []attribute.KeyValue{attribute.String("text", input.Text)}, nil
}

func (s *echoSkill) Name() string { return s.name }

func (s *echoSkill) Description() string {
	return "  Echo the text\n  back to the caller.  "
}

func (s *echoSkill) GenerateSchema() *jsonschema.Schema {
	if s.schema != nil {
		return s.schema
	}
	return GenerateSchema[echoInput]()
}

func (s *echoSkill) Execute(_ context.Context, args map[string]any) (string, error) {
	s.calls = append(s.calls, args)
	if s.err != nil {
		return "", s.err
	}
	var input echoInput
	if err := DecodeArgs(args, &input); err != nil {
		return "", err
	}
	return input.Text, nil
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(&echoSkill{name: "echo"}, &echoSkill{name: "shout"})
	require.NoError(t, err)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"echo", "shout"}, r.Names())

	d, ok := r.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "Echo the text back to the caller.", d.Description)

	require.Len(t, d.Parameters, 2)
	assert.Equal(t, skilltypes.Parameter{Name: "text", Type: "string", Description: "Text to echo.", Required: true}, d.Parameters[0])
	assert.Equal(t, "times", d.Parameters[1].Name)
	assert.Equal(t, "integer", d.Parameters[1].Type)
	assert.False(t, d.Parameters[1].Required)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestNewRegistry_Rejects(t *testing.T) {
	t.Run("duplicate names", func(t *testing.T) {
		_, err := NewRegistry(&echoSkill{name: "echo"}, &echoSkill{name: "echo"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "skill echo is registered twice")
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewRegistry(&echoSkill{name: " "})
		assert.Error(t, err)
	})

	t.Run("non object schema", func(t *testing.T) {
		_, err := NewRegistry(&echoSkill{name: "echo", schema: &jsonschema.Schema{Type: "string"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "argument schema must be an object")
	})
}

func TestRegistry_SchemaIsStripped(t *testing.T) {
	r, err := NewRegistry(&echoSkill{name: "echo"})
	require.NoError(t, err)

	d, _ := r.Get("echo")
	assert.Equal(t, "object", d.Schema["type"])
	assert.NotContains(t, d.Schema, "$schema")
	assert.NotContains(t, d.Schema, "$id")
	assert.NotContains(t, d.Schema, "title")
	assert.Equal(t, false, d.Schema["additionalProperties"])

	props, ok := d.Schema["properties"].(map[string]any)
	require.True(t, ok)
	text, ok := props["text"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, text, "title")
	assert.Equal(t, "Text to echo.", text["description"])
	assert.Equal(t, []any{"text"}, d.Schema["required"])
}

func TestStripMetadata_KeepsPropertyNamedTitle(t *testing.T) {
	node := map[string]any{
		"title": "Root",
		"type":  "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "title": "Title"},
		},
	}
	stripMetadata(node)

	assert.NotContains(t, node, "title")
	props := node["properties"].(map[string]any)
	require.Contains(t, props, "title")
	assert.Equal(t, map[string]any{"type": "string"}, props["title"])
}

func TestRegistry_ToOpenAITools(t *testing.T) {
	r, err := NewRegistry(&echoSkill{name: "echo"})
	require.NoError(t, err)

	tools := r.ToOpenAITools()
	require.Len(t, tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, tools[0].Type)
	require.NotNil(t, tools[0].Function)
	assert.Equal(t, "echo", tools[0].Function.Name)
	assert.Equal(t, "Echo the text back to the caller.", tools[0].Function.Description)

	data, err := json.Marshal(tools[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"parameters":{`)
}

func TestRegistry_AgentDetails(t *testing.T) {
	empty, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, "- Name: Chef\n- Description: Cooks.", empty.AgentDetails("Chef", "Cooks."))

	r, err := NewRegistry(&echoSkill{name: "echo"}, &echoSkill{name: "shout"})
	require.NoError(t, err)
	assert.Equal(t,
		"- Name: Chef\n- Description: Cooks.\n- Skills:\n"+
			"  - echo: Echo the text back to the caller.\n"+
			"  - shout: Echo the text back to the caller.",
		r.AgentDetails("Chef", "Cooks."))
}

func TestRegistry_Dispatch(t *testing.T) {
	skill := &echoSkill{name: "echo"}
	r, err := NewRegistry(skill)
	require.NoError(t, err)
	ctx := context.Background()

	out, err := r.Dispatch(ctx, "echo", map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = r.Dispatch(ctx, "nope", nil)
	assert.ErrorIs(t, err, ErrSkillNotFound)
	assert.Contains(t, err.Error(), "nope")

	_, err = r.Dispatch(ctx, "echo", map[string]any{"times": 2})
	assert.ErrorIs(t, err, ErrInvalidArguments)
	assert.Len(t, skill.calls, 1, "invalid arguments must not reach the skill")
}

func TestRegistry_DispatchPropagatesSkillErrors(t *testing.T) {
	sentinel := errors.New("kitchen on fire")
	r, err := NewRegistry(&echoSkill{name: "echo", err: sentinel})
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "echo", map[string]any{"text": "x"})
	assert.Equal(t, sentinel, err)
}

func TestRegistry_DispatchPassesUndeclaredArguments(t *testing.T) {
	skill := &echoSkill{name: "echo"}
	r, err := NewRegistry(skill)
	require.NoError(t, err)

	out, err := r.Dispatch(context.Background(), "echo", map[string]any{"text": "hi", "volume": "loud"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
	require.Len(t, skill.calls, 1)
	assert.Equal(t, "loud", skill.calls[0]["volume"])
}

func TestRegistry_DispatchTracing(t *testing.T) {
	recorder := telemetrytest.Record(t)

	sentinel := errors.New("kitchen on fire")
	r, err := NewRegistry(&echoSkill{name: "echo"}, &echoSkill{name: "broken", err: sentinel})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = r.Dispatch(ctx, "echo", map[string]any{"text": "hello", "times": 2})
	require.NoError(t, err)
	_, err = r.Dispatch(ctx, "broken", map[string]any{"text": "x"})
	require.Error(t, err)
	_, err = r.Dispatch(ctx, "nope", nil)
	require.Error(t, err)

	assert.Equal(t, []string{"skills.dispatch.echo", "skills.dispatch.broken"}, telemetrytest.Names(recorder), "unknown skills are not traced")

	echo, _ := telemetrytest.Span(recorder, "skills.dispatch.echo")
	attrs := telemetrytest.Attributes(echo)
	assert.Equal(t, "echo", attrs["skill.name"].AsString())
	assert.Equal(t, int64(2), attrs["skill.args"].AsInt64())
	assert.Equal(t, "hello", attrs["text"].AsString())
	assert.Equal(t, codes.Ok, echo.Status().Code)

	broken, _ := telemetrytest.Span(recorder, "skills.dispatch.broken")
	assert.Equal(t, codes.Error, broken.Status().Code)
	assert.Equal(t, "kitchen on fire", broken.Status().Description)
}

func TestRecipeSkillTracingKVs(t *testing.T) {
	renderer := testRenderer()
	find := NewFindRecipesSkill(&fakeSearcher{}, renderer)
	kvs, err := find.TracingKVs(map[string]any{"description": "cake", "count": 2})
	require.NoError(t, err)
	assert.Contains(t, kvs, attribute.String("description", "cake"))
	assert.Contains(t, kvs, attribute.Int("count", 2))

	vegan := NewVeganSkill(nil, nil, renderer)
	kvs, err = vegan.TracingKVs(map[string]any{"recipe_name": "Eggs Benedict"})
	require.NoError(t, err)
	assert.Equal(t, []attribute.KeyValue{attribute.String("recipe_name", "Eggs Benedict")}, kvs)

	shopping := NewShoppingListSkill(nil, nil, renderer)
	kvs, err = shopping.TracingKVs(map[string]any{"recipe_name": "Pancakes", "available_ingredients": []any{"flour"}})
	require.NoError(t, err)
	assert.Contains(t, kvs, attribute.Int("available_ingredients", 1))

	_, err = shopping.TracingKVs(map[string]any{"recipe_name": []any{1, 2}})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	kitchen := NewKitchenSkill([]string{"oats"})
	kvs, err = kitchen.TracingKVs(nil)
	require.NoError(t, err)
	assert.Equal(t, []attribute.KeyValue{attribute.Int("ingredients", 1)}, kvs)
}

func TestRegistry_DispatchJSON(t *testing.T) {
	r, err := NewRegistry(&echoSkill{name: "echo"}, NewKitchenSkill([]string{"oats"}))
	require.NoError(t, err)
	ctx := context.Background()

	out, err := r.DispatchJSON(ctx, "echo", `{"text":"hi","times":"3"}`)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	out, err = r.DispatchJSON(ctx, "find_ingredients_in_kitchen", "")
	require.NoError(t, err)
	assert.Equal(t, `["oats"]`, out)

	out, err = r.DispatchJSON(ctx, "find_ingredients_in_kitchen", "null")
	require.NoError(t, err)
	assert.Equal(t, `["oats"]`, out)

	_, err = r.DispatchJSON(ctx, "echo", `{"text":`)
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestDecodeArgs(t *testing.T) {
	var input FindRecipesInput
	err := DecodeArgs(map[string]any{
		"description":           "cake",
		"available_ingredients": []any{"flour", "sugar"},
		"count":                 float64(2),
	}, &input)
	require.NoError(t, err)
	assert.Equal(t, FindRecipesInput{Description: "cake", AvailableIngredients: []string{"flour", "sugar"}, Count: 2}, input)

	err = DecodeArgs(map[string]any{"count": "many"}, &input)
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestRecipeSkillDescriptors(t *testing.T) {
	renderer := prompts.NewRenderer(prompts.TemplateFS)
	r, err := NewRegistry(
		NewFindRecipesSkill(nil, renderer),
		NewKitchenSkill(nil),
		NewVeganSkill(nil, nil, renderer),
		NewShoppingListSkill(nil, nil, renderer),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"find_recipes_by_description",
		"find_ingredients_in_kitchen",
		"modify_recipe_if_not_vegan",
		"generate_shopping_list_from_recipe",
	}, r.Names())

	find, _ := r.Get("find_recipes_by_description")
	assert.Equal(t, "Find a single recipe that best matches the given description. Args: - description: A description of the recipe the user is looking for. - available_ingredients: An optional list of ingredients that the user has available. - count: The number of recipes to return. Default is 1.", find.Description)
	require.Len(t, find.Parameters, 3)
	assert.True(t, find.Parameters[0].Required)
	assert.Equal(t, "array", find.Parameters[1].Type)
	assert.Equal(t, "string", find.Parameters[1].ItemType)
	assert.False(t, find.Parameters[1].Required)
	assert.False(t, find.Parameters[2].Required)
	assert.NotNil(t, find.Parameters[2].Default)

	kitchen, _ := r.Get("find_ingredients_in_kitchen")
	assert.Empty(t, kitchen.Parameters)
	assert.Equal(t, map[string]any{}, kitchen.Schema["properties"])

	vegan, _ := r.Get("modify_recipe_if_not_vegan")
	require.Len(t, vegan.Parameters, 1)
	assert.Equal(t, "recipe_name", vegan.Parameters[0].Name)
	assert.True(t, vegan.Parameters[0].Required)

	shopping, _ := r.Get("generate_shopping_list_from_recipe")
	require.Len(t, shopping.Parameters, 2)
	assert.False(t, shopping.Parameters[1].Required)
}
