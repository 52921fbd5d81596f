package skills

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/prompts"
	"github.com/jingkaihe/recipe-agent/pkg/recipes"
)

// ModifiedRecipeAuthor is the author of every recipe the agent adapts.
const ModifiedRecipeAuthor = "Recipe Agent"

// RecipeBook looks recipes up by name and accepts new ones.
type RecipeBook interface {
	FindByName(name string) (recipes.Recipe, error)
	Add(ctx context.Context, recipe recipes.Recipe) error
}

// StructuredCompleter asks the chat model for a reply matching a JSON schema.
type StructuredCompleter interface {
	CompleteJSON(ctx context.Context, messages []openai.ChatCompletionMessage, name string, schema *jsonschema.Schema, target any) (bool, error)
}

// VeganSkill adapts a known recipe to be vegan-friendly and stores the result.
type VeganSkill struct {
	book     RecipeBook
	backend  StructuredCompleter
	renderer *prompts.Renderer
	schema   *jsonschema.Schema
}

// VeganInput is the argument object of modify_recipe_if_not_vegan.
type VeganInput struct {
	RecipeName string `json:"recipe_name" jsonschema:"description=The name of the recipe to modify."`
}

// NewVeganSkill creates the skill.
func NewVeganSkill(book RecipeBook, backend StructuredCompleter, renderer *prompts.Renderer) *VeganSkill {
	return &VeganSkill{
		book:     book,
		backend:  backend,
		renderer: renderer,
		schema:   GenerateSchema[recipes.Draft](),
	}
}

// Name returns the name of the skill
func (s *VeganSkill) Name() string {
	return "modify_recipe_if_not_vegan"
}

// Description returns the description of the skill
func (s *VeganSkill) Description() string {
	return `Modifies a known recipe to make it vegan-friendly, if it contains meat or dairy products.

Args:
- recipe_name: The name of the recipe to modify.`
}

// GenerateSchema generates the JSON schema for the skill's input parameters
func (s *VeganSkill) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[VeganInput]()
}

// TracingKVs returns tracing attributes.
func (s *VeganSkill) TracingKVs(args map[string]any) ([]attribute.KeyValue, error) {
	var input VeganInput
	if err := DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	return []attribute.KeyValue{
		attribute.String("recipe_name", input.RecipeName),
	}, nil
}

// Execute asks the model for a vegan version of the recipe. A usable reply is
// embedded, added to the recipe bank and returned as markdown.
func (s *VeganSkill) Execute(ctx context.Context, args map[string]any) (string, error) {
	var input VeganInput
	if err := DecodeArgs(args, &input); err != nil {
		return "", err
	}

	recipe, err := s.book.FindByName(input.RecipeName)
	if errors.Is(err, recipes.ErrRecipeNotFound) {
		return recipeNotFound(input.RecipeName), nil
	}
	if err != nil {
		return "", err
	}

	systemPrompt, err := s.renderer.RenderVeganPrompt(prompts.VeganData{Author: ModifiedRecipeAuthor})
	if err != nil {
		return "", err
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: recipe.Markdown()},
	}

	var draft recipes.Draft
	ok, err := s.backend.CompleteJSON(ctx, messages, "recipe", s.schema, &draft)
	if err != nil {
		return "", err
	}
	if !ok || draft.Empty() {
		logger.G(ctx).WithField("recipe", recipe.Name).Info("recipe could not be made vegan")
		return fmt.Sprintf("Sorry, I couldn't modify the recipe %s to be vegan-friendly.", input.RecipeName), nil
	}

	vegan := draft.Recipe()
	if vegan.Author == "" {
		vegan.Author = ModifiedRecipeAuthor
	}
	if err := s.book.Add(ctx, vegan); err != nil {
		return "", errors.Wrap(err, "failed to store vegan recipe")
	}
	return vegan.Markdown(), nil
}

func recipeNotFound(name string) string {
	return fmt.Sprintf("Sorry, I couldn't find a recipe with the name %s.", name)
}
