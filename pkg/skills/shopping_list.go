package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/jingkaihe/recipe-agent/pkg/llm"
	"github.com/jingkaihe/recipe-agent/pkg/prompts"
	"github.com/jingkaihe/recipe-agent/pkg/recipes"
)

// RecipeFinder looks recipes up by name.
type RecipeFinder interface {
	FindByName(name string) (recipes.Recipe, error)
}

// Completer sends a conversation to the chat model.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, opt llm.CompletionOpt) (openai.ChatCompletionMessage, error)
}

// ShoppingListSkill lists what to buy for a recipe given what is at hand.
type ShoppingListSkill struct {
	finder   RecipeFinder
	backend  Completer
	renderer *prompts.Renderer
}

// ShoppingListInput is the argument object of generate_shopping_list_from_recipe.
type ShoppingListInput struct {
	RecipeName           string   `json:"recipe_name" jsonschema:"description=The name of the recipe to generate a shopping list for."`
	AvailableIngredients []string `json:"available_ingredients,omitempty" jsonschema:"description=An optional list of ingredients that are available in the kitchen."`
}

// NewShoppingListSkill creates the skill.
func NewShoppingListSkill(finder RecipeFinder, backend Completer, renderer *prompts.Renderer) *ShoppingListSkill {
	return &ShoppingListSkill{finder: finder, backend: backend, renderer: renderer}
}

// Name returns the name of the skill
func (s *ShoppingListSkill) Name() string {
	return "generate_shopping_list_from_recipe"
}

// Description returns the description of the skill
func (s *ShoppingListSkill) Description() string {
	return `Generate a shopping list based on the ingredients required for a recipe and the available ingredients in the kitchen.

Args:
- recipe_name: The name of the recipe to generate a shopping list for.
- available_ingredients: An optional list of ingredients that are available in the kitchen.`
}

// GenerateSchema generates the JSON schema for the skill's input parameters
func (s *ShoppingListSkill) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[ShoppingListInput]()
}

// TracingKVs returns tracing attributes.
func (s *ShoppingListSkill) TracingKVs(args map[string]any) ([]attribute.KeyValue, error) {
	var input ShoppingListInput
	if err := DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	return []attribute.KeyValue{
		attribute.String("recipe_name", input.RecipeName),
		attribute.Int("available_ingredients", len(input.AvailableIngredients)),
	}, nil
}

// Execute sends the recipe and the available ingredients as two text parts
// and returns the model's shopping list.
func (s *ShoppingListSkill) Execute(ctx context.Context, args map[string]any) (string, error) {
	var input ShoppingListInput
	if err := DecodeArgs(args, &input); err != nil {
		return "", err
	}

	recipe, err := s.finder.FindByName(input.RecipeName)
	if errors.Is(err, recipes.ErrRecipeNotFound) {
		return recipeNotFound(input.RecipeName), nil
	}
	if err != nil {
		return "", err
	}

	systemPrompt, err := s.renderer.RenderShoppingListPrompt()
	if err != nil {
		return "", err
	}

	available := input.AvailableIngredients
	if available == nil {
		available = []string{}
	}
	availableJSON, err := json.Marshal(available)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode available ingredients")
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: recipe.Markdown()},
				{Type: openai.ChatMessagePartTypeText, Text: "Available ingredients:\n\n" + string(availableJSON)},
			},
		},
	}

	reply, err := s.backend.Complete(ctx, messages, llm.CompletionOpt{})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply.Content) == "" {
		return fmt.Sprintf("Sorry, I couldn't generate a shopping list for the recipe %s.", input.RecipeName), nil
	}
	return reply.Content, nil
}
