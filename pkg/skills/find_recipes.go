package skills

import (
	"context"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
	"github.com/pkg/errors"

	"github.com/jingkaihe/recipe-agent/pkg/prompts"
	"github.com/jingkaihe/recipe-agent/pkg/recipes"
)

// NoRecipesFound is returned to the model when a search has no match.
const NoRecipesFound = "Sorry, I couldn't find recipes that matches your description."

// RecipeSearcher finds recipes similar to a query.
type RecipeSearcher interface {
	Search(ctx context.Context, query string, k int) ([]recipes.Match, error)
}

// FindRecipesSkill searches the recipe bank by meaning.
type FindRecipesSkill struct {
	searcher RecipeSearcher
	renderer *prompts.Renderer
}

// FindRecipesInput is the argument object of find_recipes_by_description.
type FindRecipesInput struct {
	Description          string   `json:"description" jsonschema:"description=A description of the recipe the user is looking for."`
	AvailableIngredients []string `json:"available_ingredients,omitempty" jsonschema:"description=An optional list of ingredients that the user has available."`
	Count                int      `json:"count,omitempty" jsonschema:"description=The number of recipes to return.,default=1"`
}

// NewFindRecipesSkill creates the skill over searcher.
func NewFindRecipesSkill(searcher RecipeSearcher, renderer *prompts.Renderer) *FindRecipesSkill {
	return &FindRecipesSkill{searcher: searcher, renderer: renderer}
}

// Name returns the name of the skill
func (s *FindRecipesSkill) Name() string {
	return "find_recipes_by_description"
}

// Description returns the description of the skill
func (s *FindRecipesSkill) Description() string {
	return `Find a single recipe that best matches the given description.

Args:
- description: A description of the recipe the user is looking for.
- available_ingredients: An optional list of ingredients that the user has available.
- count: The number of recipes to return. Default is 1.`
}

// GenerateSchema generates the JSON schema for the skill's input parameters
func (s *FindRecipesSkill) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[FindRecipesInput]()
}

// TracingKVs returns tracing attributes.
func (s *FindRecipesSkill) TracingKVs(args map[string]any) ([]attribute.KeyValue, error) {
	var input FindRecipesInput
	if err := DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	return []attribute.KeyValue{
		attribute.String("description", input.Description),
		attribute.StringSlice("available_ingredients", input.AvailableIngredients),
		attribute.Int("count", input.Count),
	}, nil
}

// Execute embeds a query built from the description and available
// ingredients and returns the markdown of every match.
func (s *FindRecipesSkill) Execute(ctx context.Context, args map[string]any) (string, error) {
	var input FindRecipesInput
	if err := DecodeArgs(args, &input); err != nil {
		return "", err
	}
	if input.Count <= 0 {
		input.Count = 1
	}

	query, err := s.renderer.RenderFindRecipesQuery(prompts.FindRecipesData{
		Description:          input.Description,
		AvailableIngredients: input.AvailableIngredients,
	})
	if err != nil {
		return "", err
	}

	matches, err := s.searcher.Search(ctx, query, input.Count)
	if errors.Is(err, recipes.ErrNoMatch) {
		return NoRecipesFound, nil
	}
	if err != nil {
		return "", err
	}

	rendered := make([]string, len(matches))
	for i, m := range matches {
		rendered[i] = m.Recipe.Markdown()
	}
	return strings.Join(rendered, "\n\n"), nil
}
