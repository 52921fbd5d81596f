package agent

import (
	"github.com/pkg/errors"

	"github.com/jingkaihe/recipe-agent/pkg/llm"
	"github.com/jingkaihe/recipe-agent/pkg/prompts"
	"github.com/jingkaihe/recipe-agent/pkg/recipes"
	"github.com/jingkaihe/recipe-agent/pkg/skills"
	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

const (
	RecipeAgentName        = "Recipe Agent"
	RecipeAgentDescription = "An agent that can help with cooking recipes."
)

// RecipeOptions configures NewRecipeAgent.
type RecipeOptions struct {
	Renderer           *prompts.Renderer
	Handler            llmtypes.MessageHandler
	KitchenIngredients []string
}

// NewRecipeSkills builds the recipe agent's skills in the order they are
// offered to the model.
func NewRecipeSkills(backend *llm.Backend, store *recipes.Store, renderer *prompts.Renderer, kitchen []string) (*skills.Registry, error) {
	registry, err := skills.NewRegistry(
		skills.NewFindRecipesSkill(store, renderer),
		skills.NewKitchenSkill(kitchen),
		skills.NewVeganSkill(store, backend, renderer),
		skills.NewShoppingListSkill(store, backend, renderer),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to register recipe skills")
	}
	return registry, nil
}

// NewRecipeAgent wires the recipe skills to store and backend. The store
// should already be loaded.
func NewRecipeAgent(backend *llm.Backend, store *recipes.Store, opts RecipeOptions) (*Agent, error) {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = prompts.NewRenderer(prompts.TemplateFS)
	}

	registry, err := NewRecipeSkills(backend, store, renderer, opts.KitchenIngredients)
	if err != nil {
		return nil, err
	}

	return New(RecipeAgentName, RecipeAgentDescription, registry, backend,
		WithRenderer(renderer),
		WithHandler(opts.Handler),
	), nil
}
