package recipes

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
)

// ErrRecipeNotFound is returned when no recipe has the requested name.
var ErrRecipeNotFound = errors.New("recipe not found")

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Persister stores the full recipe set. Load returns an empty slice and no
// error when nothing has been persisted yet.
type Persister interface {
	Load(ctx context.Context) ([]Recipe, error)
	Save(ctx context.Context, recipes []Recipe) error
}

// Store is the in-memory recipe bank. Every recipe it hands out to search
// carries an embedding.
type Store struct {
	mu        sync.RWMutex
	recipes   []Recipe
	embedder  Embedder
	persister Persister
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSeed replaces the built-in seed recipes.
func WithSeed(recipes []Recipe) StoreOption {
	return func(s *Store) {
		s.recipes = cloneAll(recipes)
	}
}

// NewStore creates a store holding the seed recipes. A nil persister keeps
// recipes in memory only.
func NewStore(embedder Embedder, persister Persister, opts ...StoreOption) *Store {
	s := &Store{
		recipes:   SeedRecipes(),
		embedder:  embedder,
		persister: persister,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the seed set with persisted recipes when there are any, then
// embeds every recipe lacking an embedding. The set is saved again only if an
// embedding was computed.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persister != nil {
		persisted, err := s.persister.Load(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load recipes")
		}
		if len(persisted) > 0 {
			s.recipes = persisted
		}
	}

	computed := 0
	for i := range s.recipes {
		if s.recipes[i].HasEmbedding() {
			continue
		}
		embedding, err := s.embedRecipe(ctx, s.recipes[i])
		if err != nil {
			return err
		}
		s.recipes[i].Embedding = embedding
		computed++
	}

	logger.G(ctx).
		WithField("recipes", len(s.recipes)).
		WithField("embedded", computed).
		Debug("recipes loaded")

	if computed == 0 {
		return nil
	}
	return s.saveLocked(ctx, s.recipes)
}

// Save persists the full recipe set.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked(ctx, s.recipes)
}

// Add embeds recipe if needed, appends it and persists the set.
func (s *Store) Add(ctx context.Context, recipe Recipe) error {
	if strings.TrimSpace(recipe.Name) == "" {
		return errors.New("recipe name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipe = recipe.Clone()
	if !recipe.HasEmbedding() {
		embedding, err := s.embedRecipe(ctx, recipe)
		if err != nil {
			return err
		}
		recipe.Embedding = embedding
	}

	next := append(cloneAll(s.recipes), recipe)
	if err := s.saveLocked(ctx, next); err != nil {
		return err
	}
	s.recipes = next

	logger.G(ctx).WithField("recipe", recipe.Name).Info("recipe added")
	return nil
}

// Import validates a batch of recipes, embeds and appends them, and persists
// once. Every validation problem is reported together and nothing is added
// when any recipe is invalid.
func (s *Store) Import(ctx context.Context, batch []Recipe) (int, error) {
	if err := ValidateAll(batch); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneAll(s.recipes)
	for _, recipe := range batch {
		recipe = recipe.Clone()
		if !recipe.HasEmbedding() {
			embedding, err := s.embedRecipe(ctx, recipe)
			if err != nil {
				return 0, err
			}
			recipe.Embedding = embedding
		}
		next = append(next, recipe)
	}

	if err := s.saveLocked(ctx, next); err != nil {
		return 0, err
	}
	s.recipes = next
	return len(batch), nil
}

// Reindex recomputes every embedding from the recipe markdown and persists
// the set.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneAll(s.recipes)
	for i := range next {
		embedding, err := s.embedRecipe(ctx, next[i])
		if err != nil {
			return 0, err
		}
		next[i].Embedding = embedding
	}

	if err := s.saveLocked(ctx, next); err != nil {
		return 0, err
	}
	s.recipes = next
	return len(next), nil
}

// FindByName returns the first recipe whose name matches, ignoring case.
func (s *Store) FindByName(name string) (Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, recipe := range s.recipes {
		if strings.EqualFold(recipe.Name, name) {
			return recipe.Clone(), nil
		}
	}
	return Recipe{}, errors.Wrapf(ErrRecipeNotFound, "%q", name)
}

// All returns a copy of every recipe in store order.
func (s *Store) All() []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.recipes)
}

// Len returns the number of recipes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}

// ValidateAll checks that every recipe has a name, ingredients and steps.
func ValidateAll(batch []Recipe) error {
	var result *multierror.Error
	for i, recipe := range batch {
		label := recipe.Name
		if strings.TrimSpace(label) == "" {
			label = "<unnamed>"
			result = multierror.Append(result, errors.Errorf("recipe %d: name is required", i+1))
		}
		if len(recipe.Ingredients) == 0 {
			result = multierror.Append(result, errors.Errorf("recipe %d (%s): at least one ingredient is required", i+1, label))
		}
		if len(recipe.Steps) == 0 {
			result = multierror.Append(result, errors.Errorf("recipe %d (%s): at least one step is required", i+1, label))
		}
	}
	return result.ErrorOrNil()
}

func (s *Store) embedRecipe(ctx context.Context, recipe Recipe) ([]float32, error) {
	if s.embedder == nil {
		return nil, errors.New("no embedder configured")
	}
	embedding, err := s.embedder.Embed(ctx, recipe.Markdown())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to embed recipe %q", recipe.Name)
	}
	return embedding, nil
}

func (s *Store) saveLocked(ctx context.Context, recipes []Recipe) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, recipes); err != nil {
		return errors.Wrap(err, "failed to save recipes")
	}
	return nil
}

func cloneAll(recipes []Recipe) []Recipe {
	out := make([]Recipe, len(recipes))
	for i, recipe := range recipes {
		out[i] = recipe.Clone()
	}
	return out
}
