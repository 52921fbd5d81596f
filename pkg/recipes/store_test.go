package recipes

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/recipe-agent/pkg/llm/llmtest"
)

// fakeEmbedder answers known texts with fixed vectors and everything else
// with fallback.
type fakeEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    []string
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{}, fallback: []float32{0, 0, 1}}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return append([]float32(nil), v...), nil
	}
	return append([]float32(nil), f.fallback...), nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memoryPersister struct {
	recipes []Recipe
	saves   int
	saveErr error
}

func (m *memoryPersister) Load(context.Context) ([]Recipe, error) {
	return cloneAll(m.recipes), nil
}

func (m *memoryPersister) Save(_ context.Context, recipes []Recipe) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.recipes = cloneAll(recipes)
	return nil
}

func sampleRecipes() []Recipe {
	return []Recipe{
		{Name: "Toast", Ingredients: []string{"bread"}, Steps: []string{"toast"}},
		{Name: "Porridge", Ingredients: []string{"oats", "water"}, Steps: []string{"simmer"}},
	}
}

func TestStore_LoadSeedEmbedsEveryRecipe(t *testing.T) {
	embedder := newFakeEmbedder()
	persister := &memoryPersister{}
	store := NewStore(embedder, persister)

	require.NoError(t, store.Load(context.Background()))

	assert.Equal(t, 11, store.Len())
	assert.Equal(t, 11, embedder.callCount())
	assert.Equal(t, 1, persister.saves)
	for _, r := range store.All() {
		assert.True(t, r.HasEmbedding(), r.Name)
	}
	assert.Equal(t, SeedRecipes()[0].Markdown(), embedder.calls[0])
}

func TestStore_LoadUsesPersistedRecipes(t *testing.T) {
	embedder := newFakeEmbedder()
	persisted := sampleRecipes()
	for i := range persisted {
		persisted[i].Embedding = []float32{1, 0, 0}
	}
	persister := &memoryPersister{recipes: persisted}
	store := NewStore(embedder, persister)

	require.NoError(t, store.Load(context.Background()))

	assert.Equal(t, 2, store.Len())
	assert.Zero(t, embedder.callCount())
	assert.Zero(t, persister.saves)
}

func TestStore_LoadEmbedsOnlyMissing(t *testing.T) {
	embedder := newFakeEmbedder()
	persisted := sampleRecipes()
	persisted[0].Embedding = []float32{1, 0, 0}
	persister := &memoryPersister{recipes: persisted}
	store := NewStore(embedder, persister)

	require.NoError(t, store.Load(context.Background()))

	require.Equal(t, 1, embedder.callCount())
	assert.Equal(t, persisted[1].Markdown(), embedder.calls[0])
	assert.Equal(t, 1, persister.saves)
	assert.Equal(t, []float32{0, 0, 1}, persister.recipes[1].Embedding)
}

func TestStore_LoadEmbeddingError(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.err = errors.New("backend down")
	store := NewStore(embedder, nil, WithSeed(sampleRecipes()))

	err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to embed recipe "Toast"`)
}

func TestStore_LoadTwiceFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	embedder := newFakeEmbedder()

	first := NewStore(embedder, NewJSONFilePersister(path))
	require.NoError(t, first.Load(context.Background()))
	require.Equal(t, 11, embedder.callCount())

	second := NewStore(embedder, NewJSONFilePersister(path))
	require.NoError(t, second.Load(context.Background()))

	assert.Equal(t, 11, embedder.callCount(), "persisted embeddings must be reused")
	assert.Equal(t, first.All(), second.All())
}

func TestStore_Add(t *testing.T) {
	embedder := newFakeEmbedder()
	persister := &memoryPersister{}
	store := NewStore(embedder, persister, WithSeed(nil))

	recipe := Recipe{Name: "Vegan Toast", Author: "Recipe Agent", Ingredients: []string{"bread"}, Steps: []string{"toast"}}
	require.NoError(t, store.Add(context.Background(), recipe))

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, embedder.callCount())
	assert.Equal(t, 1, persister.saves)
	assert.True(t, persister.recipes[0].HasEmbedding())

	found, err := store.FindByName("vegan toast")
	require.NoError(t, err)
	assert.Equal(t, "Recipe Agent", found.Author)
}

func TestStore_AddKeepsExistingEmbedding(t *testing.T) {
	embedder := newFakeEmbedder()
	store := NewStore(embedder, nil, WithSeed(nil))

	recipe := Recipe{Name: "Toast", Embedding: []float32{1, 2, 3}}
	require.NoError(t, store.Add(context.Background(), recipe))
	assert.Zero(t, embedder.callCount())
}

func TestStore_AddRequiresName(t *testing.T) {
	store := NewStore(newFakeEmbedder(), nil)
	assert.Error(t, store.Add(context.Background(), Recipe{Name: " "}))
}

func TestStore_AddSaveFailureLeavesStoreUnchanged(t *testing.T) {
	persister := &memoryPersister{saveErr: errors.New("disk full")}
	store := NewStore(newFakeEmbedder(), persister, WithSeed(sampleRecipes()))

	err := store.Add(context.Background(), Recipe{Name: "Soup", Ingredients: []string{"water"}, Steps: []string{"boil"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 2, store.Len())
}

func TestStore_FindByName(t *testing.T) {
	store := NewStore(newFakeEmbedder(), nil)

	r, err := store.FindByName("eggs BENEDICT")
	require.NoError(t, err)
	assert.Equal(t, "Eggs Benedict", r.Name)

	_, err = store.FindByName("Eggs")
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	r.Ingredients[0] = "mutated"
	again, err := store.FindByName("Eggs Benedict")
	require.NoError(t, err)
	assert.Equal(t, "4 eggs", again.Ingredients[0])
}

func TestStore_Import(t *testing.T) {
	embedder := newFakeEmbedder()
	persister := &memoryPersister{}
	store := NewStore(embedder, persister, WithSeed(nil))

	n, err := store.Import(context.Background(), sampleRecipes())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 2, embedder.callCount())
	assert.Equal(t, 1, persister.saves, "import persists once")
}

func TestStore_ImportAggregatesValidationErrors(t *testing.T) {
	embedder := newFakeEmbedder()
	store := NewStore(embedder, nil, WithSeed(nil))

	batch := []Recipe{
		{Name: "Fine", Ingredients: []string{"a"}, Steps: []string{"b"}},
		{Name: "", Ingredients: []string{"a"}, Steps: []string{"b"}},
		{Name: "No Steps", Ingredients: []string{"a"}},
		{Name: "Nothing"},
	}
	_, err := store.Import(context.Background(), batch)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 4)
	assert.Contains(t, err.Error(), "recipe 2: name is required")
	assert.Contains(t, err.Error(), "recipe 3 (No Steps): at least one step is required")

	assert.Zero(t, store.Len())
	assert.Zero(t, embedder.callCount())
}

func TestStore_Reindex(t *testing.T) {
	embedder := newFakeEmbedder()
	persister := &memoryPersister{}
	seed := sampleRecipes()
	seed[0].Embedding = []float32{9, 9, 9}
	store := NewStore(embedder, persister, WithSeed(seed))

	n, err := store.Reindex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, embedder.callCount())
	assert.Equal(t, []float32{0, 0, 1}, store.All()[0].Embedding)
	assert.Equal(t, 1, persister.saves)
}

// hashEmbedder embeds text with llmtest.HashEmbedding, so equal text always
// yields an equal vector.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return llmtest.HashEmbedding(text), nil
}

func TestStore_ReindexIsDeterministic(t *testing.T) {
	persister := &memoryPersister{recipes: sampleRecipes()}
	store := NewStore(hashEmbedder{}, persister)
	require.NoError(t, store.Load(context.Background()))
	loaded := store.All()

	_, err := store.Reindex(context.Background())
	require.NoError(t, err)
	first := store.All()

	_, err = store.Reindex(context.Background())
	require.NoError(t, err)
	second := store.All()

	for i := range loaded {
		require.True(t, first[i].HasEmbedding())
		assert.Equal(t, loaded[i].Embedding, first[i].Embedding)
		assert.Equal(t, first[i].Embedding, second[i].Embedding)
		assert.Equal(t, llmtest.HashEmbedding(first[i].Markdown()), second[i].Embedding)
	}
	assert.Equal(t, second, persister.recipes)
}

func TestStore_AllReturnsCopies(t *testing.T) {
	store := NewStore(newFakeEmbedder(), nil, WithSeed(sampleRecipes()))

	all := store.All()
	all[0].Name = "changed"

	assert.Equal(t, "Toast", store.All()[0].Name)
}
