package recipes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFilePersister_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "recipes.json")
	p := NewJSONFilePersister(path)

	recipes := sampleRecipes()
	recipes[0].Author = "James Croft"
	recipes[0].Embedding = []float32{0.25, -0.5}
	require.NoError(t, p.Save(context.Background(), recipes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n    {\n        \"name\": \"Toast\""))
	assert.Contains(t, string(data), `"embedding": null`)
	assert.NoFileExists(t, path+".tmp")

	loaded, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, recipes, loaded)
}

func TestJSONFilePersister_MissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	loaded, err := NewJSONFilePersister(filepath.Join(dir, "missing.json")).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	loaded, err = NewJSONFilePersister(empty).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestJSONFilePersister_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONFilePersister(path).Load(context.Background())
	assert.Error(t, err)
}

func TestJSONFilePersister_ReadsNullAuthor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	content := `[
    {
        "name": "Eggs Benedict",
        "author": null,
        "ingredients": ["4 eggs"],
        "steps": ["Poach the eggs."],
        "embedding": [0.1, 0.2]
    }
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := NewJSONFilePersister(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Eggs Benedict", loaded[0].Name)
	assert.Empty(t, loaded[0].Author)
	assert.Equal(t, []float32{0.1, 0.2}, loaded[0].Embedding)
}

func TestBoltPersister_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.db")
	p := NewBoltPersister(path)

	var recipes []Recipe
	for i := 0; i < 12; i++ {
		recipes = append(recipes, embedded(fmt.Sprintf("recipe-%d", i), float32(i)))
	}
	require.NoError(t, p.Save(context.Background(), recipes))

	loaded, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, recipes, loaded, "order must survive past ten keys")

	require.NoError(t, p.Save(context.Background(), recipes[:2]))
	loaded, err = p.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 2, "save replaces previous contents")
}

func TestBoltPersister_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.db")

	loaded, err := NewBoltPersister(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.NoFileExists(t, path)
}

func TestStore_WithBoltPersister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.db")
	embedder := newFakeEmbedder()

	first := NewStore(embedder, NewBoltPersister(path), WithSeed(sampleRecipes()))
	require.NoError(t, first.Load(context.Background()))

	second := NewStore(embedder, NewBoltPersister(path))
	require.NoError(t, second.Load(context.Background()))

	assert.Equal(t, 2, second.Len())
	assert.Equal(t, 2, embedder.callCount())
}

func TestSQLitePersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "recipes.sqlite")
	p, err := NewSQLitePersister(ctx, path)
	require.NoError(t, err)
	defer p.Close()

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	var recipes []Recipe
	for i := 0; i < 12; i++ {
		recipes = append(recipes, embedded(fmt.Sprintf("recipe-%d", i), float32(i), 0.25))
	}
	recipes[3].Author = "James Croft"
	require.NoError(t, p.Save(ctx, recipes))

	loaded, err = p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, recipes, loaded)

	require.NoError(t, p.Save(ctx, recipes[:2]))
	loaded, err = p.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 2, "save replaces previous contents")
}

func TestSQLitePersister_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "recipes.sqlite")
	embedder := newFakeEmbedder()

	first, err := NewSQLitePersister(ctx, path)
	require.NoError(t, err)
	store := NewStore(embedder, first, WithSeed(sampleRecipes()))
	require.NoError(t, store.Load(ctx))
	require.NoError(t, first.Close())

	second, err := NewSQLitePersister(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	reloaded := NewStore(embedder, second)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []string{"Toast", "Porridge"}, []string{reloaded.All()[0].Name, reloaded.All()[1].Name})
	assert.Equal(t, 2, embedder.callCount(), "persisted embeddings are reused")
}

func TestSQLitePersister_ReportsCorruptRows(t *testing.T) {
	ctx := context.Background()
	p, err := NewSQLitePersister(ctx, filepath.Join(t.TempDir(), "recipes.sqlite"))
	require.NoError(t, err)
	defer p.Close()

	_, err = p.db.ExecContext(ctx, `INSERT INTO recipes (position, name, data) VALUES (0, 'Broken', '{not json')`)
	require.NoError(t, err)

	_, err = p.Load(ctx)
	assert.ErrorContains(t, err, "failed to decode recipe 0 (Broken)")
}

func TestDecode(t *testing.T) {
	yamlDoc := `- name: Lemon Water
  ingredients:
    - 1 lemon
    - 500ml water
  steps:
    - Squeeze the lemon into the water.
`
	recipes, err := Decode([]byte(yamlDoc), ".YAML")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Lemon Water", recipes[0].Name)
	assert.Equal(t, []string{"1 lemon", "500ml water"}, recipes[0].Ingredients)

	recipes, err = Decode([]byte(`[{"name":"Tea","ingredients":["tea bag"],"steps":["steep"]}]`), ".json")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Tea", recipes[0].Name)

	_, err = Decode([]byte("x"), ".toml")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yml")
	require.NoError(t, os.WriteFile(path, []byte("- name: Tea\n  ingredients: [tea bag]\n  steps: [steep]\n"), 0o644))

	recipes, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, []string{"steep"}, recipes[0].Steps)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
