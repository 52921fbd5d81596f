// Package recipes holds the recipe bank: the in-memory recipe set, its
// persistence and similarity search over precomputed embeddings.
package recipes

import (
	"fmt"
	"strings"
)

// Recipe is a named list of ingredients and preparation steps.
type Recipe struct {
	Name        string    `json:"name" yaml:"name"`
	Author      string    `json:"author" yaml:"author"`
	Ingredients []string  `json:"ingredients" yaml:"ingredients"`
	Steps       []string  `json:"steps" yaml:"steps"`
	Embedding   []float32 `json:"embedding" yaml:"embedding,omitempty"`
}

// Markdown renders the recipe in the form shown to the model and used as the
// embedding input.
func (r Recipe) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Recipe: %s\n", r.Name)
	b.WriteString("## Ingredients:\n")
	for _, ingredient := range r.Ingredients {
		fmt.Fprintf(&b, "- %s\n", ingredient)
	}
	b.WriteString("\n## Steps:\n")
	for i, step := range r.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// HasEmbedding reports whether the recipe can take part in similarity search.
func (r Recipe) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// Clone returns a deep copy of r.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Steps = append([]string(nil), r.Steps...)
	if r.Embedding != nil {
		out.Embedding = append([]float32(nil), r.Embedding...)
	}
	return out
}

// Draft is the shape of a recipe requested from the model as structured
// output. It has no embedding, which is always computed locally.
type Draft struct {
	Name        string   `json:"name" jsonschema:"description=The name of the recipe."`
	Author      string   `json:"author" jsonschema:"description=The author of the recipe if available."`
	Ingredients []string `json:"ingredients" jsonschema:"description=The ingredients required for the recipe."`
	Steps       []string `json:"steps" jsonschema:"description=The steps to prepare the recipe."`
}

// Empty reports whether the model returned the empty recipe it is told to use
// when a recipe cannot be adapted.
func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Name) == "" || len(d.Ingredients) == 0 || len(d.Steps) == 0
}

// Recipe converts the draft into a recipe without an embedding.
func (d Draft) Recipe() Recipe {
	return Recipe{
		Name:        strings.TrimSpace(d.Name),
		Author:      d.Author,
		Ingredients: append([]string(nil), d.Ingredients...),
		Steps:       append([]string(nil), d.Steps...),
	}
}
