package recipes

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
)

// Threshold is the score a recipe must exceed to count as a match.
const Threshold = 0.5

var (
	// ErrNoMatch is returned when no recipe scores above the threshold.
	ErrNoMatch = errors.New("no recipe matches the query")
	// ErrDimensionMismatch is returned when two vectors differ in length.
	ErrDimensionMismatch = errors.New("embedding dimensions do not match")
)

// Match is a recipe and its similarity to a query.
type Match struct {
	Recipe Recipe
	Score  float64
}

// Dot returns the dot product of a and b, accumulated in float64.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "%d != %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Rank scores every recipe against query with the raw dot product, keeps the
// k best and drops those scoring threshold or less. Ties keep store order.
func Rank(recipes []Recipe, query []float32, k int, threshold float64) ([]Match, error) {
	if k <= 0 || len(recipes) == 0 {
		return nil, ErrNoMatch
	}

	scored := make([]Match, 0, len(recipes))
	for _, recipe := range recipes {
		score, err := Dot(recipe.Embedding, query)
		if err != nil {
			return nil, errors.Wrapf(err, "recipe %q", recipe.Name)
		}
		scored = append(scored, Match{Recipe: recipe, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k < len(scored) {
		scored = scored[:k]
	}

	matches := scored[:0]
	for _, m := range scored {
		if m.Score > threshold {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil, ErrNoMatch
	}
	return matches, nil
}

// Search embeds query and returns up to k recipes scoring above Threshold,
// best first.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		return nil, ErrNoMatch
	}

	recipes := s.All()
	if len(recipes) == 0 {
		return nil, ErrNoMatch
	}
	if s.embedder == nil {
		return nil, errors.New("no embedder configured")
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to embed query")
	}

	matches, err := Rank(recipes, vector, k, Threshold)
	if err != nil {
		return nil, err
	}

	logger.G(ctx).
		WithField("k", k).
		WithField("matches", len(matches)).
		WithField("best", matches[0].Recipe.Name).
		Debug("recipe search finished")
	return matches, nil
}
