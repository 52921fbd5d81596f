package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"

	"github.com/jingkaihe/recipe-agent/pkg/presenter"
	"github.com/jingkaihe/recipe-agent/pkg/recipes"
)

type RecipeOutputFormat int

const (
	RecipeTableFormat RecipeOutputFormat = iota
	RecipeJSONFormat
)

// RecipeOutput is one row of the recipe listing.
type RecipeOutput struct {
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Ingredients int      `json:"ingredients"`
	Steps       int      `json:"steps"`
	Score       *float64 `json:"score,omitempty"`
}

type RecipeListOutput struct {
	Recipes []RecipeOutput
	Format  RecipeOutputFormat
}

func NewRecipeListOutput(all []recipes.Recipe, format RecipeOutputFormat) *RecipeListOutput {
	output := &RecipeListOutput{
		Recipes: make([]RecipeOutput, 0, len(all)),
		Format:  format,
	}
	for _, r := range all {
		output.Recipes = append(output.Recipes, recipeOutput(r))
	}
	return output
}

// NewSearchOutput lists matches best first with their scores.
func NewSearchOutput(matches []recipes.Match, format RecipeOutputFormat) *RecipeListOutput {
	output := &RecipeListOutput{
		Recipes: make([]RecipeOutput, 0, len(matches)),
		Format:  format,
	}
	for _, m := range matches {
		row := recipeOutput(m.Recipe)
		score := m.Score
		row.Score = &score
		output.Recipes = append(output.Recipes, row)
	}
	return output
}

func recipeOutput(r recipes.Recipe) RecipeOutput {
	return RecipeOutput{
		Name:        r.Name,
		Author:      r.Author,
		Ingredients: len(r.Ingredients),
		Steps:       len(r.Steps),
	}
}

func (o *RecipeListOutput) Render(w io.Writer) error {
	if o.Format == RecipeJSONFormat {
		return o.renderJSON(w)
	}
	return o.renderTable(w)
}

func (o *RecipeListOutput) renderJSON(w io.Writer) error {
	type jsonOutput struct {
		Recipes []RecipeOutput `json:"recipes"`
	}

	data, err := json.MarshalIndent(jsonOutput{Recipes: o.Recipes}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (o *RecipeListOutput) renderTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	scored := o.hasScore()
	if scored {
		fmt.Fprintln(tw, "Name\tAuthor\tIngredients\tSteps\tScore")
		fmt.Fprintln(tw, "----\t------\t-----------\t-----\t-----")
	} else {
		fmt.Fprintln(tw, "Name\tAuthor\tIngredients\tSteps")
		fmt.Fprintln(tw, "----\t------\t-----------\t-----")
	}

	for _, r := range o.Recipes {
		author := r.Author
		if author == "" {
			author = "-"
		}
		if scored {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\n", r.Name, author, r.Ingredients, r.Steps, *r.Score)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Name, author, r.Ingredients, r.Steps)
		}
	}

	return tw.Flush()
}

func (o *RecipeListOutput) hasScore() bool {
	for _, r := range o.Recipes {
		if r.Score != nil {
			return true
		}
	}
	return false
}

func outputFormat(jsonOutput bool) RecipeOutputFormat {
	if jsonOutput {
		return RecipeJSONFormat
	}
	return RecipeTableFormat
}

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Inspect and manage the recipe store",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every recipe in the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return runRecipesList(cmd.OutOrStdout(), a.store, jsonOutput)
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a recipe as markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, _ := cmd.Flags().GetBool("html")

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return runRecipesShow(cmd.OutOrStdout(), a.store, strings.Join(args, " "), html)
	},
}

var recipesSearchCmd = &cobra.Command{
	Use:   "search <description>",
	Short: "Find recipes similar to a description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, _ := cmd.Flags().GetInt("top")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return runRecipesSearch(cmd.Context(), cmd.OutOrStdout(), a.store, strings.Join(args, " "), k, jsonOutput)
	},
}

var recipesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add recipes from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return runRecipesImport(cmd.Context(), presenter.Default(), a.store, args[0])
	},
}

var recipesReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Recompute the embedding of every recipe",
	Long:  `Recompute the embedding of every recipe, e.g. after switching embedding models.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		n, err := a.store.Reindex(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "failed to reindex recipes")
		}
		presenter.Success(fmt.Sprintf("Reindexed %d recipes with %s", n, a.backend.EmbeddingModel()))
		return nil
	},
}

func init() {
	recipesCmd.AddCommand(recipesListCmd)
	recipesCmd.AddCommand(recipesShowCmd)
	recipesCmd.AddCommand(recipesSearchCmd)
	recipesCmd.AddCommand(recipesImportCmd)
	recipesCmd.AddCommand(recipesReindexCmd)

	recipesListCmd.Flags().Bool("json", false, "Output in JSON format")
	recipesShowCmd.Flags().Bool("html", false, "Render the recipe as HTML")
	recipesSearchCmd.Flags().IntP("top", "k", 3, "Maximum number of recipes to return")
	recipesSearchCmd.Flags().Bool("json", false, "Output in JSON format")
}

func runRecipesList(w io.Writer, store *recipes.Store, jsonOutput bool) error {
	all := store.All()
	if len(all) == 0 && !jsonOutput {
		presenter.Info("No recipes found")
		return nil
	}

	if err := NewRecipeListOutput(all, outputFormat(jsonOutput)).Render(w); err != nil {
		return errors.Wrap(err, "failed to render recipe list")
	}
	return nil
}

func runRecipesShow(w io.Writer, store *recipes.Store, name string, html bool) error {
	recipe, err := store.FindByName(name)
	if err != nil {
		return err
	}

	if !html {
		_, err = fmt.Fprint(w, recipe.Markdown())
		return err
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(recipe.Markdown()), &buf); err != nil {
		return errors.Wrapf(err, "failed to render %s as HTML", recipe.Name)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func runRecipesSearch(ctx context.Context, w io.Writer, store *recipes.Store, description string, k int, jsonOutput bool) error {
	matches, err := store.Search(ctx, description, k)
	if errors.Is(err, recipes.ErrNoMatch) {
		presenter.Info("No recipes found")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to search recipes")
	}

	return NewSearchOutput(matches, outputFormat(jsonOutput)).Render(w)
}

func runRecipesImport(ctx context.Context, p presenter.Presenter, store *recipes.Store, path string) error {
	batch, err := recipes.ReadFile(path)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		p.Warning(fmt.Sprintf("No recipes found in %s, nothing imported", path))
		return nil
	}

	n, err := store.Import(ctx, batch)
	if err != nil {
		return errors.Wrapf(err, "failed to import %s", path)
	}
	p.Success(fmt.Sprintf("Imported %d recipes from %s", n, path))
	return nil
}
