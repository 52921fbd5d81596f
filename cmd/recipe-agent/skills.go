package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/recipe-agent/pkg/agent"
	"github.com/jingkaihe/recipe-agent/pkg/recipes"
	"github.com/jingkaihe/recipe-agent/pkg/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Describe the recipe agent and its skills",
	Long:  `Describe the recipe agent and its skills. With --schema the tool definitions sent to the model are printed as JSON.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		schema, _ := cmd.Flags().GetBool("schema")

		// Describing skills needs neither a model nor stored recipes.
		registry, err := agent.NewRecipeSkills(nil, recipes.NewStore(nil, nil), nil, nil)
		if err != nil {
			return err
		}
		return runSkills(cmd.OutOrStdout(), registry, schema)
	},
}

func init() {
	skillsCmd.Flags().Bool("schema", false, "Print the tool definitions as JSON")
}

func runSkills(w io.Writer, registry *skills.Registry, schema bool) error {
	if !schema {
		_, err := fmt.Fprintln(w, registry.AgentDetails(agent.RecipeAgentName, agent.RecipeAgentDescription))
		return err
	}

	data, err := json.MarshalIndent(registry.ToOpenAITools(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode tool definitions")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
