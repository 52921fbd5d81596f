// Package prompts renders the text/template prompts sent to the chat model.
// Templates are embedded in the binary and may be overridden from a directory
// holding files with the same base names.
package prompts

import "embed"

//go:embed templates/*
var TemplateFS embed.FS

// Template paths.
const (
	SystemTemplate       = "templates/system.tmpl"
	VeganTemplate        = "templates/vegan.tmpl"
	ShoppingListTemplate = "templates/shopping_list.tmpl"
	FindRecipesTemplate  = "templates/find_recipes.tmpl"
	ValidateTemplate     = "templates/validate_request.tmpl"
)

// SkillLine is one entry of the skills section of the system prompt.
type SkillLine struct {
	Name        string
	Description string
}

// SystemData feeds the agent system prompt.
type SystemData struct {
	Skills []SkillLine
}

// VeganData feeds the vegan modification prompt.
type VeganData struct {
	Author string
}

// FindRecipesData feeds the recipe search query.
type FindRecipesData struct {
	Description          string
	AvailableIngredients []string
}

// ValidateData feeds the request validation prompt.
type ValidateData struct {
	// Agent is the agent details block, see Registry.AgentDetails.
	Agent string
}
