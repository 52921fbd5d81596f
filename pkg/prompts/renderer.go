package prompts

import (
	"io/fs"
	"os"
	"path"
	"slices"
	"sort"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// Renderer provides prompt template rendering capabilities
type Renderer struct {
	templates *template.Template
	parseErr  error
}

// NewRenderer creates a renderer over the templates directory of fsys.
func NewRenderer(fsys fs.FS) *Renderer {
	return NewRendererWithTemplateOverride(fsys, nil)
}

// NewRendererWithTemplateOverride creates a renderer with custom template overrides.
// Overrides are keyed by template path (e.g., templates/system.tmpl).
func NewRendererWithTemplateOverride(fsys fs.FS, overrides map[string]string) *Renderer {
	renderer := &Renderer{}
	renderer.templates, renderer.parseErr = parseTemplates(fsys, overrides)
	return renderer
}

// NewDefaultRenderer renders the embedded templates, replacing any of them
// with a *.tmpl file of the same name found in dir. An empty dir means no
// overrides.
func NewDefaultRenderer(dir string) (*Renderer, error) {
	if dir == "" {
		return NewRenderer(TemplateFS), nil
	}

	overrides, err := loadOverrides(os.DirFS(dir))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load prompt overrides from %s", dir)
	}
	renderer := NewRendererWithTemplateOverride(TemplateFS, overrides)
	if renderer.parseErr != nil {
		return nil, renderer.parseErr
	}
	return renderer, nil
}

func loadOverrides(dirFS fs.FS) (map[string]string, error) {
	entries, err := fs.ReadDir(dirFS, ".")
	if err != nil {
		return nil, err
	}

	overrides := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmpl") {
			continue
		}
		content, err := fs.ReadFile(dirFS, entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", entry.Name())
		}
		overrides[path.Join("templates", entry.Name())] = string(content)
	}
	return overrides, nil
}

// RenderPrompt renders a named template with the provided data
func (r *Renderer) RenderPrompt(name string, data any) (string, error) {
	if r.parseErr != nil {
		return "", errors.Wrap(r.parseErr, "failed to initialize templates")
	}

	if r.templates.Lookup(name) == nil {
		return "", errors.Errorf("template %s not found", name)
	}

	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute template %s", name)
	}

	return strings.TrimSpace(buf.String()), nil
}

// RenderSystemPrompt renders the agent system prompt.
func (r *Renderer) RenderSystemPrompt(data SystemData) (string, error) {
	return r.RenderPrompt(SystemTemplate, data)
}

// RenderVeganPrompt renders the system prompt of the vegan modification skill.
func (r *Renderer) RenderVeganPrompt(data VeganData) (string, error) {
	return r.RenderPrompt(VeganTemplate, data)
}

// RenderShoppingListPrompt renders the system prompt of the shopping list skill.
func (r *Renderer) RenderShoppingListPrompt() (string, error) {
	return r.RenderPrompt(ShoppingListTemplate, nil)
}

// RenderFindRecipesQuery renders the text embedded for a recipe search.
func (r *Renderer) RenderFindRecipesQuery(data FindRecipesData) (string, error) {
	return r.RenderPrompt(FindRecipesTemplate, data)
}

// RenderValidatePrompt renders the system prompt used to judge the progress
// of a request.
func (r *Renderer) RenderValidatePrompt(data ValidateData) (string, error) {
	return r.RenderPrompt(ValidateTemplate, data)
}

func parseTemplates(templateFS fs.FS, overrides map[string]string) (*template.Template, error) {
	templatePaths, err := collectTemplatePaths(templateFS, "templates")
	if err != nil {
		return nil, errors.Wrap(err, "failed to collect template paths")
	}

	templates := template.New("templates")
	var selfRef *template.Template
	templates = templates.Funcs(template.FuncMap{
		"include": func(templateName string, data any) (string, error) {
			var buf strings.Builder
			err := selfRef.ExecuteTemplate(&buf, templateName, data)
			return buf.String(), err
		},
		"join": strings.Join,
	})
	selfRef = templates

	for _, path := range templatePaths {
		content := ""
		if override, ok := overrides[path]; ok {
			content = override
		} else {
			bytes, err := fs.ReadFile(templateFS, path)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read template file %s", path)
			}
			content = string(bytes)
		}

		_, err := templates.New(path).Parse(content)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse template %s", path)
		}
	}

	for path, content := range overrides {
		if slices.Contains(templatePaths, path) {
			continue
		}

		_, err := templates.New(path).Parse(content)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse override template %s", path)
		}
	}

	return templates, nil
}

func collectTemplatePaths(templateFS fs.FS, dir string) ([]string, error) {
	if _, err := fs.Stat(templateFS, dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	err := fs.WalkDir(templateFS, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}
