package recipes

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// JSONFilePersister keeps recipes in a single indented JSON array file.
type JSONFilePersister struct {
	path string
}

// NewJSONFilePersister returns a persister writing to path.
func NewJSONFilePersister(path string) *JSONFilePersister {
	return &JSONFilePersister{path: path}
}

// Path returns the backing file.
func (p *JSONFilePersister) Path() string {
	return p.path
}

// Load reads the file. A missing or empty file yields no recipes.
func (p *JSONFilePersister) Load(_ context.Context) ([]Recipe, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", p.path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var recipes []Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", p.path)
	}
	return recipes, nil
}

// Save writes recipes to a temporary file and renames it over the target.
func (p *JSONFilePersister) Save(_ context.Context, recipes []Recipe) error {
	if recipes == nil {
		recipes = []Recipe{}
	}
	data, err := json.MarshalIndent(recipes, "", "    ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal recipes")
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	tempPath := p.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write temporary recipes file")
	}
	if err := os.Rename(tempPath, p.path); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to rename temporary recipes file")
	}
	return nil
}
