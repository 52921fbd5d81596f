package recipes

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReadFile decodes a list of recipes from a .json, .yaml or .yml file.
func ReadFile(path string) ([]Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses data according to the file extension ext.
func Decode(data []byte, ext string) ([]Recipe, error) {
	var recipes []Recipe
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &recipes); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON recipes")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &recipes); err != nil {
			return nil, errors.Wrap(err, "failed to parse YAML recipes")
		}
	default:
		return nil, errors.Errorf("unsupported recipe file extension %q", ext)
	}
	return recipes, nil
}
