package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/padmotion/padmotion/internal/pipeline"
)

// LoadProfile reads a motion profile from a json, yaml or toml file. Keys
// use the JSON field names; keys left out keep their default.
func LoadProfile(path string) (pipeline.Profile, error) {
	prof := pipeline.DefaultProfile()
	b, err := os.ReadFile(path)
	if err != nil {
		return prof, fmt.Errorf("read profile: %w", err)
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &raw)
	case ".toml":
		var tree *toml.Tree
		tree, err = toml.LoadBytes(b)
		if err == nil {
			raw = tree.ToMap()
		}
	default:
		err = json.Unmarshal(b, &raw)
	}
	if err != nil {
		return prof, fmt.Errorf("parse profile %s: %w", path, err)
	}

	// round trip through JSON so every format shares the field names
	normalized, err := json.Marshal(raw)
	if err != nil {
		return prof, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := json.Unmarshal(normalized, &prof); err != nil {
		return prof, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := prof.Validate(); err != nil {
		return prof, fmt.Errorf("profile %s: %w", path, err)
	}
	return prof, nil
}

// ProfileMap returns p keyed by its JSON field names, for writing templates.
func ProfileMap(p pipeline.Profile) (map[string]any, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
