package gameplay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadScenarioFile reads a ScenarioConfig from a .json, .yaml or .yml file.
func LoadScenarioFile(path string) (ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScenarioConfig{}, fmt.Errorf("read scenario: %w", err)
	}

	var sc ScenarioConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &sc)
	default:
		err = json.Unmarshal(data, &sc)
	}
	if err != nil {
		return ScenarioConfig{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if strings.TrimSpace(sc.ID) == "" {
		return ScenarioConfig{}, fmt.Errorf("scenario %s: missing id", path)
	}
	return sc, nil
}
