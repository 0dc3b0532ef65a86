package levels

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a scenario document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor infers the format from a file extension; anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a scenario document without validating it.
func Decode(data []byte, format Format) (LevelScenario, error) {
	var s LevelScenario
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return LevelScenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	return s, nil
}

// LoadFile reads a scenario from disk. With enforce set, a scenario that
// fails Validate is rejected with ErrInvalidScenario.
func LoadFile(path string, enforce bool) (LevelScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LevelScenario{}, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Decode(data, FormatFor(path))
	if err != nil {
		return LevelScenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if enforce {
		if errs := Validate(s); len(errs) > 0 {
			return LevelScenario{}, fmt.Errorf("%w: %s", ErrInvalidScenario, strings.Join(errs, "; "))
		}
	}
	return s, nil
}
