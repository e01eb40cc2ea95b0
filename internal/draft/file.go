package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for draft files that are neither YAML nor
// JSON.
var ErrUnsupportedFormat = errors.New("unsupported draft file format (want .yaml, .yml or .json)")

// LoadFile reads a draft document. Keys use the wire names
// (assessmentName, competences[].nameEn, ...).
func LoadFile(path string) (Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Assessment{}, fmt.Errorf("read draft: %w", err)
	}

	var a Assessment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &a); err != nil {
			return Assessment{}, fmt.Errorf("parse draft %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &a); err != nil {
			return Assessment{}, fmt.Errorf("parse draft %s: %w", path, err)
		}
	default:
		return Assessment{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	return a, nil
}

// SaveFile writes a as YAML (or JSON for a .json path). Identities are not
// written.
func SaveFile(path string, a Assessment) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(a)
	case ".json":
		data, err = json.MarshalIndent(a, "", "  ")
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create draft dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}
