// Package registryfile decodes the YAML or JSON files that list queries and
// publishers.
package registryfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads path and unmarshals it into out. The format follows the file
// extension; anything other than .json is read as YAML, which also accepts
// JSON documents. kind names the file in error messages.
func Decode(path, kind string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", kind)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s file: %w", kind, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode json %s: %w", kind, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode yaml %s: %w", kind, err)
	}
	return nil
}
