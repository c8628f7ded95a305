// Package fixture loads static root values for serving a schema without
// custom resolvers.
package fixture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Load reads a root value from a .json, .yaml or .yml file.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	v, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse decodes data as "json" or "yaml". Objects become map[string]any.
func Parse(data []byte, format string) (any, error) {
	var v any
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode json fixture: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode yaml fixture: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", format)
	}
	if v != nil {
		if _, ok := v.(map[string]any); !ok {
			return nil, fmt.Errorf("fixture root must be an object, got %T", v)
		}
	}
	return v, nil
}
