package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadBody reads a request body from a JSON or YAML file; "-" reads JSON or YAML from stdin.
func LoadBody(path string, stdin io.Reader) (any, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", path, err)
	}
	return ParseBody(raw, filepath.Ext(path))
}

// ParseBody decodes raw as JSON for ".json", YAML for ".yaml"/".yml", and
// otherwise tries JSON then YAML.
func ParseBody(raw []byte, ext string) (any, error) {
	ext = strings.ToLower(ext)
	if ext != ".yaml" && ext != ".yml" {
		var out any
		err := json.Unmarshal(raw, &out)
		if err == nil {
			return out, nil
		}
		if ext == ".json" {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
	}

	var out any
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode yaml body: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("body is empty")
	}
	return normalizeYAML(out), nil
}

// normalizeYAML converts the map[any]any nodes yaml can produce for
// non-string keys into JSON-encodable maps.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}
