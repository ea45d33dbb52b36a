package sinks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a parsed and validated sinks file.
type File struct {
	Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
}

// LoadFile reads a sinks file. A .json extension selects JSON; anything else
// is decoded as YAML, which also accepts JSON documents.
func LoadFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sinks file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}
	f, err := ParseFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("sinks file %s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes raw, normalizes every entry and rejects invalid or duplicate ones.
func ParseFile(raw []byte, ext string) (*File, error) {
	var f File
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(raw, &f)
	} else {
		err = yaml.Unmarshal(raw, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	seen := make(map[string]int, len(f.Sinks))
	for i := range f.Sinks {
		c := &f.Sinks[i]
		if err := c.prepare(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if first, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("entry %d: id %q already used by entry %d", i, c.ID, first)
		}
		seen[c.ID] = i
	}
	return &f, nil
}

// Enabled returns the entries not switched off.
func (f *File) Enabled() []SinkConfig {
	if f == nil {
		return nil
	}
	var out []SinkConfig
	for _, c := range f.Sinks {
		if c.IsEnabled() {
			out = append(out, c)
		}
	}
	return out
}

// Lookup finds an entry by id.
func (f *File) Lookup(id string) (SinkConfig, bool) {
	if f == nil {
		return SinkConfig{}, false
	}
	for _, c := range f.Sinks {
		if c.ID == id {
			return c, true
		}
	}
	return SinkConfig{}, false
}
