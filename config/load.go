//go:build !tinygo

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// LoadConfig parses a configuration in format ("json" or "yaml") and
// applies defaults to whatever it leaves out.
func LoadConfig(data []byte, format string) (*Board, error) {
	var b Board

	var err error
	switch strings.ToLower(format) {
	case "json":
		err = json.Unmarshal(data, &b)
	case "yaml", "yml":
		err = yaml.UnmarshalStrict(data, &b)
	default:
		return nil, fmt.Errorf("config: unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", format, err)
	}

	applyDefaults(&b)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadFile reads path, picking the format from its extension
func LoadFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		format = "json"
	}
	return LoadConfig(data, format)
}
