package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"selfin/internal/core"
)

// Format identifies the structured-text encoding of the ledger file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from the file extension.
// Files without a recognised extension are read and written as JSON.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", "":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported ledger file format: %s", ext)
	}
}

func encode(f Format, l core.Ledger) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(l)
	case FormatTOML:
		return toml.Marshal(l)
	default:
		return json.MarshalIndent(l, "", "  ")
	}
}

func decode(f Format, data []byte) (core.Ledger, error) {
	var l core.Ledger
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &l)
	case FormatTOML:
		err = toml.Unmarshal(data, &l)
	default:
		err = json.Unmarshal(data, &l)
	}
	if err != nil {
		return core.Ledger{}, fmt.Errorf("parse %s ledger: %w", f, err)
	}
	l.Normalize()
	return l, nil
}
