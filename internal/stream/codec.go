package stream

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec converts a name to value document to and from bytes.
type Codec interface {
	// Name identifies the format (e.g. "json").
	Name() string
	// Marshal encodes doc.
	Marshal(doc map[string]any) ([]byte, error)
	// Unmarshal decodes data. An empty document yields an empty map.
	Unmarshal(data []byte) (map[string]any, error)
}

// JSON is the default file codec.
type JSON struct{}

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Marshal implements Codec.
func (JSON) Marshal(doc map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Unmarshal implements Codec.
func (JSON) Unmarshal(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

// TOML encodes documents as TOML tables. TOML has no null, so settings whose
// value is nil are omitted and read back as not found.
type TOML struct{}

// Name implements Codec.
func (TOML) Name() string { return "toml" }

// Marshal implements Codec.
func (TOML) Marshal(doc map[string]any) ([]byte, error) {
	clean := make(map[string]any, len(doc))
	for k, v := range doc {
		if v != nil {
			clean[k] = v
		}
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(clean); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal implements Codec.
func (TOML) Unmarshal(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// YAML encodes documents as YAML mappings.
type YAML struct{}

// Name implements Codec.
func (YAML) Name() string { return "yaml" }

// Marshal implements Codec.
func (YAML) Marshal(doc map[string]any) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Unmarshal implements Codec.
func (YAML) Unmarshal(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

// CodecForPath picks a codec from the file extension. Unknown extensions
// use JSON.
func CodecForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML{}
	case ".yaml", ".yml":
		return YAML{}
	default:
		return JSON{}
	}
}
