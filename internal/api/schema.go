package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Response schemas only pin the types of the documented fields. Unknown
// fields are allowed; null is accepted wherever the backend serializes an
// absent value as null.
var responseSchemas = map[string]map[string]any{
	"build-response": {
		"type": "object",
		"properties": map[string]any{
			"success":  map[string]any{"type": []any{"boolean", "null"}},
			"id":       map[string]any{"type": []any{"integer", "null"}},
			"message":  map[string]any{"type": []any{"string", "null"}},
			"warnings": stringList,
		},
	},
	"preview-response": {
		"type": "object",
		"properties": map[string]any{
			"questionnaireXml":   nullableString,
			"reportXml":          nullableString,
			"questionnaireXmlNl": nullableString,
			"questionnaireXmlEn": nullableString,
			"reportXmlNl":        nullableString,
			"reportXmlEn":        nullableString,
			"warnings":           stringList,
		},
	},
	"translate-response": {
		"type":     "object",
		"required": []any{"translations"},
		"properties": map[string]any{
			"translations": map[string]any{
				"type":  "array",
				"items": nullableString,
			},
			"error": nullableString,
		},
	},
	"lookup-results": {
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":     map[string]any{"type": []any{"integer", "null"}},
				"name":   nullableString,
				"nameEn": nullableString,
			},
		},
	},
}

var (
	nullableString = map[string]any{"type": []any{"string", "null"}}
	stringList     = map[string]any{
		"type":  []any{"array", "null"},
		"items": nullableString,
	}
)

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against the named response schema.
func validateBody(name string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(name)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := responseSchemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	// The compiler wants a plain decoded JSON value, so round-trip the Go map.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
