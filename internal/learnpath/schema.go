package learnpath

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// stringOrList accepts a single string or an array of strings.
var stringOrList = map[string]any{
	"oneOf": []any{
		map[string]any{"type": "string"},
		map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
}

// optionalStringOrList is stringOrList that also accepts null.
var optionalStringOrList = map[string]any{
	"oneOf": []any{
		map[string]any{"type": "null"},
		map[string]any{"type": "string"},
		map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
}

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

// canonicalSchema describes the value of the top-level "learningPath" key.
var canonicalSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"description": map[string]any{"type": "string"},
		"problems": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":         map[string]any{"type": "string"},
					"level":         map[string]any{"type": "integer", "minimum": 1},
					"concepts":      stringList,
					"description":   map[string]any{"type": "string"},
					"prerequisites": stringList,
					"examples": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"input":       map[string]any{"type": "string"},
								"output":      map[string]any{"type": "string"},
								"explanation": map[string]any{"type": "string"},
							},
							"required": []any{"input", "output", "explanation"},
						},
					},
					"hints": map[string]any{
						"type":  []any{"array", "null"},
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []any{"title", "level", "concepts", "description", "prerequisites", "examples"},
			},
		},
	},
	"required": []any{"description", "problems"},
}

// legacySchema describes the problem records of the older bare-list shape.
var legacySchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"statement":  map[string]any{"type": "string"},
			"example":    map[string]any{"type": "string"},
			"hints":      optionalStringOrList,
			"objectives": stringOrList,
		},
		"required": []any{"statement", "example", "objectives"},
	},
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validate checks an already-decoded JSON value against the named schema.
func validate(name string, def map[string]any, v any) error {
	compiled, err := compiledSchema(name, def)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}
	return compiled.Validate(v)
}

func compiledSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON document, not Go map literals
	// holding ints and typed slices.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var doc any
	if err := json.Unmarshal(defBytes, &doc); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
