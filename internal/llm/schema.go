package llm

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// jsonSchema is the subset of JSON Schema that Gemini response schemas can express
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Enum        []string               `json:"enum"`
	Items       *jsonSchema            `json:"items"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Required    []string               `json:"required"`
}

var genaiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// ToGenaiSchema converts a JSON Schema document into a Gemini response schema.
// Keywords Gemini cannot express (bounds, lengths) are dropped; responses are
// expected to be validated against the full document afterwards.
func ToGenaiSchema(document string) (*genai.Schema, error) {
	var root jsonSchema
	if err := json.Unmarshal([]byte(document), &root); err != nil {
		return nil, fmt.Errorf("failed to parse response schema: %w", err)
	}
	return convertSchema(&root, "(root)")
}

func convertSchema(s *jsonSchema, path string) (*genai.Schema, error) {
	t, ok := genaiTypes[s.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported schema type %q at %s", s.Type, path)
	}

	out := &genai.Schema{
		Type:        t,
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}

	if s.Items != nil {
		items, err := convertSchema(s.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		out.Items = items
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			converted, err := convertSchema(prop, path+"."+name)
			if err != nil {
				return nil, err
			}
			out.Properties[name] = converted
		}
	}
	return out, nil
}
