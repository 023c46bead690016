package translate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed translations.schema.json
var translationsSchemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("translations.schema.json", strings.NewReader(translationsSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("translations.schema.json")
	})
	return compiledSchema, schemaErr
}

// decodeTranslations extracts the translated strings from an LLM reply.
// Accepted shapes are {"translations": [...]}, a bare array, or an object with
// a single array field, optionally wrapped in a markdown code fence.
func decodeTranslations(content string, want int) ([]string, error) {
	content = stripCodeFence(content)

	value, err := decodeJSON(content)
	if err != nil && strings.Contains(content, `\N`) {
		// ASS-style \N line breaks are not a valid JSON escape
		content = strings.ReplaceAll(content, `\N`, `\n`)
		value, err = decodeJSON(content)
	}
	if err != nil {
		// Try to extract a JSON array embedded in prose
		start := strings.Index(content, "[")
		end := strings.LastIndex(content, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: reply is not JSON: %v", ErrCountMismatch, err)
		}
		if value, err = decodeJSON(content[start : end+1]); err != nil {
			return nil, fmt.Errorf("%w: reply is not JSON: %v", ErrCountMismatch, err)
		}
	}

	value = normalizeReply(value)

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load translations schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCountMismatch, err)
	}

	raw := value.(map[string]any)["translations"].([]any)
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = v.(string)
	}
	if len(out) != want {
		return nil, fmt.Errorf("%w: expected %d translations, got %d", ErrCountMismatch, want, len(out))
	}
	return out, nil
}

func normalizeReply(value any) any {
	switch v := value.(type) {
	case []any:
		return map[string]any{"translations": v}
	case map[string]any:
		if _, ok := v["translations"]; ok {
			return v
		}
		var only []any
		for _, field := range v {
			if arr, ok := field.([]any); ok {
				if only != nil {
					return v
				}
				only = arr
			}
		}
		if only != nil {
			return map[string]any{"translations": only}
		}
	}
	return value
}

func decodeJSON(content string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(content))))
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing content after JSON value")
	}
	return value, nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
