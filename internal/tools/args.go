package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// resolvedSchemas caches compiled input schemas by their raw text.
var resolvedSchemas sync.Map // string → *jsonschema.Resolved

// DecodeArguments parses raw as a single JSON object and validates it
// against inputSchema. Unknown fields are rejected unless the schema sets
// additionalProperties. Failures are *InvalidArgumentsError.
func DecodeArguments(name, raw string, inputSchema json.RawMessage) (map[string]any, error) {
	args, err := decodeObject(raw)
	if err != nil {
		return nil, &InvalidArgumentsError{Name: name, Reason: err.Error()}
	}
	if len(bytes.TrimSpace(inputSchema)) == 0 {
		return args, nil
	}

	resolved, err := resolveSchema(inputSchema)
	if err != nil {
		// An unusable schema cannot veto the call; the handler stays the authority.
		slog.Warn("Tool schema not usable for validation", "name", name, "err", err)
		return args, nil
	}
	if err := resolved.Validate(args); err != nil {
		return nil, &InvalidArgumentsError{Name: name, Reason: err.Error()}
	}
	return args, nil
}

func resolveSchema(raw json.RawMessage) (*jsonschema.Resolved, error) {
	key := string(raw)
	if v, ok := resolvedSchemas.Load(key); ok {
		return v.(*jsonschema.Resolved), nil
	}

	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if len(s.Properties) > 0 && s.AdditionalProperties == nil {
		s.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, err
	}
	resolvedSchemas.Store(key, resolved)
	return resolved, nil
}

func decodeObject(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("malformed JSON: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after the argument object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("arguments must be a JSON object")
	}
	return obj, nil
}
