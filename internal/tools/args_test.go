package tools

import (
	"encoding/json"
	"errors"
	"testing"
)

var searchSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"search_term": {"type": "string"},
		"location": {"type": "string"},
		"results_wanted": {"type": "integer"},
		"mode": {"type": "string", "enum": ["fast", "full"]}
	},
	"required": ["search_term"]
}`)

func TestDecodeArguments_Valid(t *testing.T) {
	args, err := DecodeArguments("search_jobs", `{"search_term":"data scientist","location":"Austin","results_wanted":5}`, searchSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args["search_term"] != "data scientist" || args["location"] != "Austin" {
		t.Errorf("unexpected args: %v", args)
	}
	if args["results_wanted"] != float64(5) {
		t.Errorf("results_wanted = %v", args["results_wanted"])
	}
}

func TestDecodeArguments_EmptyIsEmptyObject(t *testing.T) {
	args, err := DecodeArguments("t", "  ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("expected empty map, got %v", args)
	}
}

func TestDecodeArguments_Rejects(t *testing.T) {
	cases := map[string]string{
		"malformed":      `{"search_term": "x"`,
		"not object":     `["x"]`,
		"trailing data":  `{"search_term":"x"} {"a":1}`,
		"unknown field":  `{"search_term":"x","salary":"100k"}`,
		"missing field":  `{"location":"Austin"}`,
		"wrong type":     `{"search_term":42}`,
		"not integer":    `{"search_term":"x","results_wanted":2.5}`,
		"outside enum":   `{"search_term":"x","mode":"slow"}`,
		"null required":  `{"search_term":null}`,
		"python literal": `{'search_term': 'x'}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeArguments("search_jobs", raw, searchSchema)
			var inv *InvalidArgumentsError
			if !errors.As(err, &inv) {
				t.Fatalf("expected InvalidArgumentsError, got %v", err)
			}
			if inv.Name != "search_jobs" {
				t.Errorf("unexpected tool name %q", inv.Name)
			}
		})
	}
}

func TestDecodeArguments_AdditionalPropertiesAllowed(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"a":{"type":"string"}},"additionalProperties":true}`)
	if _, err := DecodeArguments("t", `{"a":"x","b":1}`, schema); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeArguments_NonScalarEnum(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"tags":{"enum":[["a"],["b"]]}}}`)
	if _, err := DecodeArguments("t", `{"tags":["a"]}`, schema); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := DecodeArguments("t", `{"tags":["c"]}`, schema)
	var inv *InvalidArgumentsError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidArgumentsError, got %v", err)
	}
}

func TestDecodeArguments_UnusableSchemaAllowsCall(t *testing.T) {
	args, err := DecodeArguments("t", `{"a":1}`, json.RawMessage(`not json`))
	if err != nil || args["a"] != float64(1) {
		t.Fatalf("args = %v, err = %v", args, err)
	}
}
