// Package schema contains the core contracts shared across jobpilot packages.
// Concrete implementations live in their respective packages.
package schema

import (
	"context"
	"encoding/json"
)

// ToolDescriptor describes one callable tool. It is immutable once built.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Tool is the interface all LLM-callable tools must satisfy.
// Local tools and backend-wrapped tools both implement this interface.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) (Content, error)
}

// ArtifactProducer is implemented by tools whose replies may carry a
// structured payload with a generated document.
type ArtifactProducer interface {
	ProducesArtifact() bool
}

// DescriptorOf returns the descriptor for t.
func DescriptorOf(t Tool) ToolDescriptor {
	return ToolDescriptor{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.Parameters(),
	}
}

// IsArtifactProducing reports whether t is flagged artifact-producing.
func IsArtifactProducing(t Tool) bool {
	p, ok := t.(ArtifactProducer)
	return ok && p.ProducesArtifact()
}
