package tools

import "fmt"

// DuplicateToolError is returned by Build when a tool name appears twice.
// Within is set when both entries came from the same side ("backend" or
// "local"); it is empty for a local tool shadowing a backend tool.
type DuplicateToolError struct {
	Name   string
	Within string
}

func (e *DuplicateToolError) Error() string {
	if e.Within != "" {
		return fmt.Sprintf("duplicate tool %q: listed twice by the %s tools", e.Name, e.Within)
	}
	return fmt.Sprintf("duplicate tool %q: local tool collides with a backend tool", e.Name)
}

// UnknownToolError is recorded when the model requests a tool that is not in
// the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Tool '%s' not found", e.Name)
}

// InvalidArgumentsError is recorded when a call's arguments fail strict
// decoding or do not match the advertised schema.
type InvalidArgumentsError struct {
	Name   string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for tool '%s': %s", e.Name, e.Reason)
}

// ToolExecutionError is recorded when a tool handler fails.
type ToolExecutionError struct {
	Name string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool '%s' failed: %v", e.Name, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// PayloadParseError is recorded when an artifact-producing tool replies with
// text that is not a structured payload. The reply degrades to plain text.
type PayloadParseError struct {
	Name string
	Err  error
}

func (e *PayloadParseError) Error() string {
	return fmt.Sprintf("tool '%s' reply is not a structured payload: %v", e.Name, e.Err)
}

func (e *PayloadParseError) Unwrap() error { return e.Err }
