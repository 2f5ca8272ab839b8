package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/shared/llmutils"
)

// Invoker executes model-requested tool calls against a Registry.
// It holds no per-conversation state; per-turn hooks travel in the context
// (see WithTurn).
type Invoker struct{}

func NewInvoker() *Invoker { return &Invoker{} }

// Invoke executes one call. Unknown tools, invalid arguments and handler
// failures come back as error-text results; the returned error is non-nil
// only for a *schema.TransportError, which is fatal to the turn.
func (inv *Invoker) Invoke(ctx context.Context, reg *Registry, call schema.ToolCallRequest) (ToolResult, error) {
	t := reg.Get(call.Name)
	if t == nil {
		err := &UnknownToolError{Name: call.Name}
		slog.Warn("Unknown tool requested", "name", call.Name, "call_id", call.ID)
		return errorResult(call.ID, call.Name, err), nil
	}

	args, err := decode(call, t)
	if err != nil {
		slog.Warn("Rejected tool arguments", "name", call.Name, "call_id", call.ID, "err", err)
		return errorResult(call.ID, call.Name, err), nil
	}

	slog.Info("Tool call", "name", call.Name, "call_id", call.ID, "args", llmutils.Truncate(call.Arguments, 200))
	if tc := TurnCtx(ctx); tc.OnToolCall != nil {
		tc.OnToolCall(call.Name)
	}

	content, err := execute(ctx, t, args)
	if err != nil {
		if schema.IsTransportError(err) {
			return ToolResult{}, err
		}
		execErr := &ToolExecutionError{Name: call.Name, Err: err}
		slog.Warn("Tool failed", "name", call.Name, "call_id", call.ID, "err", err)
		return errorResult(call.ID, call.Name, execErr), nil
	}

	res := ToolResult{CallID: call.ID, ToolName: call.Name, Text: content.String()}
	if !schema.IsArtifactProducing(t) {
		return res, nil
	}

	payload, perr := ParsePayload(res.Text)
	switch {
	case perr != nil:
		res.Err = &PayloadParseError{Name: call.Name, Err: perr}
		slog.Warn("Tool reply degraded to plain text", "name", call.Name, "call_id", call.ID, "err", perr)
	case payload.Error != "" && !payload.HasFile():
		execErr := &ToolExecutionError{Name: call.Name, Err: errors.New(payload.Error)}
		return errorResult(call.ID, call.Name, execErr), nil
	default:
		res.Payload = payload
	}
	return res, nil
}

// InvokeAll executes calls strictly in order, one at a time, and returns one
// result per call with the matching call id. On a transport failure it stops
// and returns the error.
func (inv *Invoker) InvokeAll(ctx context.Context, reg *Registry, calls []schema.ToolCallRequest) ([]ToolResult, error) {
	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		res, err := inv.Invoke(ctx, reg, call)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func decode(call schema.ToolCallRequest, t schema.Tool) (args map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			args, err = nil, &InvalidArgumentsError{Name: call.Name, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return DecodeArguments(call.Name, call.Arguments, t.Parameters())
}

func execute(ctx context.Context, t schema.Tool, args map[string]any) (content schema.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Execute(ctx, args)
}
