package tools

import "context"

// TurnContext carries per-turn routing metadata through the context tree.
// It is set by the front-end once per message and read by the invoker and
// by local tools inside Execute.
type TurnContext struct {
	SessionKey string
	Channel    string
	ChatID     string
	HasResume  bool

	// OnToolCall is called with the tool name just before each dispatched call.
	OnToolCall func(name string)
}

type turnKey struct{}

// WithTurn returns a child context that carries tc.
func WithTurn(ctx context.Context, tc TurnContext) context.Context {
	return context.WithValue(ctx, turnKey{}, tc)
}

// TurnCtx extracts the TurnContext from ctx.
// Returns a zero-value TurnContext if none was set.
func TurnCtx(ctx context.Context) TurnContext {
	tc, _ := ctx.Value(turnKey{}).(TurnContext)
	return tc
}
