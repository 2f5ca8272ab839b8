// Package mcp connects to the job tool backend over the Model Context
// Protocol and exposes its tools as schema.Tool values.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jobpilot/jobpilot/internal/schema"
)

const clientName = "jobpilot"

// Backend is a lazily connected MCP client. It reconnects on the next call
// after a transport failure.
type Backend struct {
	cfg      Config
	embedded *server.MCPServer
	artifact map[string]bool

	mu  sync.Mutex
	cli *client.Client
}

// NewBackend returns a Backend for cfg. Nothing is dialled until first use.
func NewBackend(cfg Config) *Backend {
	return &Backend{cfg: cfg, artifact: toSet(cfg.ArtifactTools)}
}

// NewEmbeddedBackend returns a Backend served by an in-process MCP server.
func NewEmbeddedBackend(s *server.MCPServer, artifactTools []string) *Backend {
	return &Backend{
		cfg:      Config{ArtifactTools: artifactTools},
		embedded: s,
		artifact: toSet(artifactTools),
	}
}

// Transport reports how the backend is reached.
func (b *Backend) Transport() Transport {
	if b.embedded != nil {
		return TransportInProcess
	}
	return b.cfg.Transport()
}

// Connect dials and initialises the backend if not already connected.
func (b *Backend) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.connectLocked(ctx)
	return err
}

func (b *Backend) connectLocked(ctx context.Context) (*client.Client, error) {
	if b.cli != nil {
		return b.cli, nil
	}

	cli, err := b.newClient(ctx)
	if err != nil {
		return nil, schema.NewTransportError("connect", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: "1.0.0"}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		_ = cli.Close()
		return nil, schema.NewTransportError("initialize", err)
	}

	slog.Info("Tool backend connected", "transport", b.Transport())
	b.cli = cli
	return cli, nil
}

func (b *Backend) newClient(ctx context.Context) (*client.Client, error) {
	switch b.Transport() {
	case TransportInProcess:
		cli, err := client.NewInProcessClient(b.embedded)
		if err != nil {
			return nil, err
		}
		if err := cli.Start(ctx); err != nil {
			return nil, fmt.Errorf("start in-process transport: %w", err)
		}
		return cli, nil
	case TransportSSE:
		var opts []transport.ClientOption
		if len(b.cfg.Headers) > 0 {
			opts = append(opts, transport.WithHeaders(b.cfg.Headers))
		}
		cli, err := client.NewSSEMCPClient(b.cfg.URL, opts...)
		if err != nil {
			return nil, err
		}
		if err := cli.Start(ctx); err != nil {
			return nil, fmt.Errorf("start SSE transport: %w", err)
		}
		return cli, nil
	default:
		if b.cfg.Command == "" {
			return nil, errors.New("no backend command or url configured")
		}
		return client.NewStdioMCPClient(b.cfg.Command, b.cfg.envList(), b.cfg.Args...)
	}
}

// reset drops a broken connection so the next call redials.
func (b *Backend) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cli != nil {
		_ = b.cli.Close()
		b.cli = nil
	}
}

func (b *Backend) conn(ctx context.Context) (*client.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connectLocked(ctx)
}

// ListTools returns the backend's live tool catalog.
func (b *Backend) ListTools(ctx context.Context) ([]schema.Tool, error) {
	cli, err := b.conn(ctx)
	if err != nil {
		return nil, err
	}
	res, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		b.reset()
		return nil, schema.NewTransportError("list_tools", err)
	}

	out := make([]schema.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		out = append(out, &remoteTool{
			backend:     b,
			name:        t.Name,
			description: t.Description,
			parameters:  inputSchema(t),
			artifact:    b.artifact[t.Name],
		})
	}
	slog.Debug("Tool catalog fetched", "tools", len(out))
	return out, nil
}

// CallTool invokes name on the backend. A connection failure is a
// *schema.TransportError. A reply flagged as an error, or a JSON-RPC error
// raised by the tool handler, is returned as a plain error.
func (b *Backend) CallTool(ctx context.Context, name string, args map[string]any) (schema.Content, error) {
	cli, err := b.conn(ctx)
	if err != nil {
		return schema.Content{}, err
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := cli.CallTool(ctx, req)
	if err != nil {
		if ctx.Err() == nil && isToolFailure(err) {
			return schema.Content{}, fmt.Errorf("%s: %w", name, err)
		}
		b.reset()
		return schema.Content{}, schema.NewTransportError("call_tool", err)
	}

	content := normalize(res.Content)
	if res.IsError {
		msg := content.String()
		if msg == "" {
			msg = "tool reported an error"
		}
		return schema.Content{}, errors.New(msg)
	}
	return content, nil
}

// isToolFailure reports whether err is a JSON-RPC error reply for the call
// itself rather than a broken connection.
func isToolFailure(err error) bool {
	for _, target := range []error{
		mcp.ErrInternalError,
		mcp.ErrInvalidParams,
		mcp.ErrMethodNotFound,
		mcp.ErrResourceNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Close shuts down the connection, stopping a stdio subprocess.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cli == nil {
		return nil
	}
	err := b.cli.Close()
	b.cli = nil
	return err
}

// normalize maps MCP content blocks onto the Content variant. Text blocks
// become text parts; any other block degrades to its JSON form.
func normalize(blocks []mcp.Content) schema.Content {
	if len(blocks) == 1 {
		if text, ok := textOf(blocks[0]); ok {
			return schema.TextContent(text)
		}
	}
	parts := make([]schema.Part, 0, len(blocks))
	for _, c := range blocks {
		if text, ok := textOf(c); ok {
			parts = append(parts, schema.TextPart(text))
			continue
		}
		data, err := json.Marshal(c)
		if err != nil {
			parts = append(parts, schema.OtherPart(fmt.Sprintf("%v", c)))
			continue
		}
		parts = append(parts, schema.OtherPart(string(data)))
	}
	return schema.PartsContent(parts...)
}

func textOf(c mcp.Content) (string, bool) {
	switch v := c.(type) {
	case mcp.TextContent:
		return v.Text, true
	case *mcp.TextContent:
		return v.Text, true
	}
	return "", false
}

func inputSchema(t mcp.Tool) json.RawMessage {
	if len(t.RawInputSchema) > 0 {
		return t.RawInputSchema
	}
	s := t.InputSchema
	if s.Type == "" {
		s.Type = "object"
	}
	if s.Properties == nil {
		s.Properties = map[string]any{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

func toSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
