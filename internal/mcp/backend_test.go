package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jobpilot/jobpilot/internal/schema"
)

func testServer() *server.MCPServer {
	s := server.NewMCPServer("jobs-test", "0.0.1", server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("search_jobs",
		mcp.WithDescription("Search job boards"),
		mcp.WithString("search_term", mcp.Required(), mcp.Description("Role to search")),
		mcp.WithString("location", mcp.Description("City or remote")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term, err := req.RequireString("search_term")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("1. " + term + " at Acme (" + req.GetString("location", "remote") + ")"), nil
	})

	s.AddTool(mcp.NewTool("tailor_resume", mcp.WithDescription("Tailor a resume")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(`{"preview":"Tailored","file_content":"UEs=","filename":"resume.docx"}`), nil
		})

	s.AddTool(mcp.NewTool("mixed", mcp.WithDescription("Multi-part reply")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{Content: []mcp.Content{
				mcp.NewTextContent("first"),
				mcp.NewImageContent("aGk=", "image/png"),
				mcp.NewTextContent("second"),
			}}, nil
		})

	s.AddTool(mcp.NewTool("broken", mcp.WithDescription("Always fails")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("board unavailable"), nil
		})

	s.AddTool(mcp.NewTool("raises", mcp.WithDescription("Handler returns an error")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("boom")
		})
	return s
}

func connected(t *testing.T) *Backend {
	t.Helper()
	b := NewEmbeddedBackend(testServer(), []string{"tailor_resume"})
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_ListTools(t *testing.T) {
	b := connected(t)
	list, err := b.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	byName := map[string]schema.Tool{}
	for _, tl := range list {
		byName[tl.Name()] = tl
	}
	search, ok := byName["search_jobs"]
	if !ok || len(byName) != 5 {
		t.Fatalf("tools = %v", byName)
	}
	var params struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
	}
	if err := json.Unmarshal(search.Parameters(), &params); err != nil {
		t.Fatalf("parameters: %v", err)
	}
	if params.Type != "object" || params.Properties["search_term"]["type"] != "string" {
		t.Errorf("parameters = %s", search.Parameters())
	}
	if len(params.Required) != 1 || params.Required[0] != "search_term" {
		t.Errorf("required = %v", params.Required)
	}
	if !schema.IsArtifactProducing(byName["tailor_resume"]) || schema.IsArtifactProducing(search) {
		t.Error("artifact flags not applied from config")
	}
}

func TestBackend_CallToolText(t *testing.T) {
	b := connected(t)
	c, err := b.CallTool(context.Background(), "search_jobs", map[string]any{"search_term": "data scientist", "location": "Austin"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if c.Kind() != schema.ContentText || c.String() != "1. data scientist at Acme (Austin)" {
		t.Errorf("content = %q", c.String())
	}
}

func TestBackend_CallToolParts(t *testing.T) {
	b := connected(t)
	c, err := b.CallTool(context.Background(), "mixed", nil)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	parts := c.Parts()
	if c.Kind() != schema.ContentParts || len(parts) != 3 {
		t.Fatalf("content = %+v", c)
	}
	if parts[0].Kind != schema.PartText || parts[0].Text != "first" || parts[2].Text != "second" {
		t.Errorf("text parts = %+v", parts)
	}
	if parts[1].Kind != schema.PartOther || !strings.Contains(parts[1].Text, "image/png") {
		t.Errorf("other part = %+v", parts[1])
	}
}

func TestBackend_ToolErrorIsNotTransport(t *testing.T) {
	b := connected(t)
	_, err := b.CallTool(context.Background(), "broken", nil)
	if err == nil || schema.IsTransportError(err) {
		t.Fatalf("expected a plain tool error, got %v", err)
	}
	if err.Error() != "board unavailable" {
		t.Errorf("err = %v", err)
	}
}

func TestBackend_HandlerErrorIsNotTransport(t *testing.T) {
	b := connected(t)
	_, err := b.CallTool(context.Background(), "raises", nil)
	if err == nil || schema.IsTransportError(err) {
		t.Fatalf("expected a plain tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v", err)
	}

	// The connection survives the failed call.
	c, err := b.CallTool(context.Background(), "search_jobs", map[string]any{"search_term": "go"})
	if err != nil || !strings.Contains(c.String(), "go at Acme") {
		t.Fatalf("follow-up call: %q, %v", c.String(), err)
	}
}

func TestBackend_StdioMissingCommand(t *testing.T) {
	b := NewBackend(Config{})
	_, err := b.ListTools(context.Background())
	if !schema.IsTransportError(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	var te *schema.TransportError
	if errors.As(err, &te) && te.Op != "connect" {
		t.Errorf("op = %q", te.Op)
	}
}

func TestConfig_Transport(t *testing.T) {
	if (Config{URL: "http://localhost:8080/sse"}).Transport() != TransportSSE {
		t.Error("url selects sse")
	}
	if (Config{Command: "jobpilot"}).Transport() != TransportStdio {
		t.Error("command selects stdio")
	}
}
