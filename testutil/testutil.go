// Package testutil provides in-memory testing helpers for MCP servers.
//
// A TestClient drives a server instance through its dispatcher without any
// transport, so server tests stay fast and deterministic:
//
//	func TestMyServer(t *testing.T) {
//	    srv := server.New("test", server.WithVersion("1.0.0"))
//	    srv.Tools().Register(...)
//
//	    tc := testutil.NewTestClient(t, srv)
//	    text, err := tc.CallTool("greet", map[string]any{"name": "World"})
//	    ...
//	}
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/modelctx/mcphost/protocol"
	"github.com/modelctx/mcphost/server"
	"github.com/modelctx/mcphost/transport"
)

// TestClient is an in-memory client for exercising an MCP server in tests.
type TestClient struct {
	t       testing.TB
	handler transport.Handler

	mu    sync.Mutex
	reqID int64
}

// NewTestClient creates a test client for the given server and performs the
// initialize handshake.
func NewTestClient(t testing.TB, srv *server.Server) *TestClient {
	t.Helper()

	tc := &TestClient{
		t:       t,
		handler: server.NewDispatcher(srv),
	}

	if _, err := tc.Initialize(); err != nil {
		t.Fatalf("failed to initialize server: %v", err)
	}
	return tc
}

// NewTestClientWithHandler creates a test client driving a custom handler.
// Useful for testing middleware chains.
func NewTestClientWithHandler(t testing.TB, handler transport.Handler) *TestClient {
	t.Helper()
	return &TestClient{t: t, handler: handler}
}

func (tc *TestClient) nextID() json.RawMessage {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reqID++
	return json.RawMessage(fmt.Sprintf("%d", tc.reqID))
}

// SendRequest sends a request and returns the raw response.
func (tc *TestClient) SendRequest(method string, params any) (*protocol.Response, error) {
	tc.t.Helper()

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		paramsData = data
	}

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      tc.nextID(),
		Method:  method,
		Params:  paramsData,
	}

	return tc.handler.HandleRequest(context.Background(), req)
}

// call sends a request and decodes its result into out when non-nil.
func (tc *TestClient) call(method string, params any, out any) error {
	tc.t.Helper()

	resp, err := tc.SendRequest(method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil {
		return nil
	}

	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return json.Unmarshal(data, out)
}

// Initialize sends an initialize request.
func (tc *TestClient) Initialize() (*protocol.InitializeResult, error) {
	tc.t.Helper()

	var result protocol.InitializeResult
	err := tc.call(protocol.MethodInitialize, map[string]any{
		"protocolVersion": protocol.MCPVersion,
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "1.0.0",
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTools lists all registered tools.
func (tc *TestClient) ListTools() ([]protocol.ToolDescriptor, error) {
	tc.t.Helper()

	var result protocol.ListToolsResult
	if err := tc.call(protocol.MethodToolsList, nil, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool calls a tool and returns its text output. A soft tool failure is
// surfaced as an error.
func (tc *TestClient) CallTool(name string, args any) (string, error) {
	tc.t.Helper()

	result, err := tc.CallToolRaw(name, args)
	if err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("empty content array")
	}
	if result.IsError {
		return "", fmt.Errorf("tool failed: %s", result.Content[0].Text)
	}
	return result.Content[0].Text, nil
}

// CallToolRaw calls a tool and returns the full result, soft failures
// included.
func (tc *TestClient) CallToolRaw(name string, args any) (*protocol.CallToolResult, error) {
	tc.t.Helper()

	var result protocol.CallToolResult
	err := tc.call(protocol.MethodToolsCall, map[string]any{
		"name":      name,
		"arguments": args,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResources lists all registered resources.
func (tc *TestClient) ListResources() ([]protocol.ResourceDescriptor, error) {
	tc.t.Helper()

	var result protocol.ListResourcesResult
	if err := tc.call(protocol.MethodResourcesList, nil, &result); err != nil {
		return nil, err
	}
	return result.Resources, nil
}

// ReadResource reads a resource by URI and returns its text.
func (tc *TestClient) ReadResource(uri string) (string, error) {
	tc.t.Helper()

	var result protocol.ReadResourceResult
	if err := tc.call(protocol.MethodResourcesRead, map[string]any{"uri": uri}, &result); err != nil {
		return "", err
	}
	if len(result.Contents) == 0 {
		return "", fmt.Errorf("empty contents array")
	}
	return result.Contents[0].Text, nil
}

// ListPrompts lists all registered prompts.
func (tc *TestClient) ListPrompts() ([]protocol.PromptDescriptor, error) {
	tc.t.Helper()

	var result protocol.ListPromptsResult
	if err := tc.call(protocol.MethodPromptsList, nil, &result); err != nil {
		return nil, err
	}
	return result.Prompts, nil
}

// GetPrompt renders a prompt by name with the given arguments.
func (tc *TestClient) GetPrompt(name string, args map[string]string) (*protocol.GetPromptResult, error) {
	tc.t.Helper()

	var result protocol.GetPromptResult
	err := tc.call(protocol.MethodPromptsGet, map[string]any{
		"name":      name,
		"arguments": args,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping sends a ping request.
func (tc *TestClient) Ping() error {
	tc.t.Helper()
	return tc.call(protocol.MethodPing, nil, nil)
}

// AssertToolExists fails the test if no tool with the given name is
// registered.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools()
	if err != nil {
		tc.t.Fatalf("ListTools failed: %v", err)
	}
	for _, tool := range tools {
		if tool.Name == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}

// AssertResourceExists fails the test if no resource with the given URI is
// registered.
func (tc *TestClient) AssertResourceExists(uri string) {
	tc.t.Helper()

	resources, err := tc.ListResources()
	if err != nil {
		tc.t.Fatalf("ListResources failed: %v", err)
	}
	for _, res := range resources {
		if res.URI == uri {
			return
		}
	}
	tc.t.Errorf("resource %q not found", uri)
}

// AssertPromptExists fails the test if no prompt with the given name is
// registered.
func (tc *TestClient) AssertPromptExists(name string) {
	tc.t.Helper()

	prompts, err := tc.ListPrompts()
	if err != nil {
		tc.t.Fatalf("ListPrompts failed: %v", err)
	}
	for _, prompt := range prompts {
		if prompt.Name == name {
			return
		}
	}
	tc.t.Errorf("prompt %q not found", name)
}
