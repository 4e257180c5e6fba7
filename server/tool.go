package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelctx/mcphost/protocol"
)

// Tool is a named, schema-described, remotely invocable function. The core
// never inspects how a tool is implemented; it only reads the metadata and
// calls Invoke.
type Tool interface {
	Name() string
	Description() string
	InputSchema() any
	Invoke(ctx context.Context, args json.RawMessage) (any, error)
}

// ToolFunc is the handler signature for func-backed tools.
type ToolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// FuncTool is a Tool backed by a plain function.
type FuncTool struct {
	name        string
	description string
	inputSchema any
	fn          ToolFunc
}

// NewTool creates a func-backed tool. The schema is an opaque JSON-schema-like
// document passed through to tools/list verbatim; it may be nil.
func NewTool(name, description string, inputSchema any, fn ToolFunc) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		inputSchema: inputSchema,
		fn:          fn,
	}
}

func (t *FuncTool) Name() string        { return t.name }
func (t *FuncTool) Description() string { return t.description }
func (t *FuncTool) InputSchema() any    { return t.inputSchema }

// Invoke runs the tool handler.
func (t *FuncTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	return t.fn(ctx, args)
}

// ToolRegistry is an in-memory store of tools keyed by name. Registration is
// an upsert; lookups are exact-match and case-sensitive. All operations are
// safe under concurrent callers.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds or replaces the tool under its name.
func (r *ToolRegistry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Unregister removes the named tool, reporting whether it existed.
func (r *ToolRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tools[name]
	delete(r.tools, name)
	return ok
}

// Has reports whether a tool is registered under the name.
func (r *ToolRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns wire-format descriptors for all registered tools.
func (r *ToolRegistry) List() []protocol.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]protocol.ToolDescriptor, 0, len(r.tools))
	for _, t := range r.tools {
		result = append(result, protocol.ToolDescriptor{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return result
}

// Call invokes the named tool. A missing tool, an error returned by the tool,
// and a panic inside the tool are all soft failures: the result carries
// IsError and a text block instead of a protocol error, so a single bad tool
// call never aborts the session.
func (r *ToolRegistry) Call(ctx context.Context, name string, args json.RawMessage) (result *protocol.CallToolResult) {
	tool, ok := r.Get(name)
	if !ok {
		return protocol.ToolError("Tool not found: " + name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = protocol.ToolError(fmt.Sprintf("panic: %v", rec))
		}
	}()

	out, err := tool.Invoke(ctx, args)
	if err != nil {
		return protocol.ToolError(err.Error())
	}

	return &protocol.CallToolResult{
		Content: []protocol.ContentBlock{protocol.TextContent(stringify(out))},
	}
}

// stringify renders a tool result as the text of a content block. Strings
// pass through; everything else is marshaled as JSON.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
