// Package server provides the MCP server core: capability registries, the
// server instance, the process-wide instance registry, and the request
// dispatcher.
//
// # Capabilities
//
// Tools, resources, and prompts are supplied fully constructed by the
// application. Each kind is an interface; the core only reads its metadata
// and executes it:
//
//	type Tool interface {
//	    Name() string
//	    Description() string
//	    InputSchema() any
//	    Invoke(ctx context.Context, args json.RawMessage) (any, error)
//	}
//
// Func-backed implementations (NewTool, NewResource, NewPrompt) cover the
// common case:
//
//	srv := server.New("assistant", server.WithVersion("1.0.0"))
//	srv.Tools().Register(server.NewTool("echo", "Echo a message",
//	    map[string]any{"type": "object"},
//	    func(ctx context.Context, args json.RawMessage) (any, error) {
//	        var in struct{ Message string `json:"message"` }
//	        if err := json.Unmarshal(args, &in); err != nil {
//	            return nil, err
//	        }
//	        return "Echo: " + in.Message, nil
//	    }))
//
// # Error tiers
//
// Tool failures are soft: an unknown tool name, an error returned by Invoke,
// or a panic inside Invoke all produce a CallToolResult with IsError set,
// never a protocol error. Resource and prompt lookup misses are
// invalid-params protocol errors, because their existence is addressable
// metadata.
//
// # Dispatching
//
// Dispatcher routes JSON-RPC requests to registry operations through a
// method table built once at construction. It is stateless per request and
// accepts either raw bytes or a pre-parsed request.
package server
