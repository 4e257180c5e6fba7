// Package mcphost provides a framework for hosting MCP (Model Context
// Protocol) servers.
//
// A server instance carries named registries for tools, resources, and
// prompts, plus the access policy (auth, rate limiting, CORS) its HTTP
// transport enforces. Requests are dispatched through a command table and
// can be served over stdio, HTTP, or WebSocket.
//
// Basic usage:
//
//	srv := mcphost.NewServer("my-server", mcphost.WithVersion("1.0.0"))
//
//	srv.Tools().Register(mcphost.NewTool("search", "Search for items",
//	    map[string]any{"type": "object"},
//	    func(ctx context.Context, args json.RawMessage) (any, error) {
//	        return []string{"result1", "result2"}, nil
//	    }))
//
//	mcphost.ServeStdio(ctx, srv)
package mcphost

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/modelctx/mcphost/middleware"
	"github.com/modelctx/mcphost/protocol"
	"github.com/modelctx/mcphost/server"
	"github.com/modelctx/mcphost/transport"
)

// Re-export core types for convenience.

// Server is an MCP server instance.
type Server = server.Server

// Option configures a Server.
type Option = server.Option

// InstanceRegistry holds named server instances.
type InstanceRegistry = server.InstanceRegistry

// Dispatcher routes JSON-RPC requests to server operations.
type Dispatcher = server.Dispatcher

// Tool is a callable capability exposed over tools/call.
type Tool = server.Tool

// Resource is a readable capability exposed over resources/read.
type Resource = server.Resource

// Prompt is a renderable template exposed over prompts/get.
type Prompt = server.Prompt

// Config types for the HTTP access policy.
type (
	AuthConfig      = server.AuthConfig
	RateLimitConfig = server.RateLimitConfig
	CORSConfig      = server.CORSConfig
)

// Middleware types.
type (
	Middleware            = middleware.Middleware
	MiddlewareHandlerFunc = middleware.HandlerFunc
	Logger                = middleware.Logger
	LogField              = middleware.Field
)

// Server option re-exports.
var (
	WithDescription = server.WithDescription
	WithVersion     = server.WithVersion
	WithAuth        = server.WithAuth
	WithAPIKeys     = server.WithAPIKeys
	WithRateLimit   = server.WithRateLimit
	WithCORS        = server.WithCORS
)

// Capability constructor re-exports.
var (
	NewTool          = server.NewTool
	NewResource      = server.NewResource
	NewPrompt        = server.NewPrompt
	UserMessage      = server.UserMessage
	AssistantMessage = server.AssistantMessage

	WithResourceName        = server.WithResourceName
	WithResourceDescription = server.WithResourceDescription
	WithResourceMimeType    = server.WithResourceMimeType
	WithResourceBinary      = server.WithResourceBinary
)

// ToolError builds a soft tool failure result.
var ToolError = protocol.ToolError

// NewServer creates a new MCP server instance with the given name.
func NewServer(name string, opts ...Option) *Server {
	return server.New(name, opts...)
}

// NewInstanceRegistry creates an empty instance registry.
func NewInstanceRegistry() *InstanceRegistry {
	return server.NewInstanceRegistry()
}

// NewDispatcher creates a request dispatcher for the given server instance.
func NewDispatcher(srv *Server) *Dispatcher {
	return server.NewDispatcher(srv)
}

// Instances is the process-wide instance registry.
var Instances = server.NewInstanceRegistry()

// GetOrCreate returns the named instance from the process-wide registry,
// creating it with the given options on first use.
func GetOrCreate(name string, opts ...Option) *Server {
	return Instances.GetOrCreate(name, opts...)
}

// ServeOption configures how a server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []Middleware
	logger     Logger
}

// WithMiddleware adds middleware to the request handling chain.
func WithMiddleware(m ...Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger installs the default middleware stack (recovery, request IDs,
// logging) around the dispatcher using the given logger.
func WithLogger(l Logger) ServeOption {
	return func(o *serveOptions) {
		o.logger = l
	}
}

// ServeStdio runs the server over stdio. It blocks until the context is
// canceled or stdin reaches EOF.
func ServeStdio(ctx context.Context, srv *Server, opts ...ServeOption) error {
	t := transport.NewStdio()
	return t.Serve(ctx, newRequestHandler(srv, opts...))
}

// ServeHTTP runs the server over HTTP on addr with the instance's access
// policy applied. It blocks until the context is canceled or an error
// occurs.
func ServeHTTP(ctx context.Context, srv *Server, addr string, opts ...HTTPOption) error {
	return ServeHTTPWithMiddleware(ctx, srv, addr, opts)
}

// ServeHTTPWithMiddleware runs the server over HTTP with middleware support.
func ServeHTTPWithMiddleware(ctx context.Context, srv *Server, addr string, httpOpts []HTTPOption, serveOpts ...ServeOption) error {
	opts := append([]HTTPOption{transport.WithPolicy(transport.PolicyFor(srv))}, httpOpts...)
	t := transport.NewHTTP(addr, opts...)
	return t.Serve(ctx, newRequestHandler(srv, serveOpts...))
}

// ServeWebSocket runs the server over WebSocket on addr. It blocks until
// the context is canceled or an error occurs.
func ServeWebSocket(ctx context.Context, srv *Server, addr string, opts ...WebSocketOption) error {
	t := transport.NewWebSocket(addr, opts...)
	return t.Serve(ctx, newRequestHandler(srv))
}

// ServeAll runs the server over several transports at once, stopping all of
// them when any one fails or the context is canceled.
func ServeAll(ctx context.Context, srv *Server, transports []transport.Transport, opts ...ServeOption) error {
	handler := newRequestHandler(srv, opts...)

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range transports {
		g.Go(func() error {
			return t.Serve(gctx, handler)
		})
	}
	return g.Wait()
}

// Transport option re-exports.
type (
	HTTPOption      = transport.HTTPOption
	WebSocketOption = transport.WebSocketOption
)

var (
	WithReadTimeout  = transport.WithReadTimeout
	WithWriteTimeout = transport.WithWriteTimeout
	WithEndpointPath = transport.WithEndpointPath

	WithWebSocketReadTimeout  = transport.WithWebSocketReadTimeout
	WithWebSocketWriteTimeout = transport.WithWebSocketWriteTimeout
)

// Middleware re-exports.

// Chain composes multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// Recover returns middleware that converts panics to internal errors.
func Recover() Middleware {
	return middleware.Recover()
}

// Timeout returns middleware that enforces a request deadline.
func Timeout(d time.Duration) Middleware {
	return middleware.Timeout(d)
}

// RequestID returns middleware that injects a unique request ID into the
// context.
func RequestID() Middleware {
	return middleware.RequestID()
}

// RequestIDFromContext returns the request ID from the context, or an empty
// string if not set.
func RequestIDFromContext(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

// Logging returns middleware that logs request details.
func Logging(logger Logger) Middleware {
	return middleware.Logging(logger)
}

// DefaultMiddleware returns the recommended production middleware stack.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.DefaultStack(logger)
}

// LogF creates a log field with the given key and value.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}

// requestHandler adapts a Dispatcher wrapped in middleware to
// transport.Handler.
type requestHandler struct {
	handleFunc middleware.HandlerFunc
}

func newRequestHandler(srv *Server, opts ...ServeOption) *requestHandler {
	options := &serveOptions{}
	for _, opt := range opts {
		opt(options)
	}

	chain := options.middleware
	if options.logger != nil {
		chain = append(middleware.DefaultStack(options.logger), chain...)
	}

	base := middleware.HandlerFunc(server.NewDispatcher(srv).HandleRequest)
	h := &requestHandler{handleFunc: base}
	if len(chain) > 0 {
		h.handleFunc = middleware.Chain(chain...)(base)
	}
	return h
}

func (h *requestHandler) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return h.handleFunc(ctx, req)
}
