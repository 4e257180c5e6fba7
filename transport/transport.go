// Package transport provides the MCP transport bindings: stdio, HTTP, and
// WebSocket. Transports are responsible only for I/O framing and, on HTTP,
// for the per-instance policy (authentication, rate limiting, CORS) applied
// before dispatch.
package transport

import (
	"context"
	"errors"

	"github.com/modelctx/mcphost/protocol"
)

// Handler processes incoming MCP requests. Protocol failures may be returned
// either inside the response or as a *protocol.Error value; transports fold
// both into JSON-RPC error responses.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve starts the transport, blocking until ctx is canceled or an
	// error occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr returns the transport's address description.
	Addr() string
}

// errorResponse folds a handler error into a JSON-RPC error response for the
// given request.
func errorResponse(req *protocol.Request, err error) *protocol.Response {
	var perr *protocol.Error
	if !errors.As(err, &perr) {
		perr = protocol.NewInternalError(err.Error())
	}
	return protocol.NewErrorResponse(req.ID, perr)
}
