package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelctx/mcphost/protocol"
)

// methodHandler handles a single JSON-RPC method: params in, result out.
type methodHandler func(ctx context.Context, params json.RawMessage) (any, error)

// Dispatcher routes JSON-RPC requests to the registry operations of one
// server instance. It is stateless per request; the method table is built
// once at construction, so adding a method means adding a table entry.
type Dispatcher struct {
	srv      *Server
	handlers map[string]methodHandler
}

// NewDispatcher creates a dispatcher bound to the server instance.
func NewDispatcher(srv *Server) *Dispatcher {
	d := &Dispatcher{srv: srv}
	d.handlers = map[string]methodHandler{
		protocol.MethodInitialize:    d.initialize,
		protocol.MethodPing:          d.ping,
		protocol.MethodToolsList:     d.toolsList,
		protocol.MethodToolsCall:     d.toolsCall,
		protocol.MethodResourcesList: d.resourcesList,
		protocol.MethodResourcesRead: d.resourcesRead,
		protocol.MethodPromptsList:   d.promptsList,
		protocol.MethodPromptsGet:    d.promptsGet,
	}
	return d
}

// Server returns the instance this dispatcher serves.
func (d *Dispatcher) Server() *Server { return d.srv }

// HandleRequest routes a pre-parsed request. Protocol failures are returned
// as *protocol.Error values for the transport (or middleware) to encode.
func (d *Dispatcher) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if !req.Valid() {
		return nil, protocol.NewInvalidRequest("invalid JSON-RPC 2.0 request")
	}

	handler, ok := d.handlers[req.Method]
	if !ok {
		return nil, protocol.NewMethodNotFound("Method not found: " + req.Method)
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		var perr *protocol.Error
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, protocol.NewInternalError(err.Error())
	}

	return protocol.NewResponse(req.ID, result), nil
}

// Handle routes a pre-parsed request and always produces a complete
// response, folding protocol errors into the error branch. Notifications
// yield nil.
func (d *Dispatcher) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	resp, err := d.HandleRequest(ctx, req)

	if req.IsNotification() {
		return nil
	}

	if err != nil {
		var perr *protocol.Error
		if !errors.As(err, &perr) {
			perr = protocol.NewInternalError(err.Error())
		}
		return protocol.NewErrorResponse(req.ID, perr)
	}

	return resp
}

// HandleRaw parses a raw JSON request, routes it, and serializes the
// response. Input that is not valid JSON yields a -32700 response with a
// null id. Notifications yield nil.
func (d *Dispatcher) HandleRaw(ctx context.Context, raw []byte) []byte {
	var req protocol.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return mustMarshal(protocol.NewErrorResponse(protocol.NullID, protocol.NewParseError(err.Error())))
	}

	resp := d.Handle(ctx, &req)
	if resp == nil {
		return nil
	}
	return mustMarshal(resp)
}

func mustMarshal(resp *protocol.Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Result values come from registries and marshal cleanly; this is a
		// last-resort path for handler results that do not.
		fallback := protocol.NewErrorResponse(resp.ID, protocol.NewInternalError(err.Error()))
		data, _ = json.Marshal(fallback)
	}
	return data
}

func (d *Dispatcher) initialize(_ context.Context, _ json.RawMessage) (any, error) {
	capabilities := make(map[string]any)
	if d.srv.Tools().Count() > 0 {
		capabilities["tools"] = map[string]any{}
	}
	if d.srv.Resources().Count() > 0 {
		capabilities["resources"] = map[string]any{}
	}
	if d.srv.Prompts().Count() > 0 {
		capabilities["prompts"] = map[string]any{}
	}

	return &protocol.InitializeResult{
		ProtocolVersion: protocol.MCPVersion,
		ServerInfo: protocol.ServerInfo{
			Name:    d.srv.Name(),
			Version: d.srv.Version(),
		},
		Capabilities: capabilities,
	}, nil
}

func (d *Dispatcher) ping(_ context.Context, _ json.RawMessage) (any, error) {
	return map[string]any{}, nil
}

func (d *Dispatcher) toolsList(_ context.Context, _ json.RawMessage) (any, error) {
	return &protocol.ListToolsResult{Tools: d.srv.Tools().List()}, nil
}

func (d *Dispatcher) toolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.CallToolParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, protocol.NewInvalidParams("missing required field: name")
	}

	return d.srv.Tools().Call(ctx, p.Name, p.Arguments), nil
}

func (d *Dispatcher) resourcesList(_ context.Context, _ json.RawMessage) (any, error) {
	return &protocol.ListResourcesResult{Resources: d.srv.Resources().List()}, nil
}

func (d *Dispatcher) resourcesRead(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.ReadResourceParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.URI == "" {
		return nil, protocol.NewInvalidParams("missing required field: uri")
	}

	return d.srv.Resources().ReadResource(ctx, p.URI)
}

func (d *Dispatcher) promptsList(_ context.Context, _ json.RawMessage) (any, error) {
	return &protocol.ListPromptsResult{Prompts: d.srv.Prompts().List()}, nil
}

func (d *Dispatcher) promptsGet(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.GetPromptParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, protocol.NewInvalidParams("missing required field: name")
	}

	return d.srv.Prompts().GetPrompt(ctx, p.Name, p.Arguments)
}

// unmarshalParams decodes method params, mapping malformed input to an
// invalid-params error. Absent params decode as the zero value so each
// handler can report which field is missing.
func unmarshalParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return protocol.NewInvalidParams(err.Error())
	}
	return nil
}
