// Package protocol defines the MCP JSON-RPC 2.0 wire format.
//
// It contains the request/response envelope types, the standard error codes,
// the MCP method name constants, and the wire shapes of MCP results and
// capability descriptors. Most applications should use the higher-level
// mcphost package instead.
//
// # Request and Response Types
//
// The core JSON-RPC 2.0 message types:
//
//	type Request struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Method  string          `json:"method"`
//	    Params  json.RawMessage `json:"params,omitempty"`
//	}
//
//	type Response struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Result  any             `json:"result,omitempty"`
//	    Error   *Error          `json:"error,omitempty"`
//	}
//
// The request ID is kept as raw JSON so that string, number, and null IDs
// are echoed back to the client byte for byte.
//
// # Error Codes
//
// Standard JSON-RPC 2.0 error codes are defined as constants:
//
//	CodeParseError     = -32700  // Invalid JSON
//	CodeInvalidRequest = -32600  // Invalid Request object
//	CodeMethodNotFound = -32601  // Method not found
//	CodeInvalidParams  = -32602  // Invalid method parameters
//	CodeInternalError  = -32603  // Internal server error
//
// Helper functions create properly formatted errors:
//
//	err := protocol.NewMethodNotFound("unknown/method")
//	err := protocol.NewInvalidParams("missing required field: name")
//
// # Soft failures
//
// A failing tool call is not a protocol error. It is delivered as a
// successful response whose CallToolResult carries IsError set to true and a
// human-readable text content block. See CallToolResult.
package protocol
