package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRequest_IsNotification(t *testing.T) {
	t.Run("request with ID is not a notification", func(t *testing.T) {
		req := &Request{JSONRPC: JSONRPCVersion, ID: json.RawMessage(`1`), Method: "ping"}
		if req.IsNotification() {
			t.Error("expected IsNotification() to be false")
		}
	})

	t.Run("request without ID is a notification", func(t *testing.T) {
		req := &Request{JSONRPC: JSONRPCVersion, Method: "notifications/initialized"}
		if !req.IsNotification() {
			t.Error("expected IsNotification() to be true")
		}
	})
}

func TestRequest_Valid(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"valid request", Request{JSONRPC: "2.0", Method: "tools/list"}, true},
		{"wrong version", Request{JSONRPC: "1.0", Method: "tools/list"}, false},
		{"missing version", Request{Method: "tools/list"}, false},
		{"missing method", Request{JSONRPC: "2.0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResponse_IDEcho(t *testing.T) {
	// Every response must echo the request ID verbatim, whatever its JSON type.
	ids := []string{`1`, `"abc"`, `null`, `42.5`}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			resp := NewResponse(json.RawMessage(id), "ok")

			data, err := json.Marshal(resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			if !strings.Contains(string(data), `"id":`+id) {
				t.Errorf("response %s does not echo id %s", data, id)
			}
		})
	}
}

func TestResponse_ResultXorError(t *testing.T) {
	t.Run("success response has no error key", func(t *testing.T) {
		resp := NewResponse(json.RawMessage(`1`), map[string]any{})

		data, _ := json.Marshal(resp)
		if strings.Contains(string(data), `"error"`) {
			t.Errorf("success response contains error: %s", data)
		}
		if !strings.Contains(string(data), `"result"`) {
			t.Errorf("success response missing result: %s", data)
		}
	})

	t.Run("error response has no result key", func(t *testing.T) {
		resp := NewErrorResponse(json.RawMessage(`1`), NewMethodNotFound("nope"))

		data, _ := json.Marshal(resp)
		if strings.Contains(string(data), `"result"`) {
			t.Errorf("error response contains result: %s", data)
		}
		if !strings.Contains(string(data), `"error"`) {
			t.Errorf("error response missing error: %s", data)
		}
	})

	t.Run("parse error carries null id", func(t *testing.T) {
		resp := NewErrorResponse(NullID, NewParseError("bad json"))

		data, _ := json.Marshal(resp)
		if !strings.Contains(string(data), `"id":null`) {
			t.Errorf("expected id null, got %s", data)
		}
	})
}

func TestToolError(t *testing.T) {
	result := ToolError("Tool not found: frobnicate")

	if !result.IsError {
		t.Error("expected IsError to be true")
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(result.Content))
	}
	if result.Content[0].Type != "text" {
		t.Errorf("content type = %q, want %q", result.Content[0].Type, "text")
	}
	if result.Content[0].Text != "Tool not found: frobnicate" {
		t.Errorf("content text = %q", result.Content[0].Text)
	}
}
