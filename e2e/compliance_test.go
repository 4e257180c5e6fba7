// Package e2e holds end-to-end protocol compliance tests running a full
// server over the stdio transport.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/modelctx/mcphost"
	"github.com/modelctx/mcphost/protocol"
	"github.com/modelctx/mcphost/transport"
)

func complianceServer() *mcphost.Server {
	srv := mcphost.NewServer("compliance", mcphost.WithVersion("1.0.0"))

	srv.Tools().Register(mcphost.NewTool("echo", "Echoes input",
		map[string]any{"type": "object"},
		func(_ context.Context, args json.RawMessage) (any, error) {
			var p struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			return p.Message, nil
		}))

	srv.Tools().Register(mcphost.NewTool("fail", "Always fails",
		map[string]any{"type": "object"},
		func(context.Context, json.RawMessage) (any, error) {
			return nil, errors.New("tool exploded")
		}))

	srv.Resources().Register(mcphost.NewResource("mem://greeting",
		func(context.Context) (string, error) { return "hello", nil },
		mcphost.WithResourceMimeType("text/plain")))

	srv.Prompts().Register(mcphost.NewPrompt("ask", "Asks a question",
		[]protocol.PromptArgument{{Name: "topic", Required: true}},
		func(_ context.Context, args map[string]string) ([]protocol.PromptMessage, error) {
			return []protocol.PromptMessage{
				mcphost.UserMessage("Tell me about " + args["topic"]),
			}, nil
		}))

	return srv
}

// run pushes raw request lines through the stdio transport and returns the
// decoded response lines.
func run(t *testing.T, lines ...string) []*protocol.Response {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer

	d := mcphost.NewDispatcher(complianceServer())
	tr := transport.NewStdio(transport.WithStdin(in), transport.WithStdout(&out))
	if err := tr.Serve(ctx, d); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	var responses []*protocol.Response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp protocol.Response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("invalid response line %q: %v", line, err)
		}
		responses = append(responses, &resp)
	}
	return responses
}

// one runs a single request and expects exactly one response.
func one(t *testing.T, line string) *protocol.Response {
	t.Helper()
	responses := run(t, line)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	return responses[0]
}

func resultField(t *testing.T, resp *protocol.Response, path ...string) any {
	t.Helper()

	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}

	var cur any = m
	for _, key := range path {
		node, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("path %v: not an object at %q", path, key)
		}
		cur = node[key]
	}
	return cur
}

func TestInitializeHandshake(t *testing.T) {
	resp := one(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"tc","version":"0.1"}}}`)

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if got := resultField(t, resp, "protocolVersion"); got != protocol.MCPVersion {
		t.Errorf("protocolVersion = %v, want %v", got, protocol.MCPVersion)
	}
	if got := resultField(t, resp, "serverInfo", "name"); got != "compliance" {
		t.Errorf("serverInfo.name = %v", got)
	}
	if got := resultField(t, resp, "serverInfo", "version"); got != "1.0.0" {
		t.Errorf("serverInfo.version = %v", got)
	}

	caps, ok := resultField(t, resp, "capabilities").(map[string]any)
	if !ok {
		t.Fatal("capabilities missing")
	}
	for _, key := range []string{"tools", "resources", "prompts"} {
		if _, ok := caps[key]; !ok {
			t.Errorf("capability %q not advertised", key)
		}
	}
}

func TestIDEchoFidelity(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"integer", `42`},
		{"string", `"req-abc"`},
		{"large number", `9007199254740993`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := one(t, `{"jsonrpc":"2.0","id":`+tt.id+`,"method":"ping"}`)
			if string(resp.ID) != tt.id {
				t.Errorf("echoed ID = %s, want %s", resp.ID, tt.id)
			}
		})
	}
}

func TestToolCallRoundTrip(t *testing.T) {
	resp := one(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"message":"ping-pong"}}}`)

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result protocol.CallToolResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.IsError {
		t.Fatal("IsError = true")
	}
	if len(result.Content) != 1 || result.Content[0].Text != "ping-pong" {
		t.Errorf("content = %+v", result.Content)
	}
}

func TestSoftVersusProtocolErrors(t *testing.T) {
	t.Run("failing tool is a successful response with isError", func(t *testing.T) {
		resp := one(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"fail"}}`)
		if resp.Error != nil {
			t.Fatalf("protocol error = %v, want soft failure", resp.Error)
		}

		data, _ := json.Marshal(resp.Result)
		var result protocol.CallToolResult
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if !result.IsError {
			t.Error("IsError = false")
		}
		if len(result.Content) == 0 || !strings.Contains(result.Content[0].Text, "tool exploded") {
			t.Errorf("content = %+v", result.Content)
		}
	})

	t.Run("unknown tool is a soft failure", func(t *testing.T) {
		resp := one(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`)
		if resp.Error != nil {
			t.Fatalf("protocol error = %v, want soft failure", resp.Error)
		}
	})

	t.Run("unknown resource is a protocol error", func(t *testing.T) {
		resp := one(t, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"mem://nope"}}`)
		if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidParams {
			t.Errorf("error = %v, want invalid params", resp.Error)
		}
	})

	t.Run("unknown prompt is a protocol error", func(t *testing.T) {
		resp := one(t, `{"jsonrpc":"2.0","id":1,"method":"prompts/get","params":{"name":"nope"}}`)
		if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidParams {
			t.Errorf("error = %v, want invalid params", resp.Error)
		}
	})
}

func TestStandardErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		line string
		code int
	}{
		{"parse error", `{broken`, protocol.CodeParseError},
		{"invalid request", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, protocol.CodeInvalidRequest},
		{"method not found", `{"jsonrpc":"2.0","id":1,"method":"bogus/method"}`, protocol.CodeMethodNotFound},
		{"invalid params", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{}}}`, protocol.CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := one(t, tt.line)
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %v, want code %d", resp.Error, tt.code)
			}
		})
	}
}

func TestNotificationsProduceNoResponse(t *testing.T) {
	responses := run(t,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":5,"method":"ping"}`)

	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if string(responses[0].ID) != "5" {
		t.Errorf("ID = %s, want 5", responses[0].ID)
	}
}

func TestResourceAndPromptRoundTrips(t *testing.T) {
	t.Run("resources", func(t *testing.T) {
		resp := one(t, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"mem://greeting"}}`)
		if resp.Error != nil {
			t.Fatalf("unexpected error: %v", resp.Error)
		}

		data, _ := json.Marshal(resp.Result)
		var result protocol.ReadResourceResult
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if len(result.Contents) != 1 || result.Contents[0].Text != "hello" {
			t.Errorf("contents = %+v", result.Contents)
		}
		if result.Contents[0].URI != "mem://greeting" {
			t.Errorf("uri = %q", result.Contents[0].URI)
		}
	})

	t.Run("prompts", func(t *testing.T) {
		resp := one(t, `{"jsonrpc":"2.0","id":1,"method":"prompts/get","params":{"name":"ask","arguments":{"topic":"Go"}}}`)
		if resp.Error != nil {
			t.Fatalf("unexpected error: %v", resp.Error)
		}

		data, _ := json.Marshal(resp.Result)
		var result protocol.GetPromptResult
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if len(result.Messages) != 1 || result.Messages[0].Content.Text != "Tell me about Go" {
			t.Errorf("messages = %+v", result.Messages)
		}
	})
}
