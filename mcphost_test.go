package mcphost

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelctx/mcphost/protocol"
	"github.com/modelctx/mcphost/transport"
)

func newEchoServer() *Server {
	srv := NewServer("test-server", WithVersion("1.0.0"))
	srv.Tools().Register(NewTool("echo", "Echoes input",
		map[string]any{"type": "object"},
		func(_ context.Context, args json.RawMessage) (any, error) {
			var p struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, err
			}
			return "Echo: " + p.Message, nil
		}))
	return srv
}

func request(method, params string) *protocol.Request {
	req := &protocol.Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage("1"),
		Method:  method,
	}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	return req
}

func TestRequestHandler(t *testing.T) {
	t.Run("dispatches without middleware", func(t *testing.T) {
		h := newRequestHandler(newEchoServer())

		resp, err := h.HandleRequest(context.Background(), request("ping", ""))
		if err != nil {
			t.Fatalf("HandleRequest() error = %v", err)
		}
		if resp.Error != nil {
			t.Fatalf("unexpected error: %v", resp.Error)
		}
	})

	t.Run("applies custom middleware", func(t *testing.T) {
		var calls []string
		tag := func(name string) Middleware {
			return func(next MiddlewareHandlerFunc) MiddlewareHandlerFunc {
				return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
					calls = append(calls, name)
					return next(ctx, req)
				}
			}
		}

		h := newRequestHandler(newEchoServer(), WithMiddleware(tag("outer"), tag("inner")))
		if _, err := h.HandleRequest(context.Background(), request("ping", "")); err != nil {
			t.Fatalf("HandleRequest() error = %v", err)
		}
		if len(calls) != 2 || calls[0] != "outer" || calls[1] != "inner" {
			t.Errorf("middleware order = %v, want [outer inner]", calls)
		}
	})

	t.Run("logger installs default stack", func(t *testing.T) {
		logger := &recordingLogger{}
		h := newRequestHandler(newEchoServer(), WithLogger(logger))

		if _, err := h.HandleRequest(context.Background(), request("ping", "")); err != nil {
			t.Fatalf("HandleRequest() error = %v", err)
		}
		if logger.infoCount == 0 {
			t.Error("logger never called by default stack")
		}
	})
}

type recordingLogger struct {
	infoCount int
}

func (l *recordingLogger) Info(string, ...LogField)  { l.infoCount++ }
func (l *recordingLogger) Error(string, ...LogField) {}
func (l *recordingLogger) Debug(string, ...LogField) {}
func (l *recordingLogger) Warn(string, ...LogField)  {}

func TestGetOrCreate(t *testing.T) {
	defer Instances.Clear()

	a := GetOrCreate("shared", WithVersion("2.0.0"))
	b := GetOrCreate("shared", WithVersion("9.9.9"))

	if a != b {
		t.Error("GetOrCreate returned different instances for the same name")
	}
	if b.Version() != "2.0.0" {
		t.Errorf("Version() = %q, options must only apply on first create", b.Version())
	}
}

// blockingTransport serves until its context is canceled, recording the
// handler it was given.
type blockingTransport struct {
	started chan struct{}
}

func (b *blockingTransport) Serve(ctx context.Context, _ transport.Handler) error {
	close(b.started)
	<-ctx.Done()
	return ctx.Err()
}

func (b *blockingTransport) Addr() string { return "fake" }

// failingTransport fails immediately.
type failingTransport struct{}

func (failingTransport) Serve(context.Context, transport.Handler) error {
	return errors.New("listen failed")
}

func (failingTransport) Addr() string { return "broken" }

func TestServeAll(t *testing.T) {
	t.Run("failure of one transport stops the rest", func(t *testing.T) {
		bt := &blockingTransport{started: make(chan struct{})}

		done := make(chan error, 1)
		go func() {
			done <- ServeAll(context.Background(), newEchoServer(),
				[]transport.Transport{bt, failingTransport{}})
		}()

		select {
		case err := <-done:
			if err == nil || err.Error() != "listen failed" {
				t.Errorf("ServeAll() error = %v, want listen failed", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("ServeAll did not stop after transport failure")
		}
	})

	t.Run("context cancellation stops all transports", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		bt := &blockingTransport{started: make(chan struct{})}

		done := make(chan error, 1)
		go func() {
			done <- ServeAll(ctx, newEchoServer(), []transport.Transport{bt})
		}()

		<-bt.started
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("ServeAll() error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("ServeAll did not stop after cancellation")
		}
	})
}
