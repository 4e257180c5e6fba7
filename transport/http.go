package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/modelctx/mcphost/protocol"
)

// HTTP implements MCP transport over a single JSON-RPC POST endpoint. Each
// request is handled independently and may run concurrently with others
// against the same server instance. The configured policy runs before
// dispatch.
type HTTP struct {
	addr         string
	path         string
	policy       *Policy
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu         sync.RWMutex
	listenAddr string
	server     *http.Server
}

// HTTPOption configures the HTTP transport.
type HTTPOption func(*HTTP)

// WithReadTimeout sets the read timeout for HTTP requests.
func WithReadTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.readTimeout = d
	}
}

// WithWriteTimeout sets the write timeout for HTTP responses.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.writeTimeout = d
	}
}

// WithEndpointPath sets the JSON-RPC endpoint path. Default is /mcp.
func WithEndpointPath(path string) HTTPOption {
	return func(h *HTTP) {
		h.path = path
	}
}

// WithPolicy sets the request policy applied before dispatch.
func WithPolicy(p *Policy) HTTPOption {
	return func(h *HTTP) {
		h.policy = p
	}
}

// NewHTTP creates a new HTTP transport listening on addr.
func NewHTTP(addr string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		addr:         addr,
		path:         "/mcp",
		readTimeout:  30 * time.Second,
		writeTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Addr returns the configured address.
func (h *HTTP) Addr() string {
	return h.addr
}

// ListenAddr returns the actual address the server is listening on.
func (h *HTTP) ListenAddr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listenAddr
}

// Serve starts the HTTP server and handles requests until ctx is canceled.
func (h *HTTP) Serve(ctx context.Context, handler Handler) error {
	listener, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	h.mu.Lock()
	h.listenAddr = listener.Addr().String()
	h.server = &http.Server{
		Handler:      h.createHandler(handler),
		ReadTimeout:  h.readTimeout,
		WriteTimeout: h.writeTimeout,
	}
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (h *HTTP) createHandler(handler Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc(h.path, func(w http.ResponseWriter, r *http.Request) {
		h.handleRPC(w, r, handler)
	})

	return mux
}

// handleRPC applies the policy, then dispatches a single JSON-RPC request.
func (h *HTTP) handleRPC(w http.ResponseWriter, r *http.Request, handler Handler) {
	if r.Method == http.MethodOptions {
		h.policy.preflight(w, r)
		return
	}

	h.policy.applyCORS(w, r)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	clientKey, authErr := h.policy.Admit(r)
	if authErr != nil {
		writeRPCError(w, http.StatusUnauthorized, authErr)
		return
	}

	if !h.policy.Allow(r.Context(), clientKey) {
		writeRPCError(w, http.StatusTooManyRequests, protocol.NewRateLimited("rate limit exceeded"))
		return
	}

	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, http.StatusOK, protocol.NewParseError("invalid JSON"))
		return
	}

	ctx := protocol.ContextWithRequestMeta(r.Context(), protocol.RequestMeta{
		protocol.MetaClientKey:  clientKey,
		protocol.MetaRemoteAddr: r.RemoteAddr,
	})

	resp, err := handler.HandleRequest(ctx, &req)

	if req.IsNotification() {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err != nil {
		resp = errorResponse(&req, err)
	}

	if resp != nil {
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// writeRPCError answers with the given HTTP status and a JSON-RPC error
// body carrying a null id, since the request body has not been read.
func writeRPCError(w http.ResponseWriter, status int, perr *protocol.Error) {
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(protocol.NewErrorResponse(protocol.NullID, perr))
}
