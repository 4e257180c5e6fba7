package transport

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/modelctx/mcphost/protocol"
	"github.com/modelctx/mcphost/server"
)

// keyLimiter is the slice of the fortify limiter the policy uses.
type keyLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// Policy is the per-instance HTTP request policy: authentication, a sliding
// window rate limit keyed by client identity, and CORS. Policy failures are
// answered at the transport (HTTP status plus JSON-RPC error body) and never
// reach the dispatcher. A nil *Policy admits everything.
type Policy struct {
	auth    server.AuthConfig
	cors    server.CORSConfig
	limiter keyLimiter
}

// NewPolicy builds a policy from the given configs.
func NewPolicy(auth server.AuthConfig, limit server.RateLimitConfig, cors server.CORSConfig) *Policy {
	p := &Policy{auth: auth, cors: cors}
	if limit.Enabled() {
		p.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     limit.MaxRequests,
			Burst:    limit.MaxRequests,
			Interval: time.Duration(limit.WindowSeconds) * time.Second,
		})
	}
	return p
}

// PolicyFor builds the policy configured on the server instance.
func PolicyFor(srv *server.Server) *Policy {
	return NewPolicy(srv.Auth(), srv.RateLimit(), srv.CORS())
}

// credential extracts the presented API credential: a bearer token from the
// Authorization header or the X-API-Key header value.
func credential(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(auth, prefix) {
			return strings.TrimPrefix(auth, prefix)
		}
		return ""
	}
	return r.Header.Get("X-API-Key")
}

// Admit authenticates the request and returns the client identity used for
// rate limiting: the presented credential when there is one, otherwise the
// remote host.
func (p *Policy) Admit(r *http.Request) (string, *protocol.Error) {
	cred := credential(r)

	if p != nil && p.auth.RequireAuth && !p.auth.Allows(cred) {
		return "", protocol.NewUnauthorized("authentication required")
	}

	if cred != "" {
		return cred, nil
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host, nil
}

// Allow reports whether the client is within its rate limit window.
func (p *Policy) Allow(ctx context.Context, clientKey string) bool {
	if p == nil || p.limiter == nil {
		return true
	}
	return p.limiter.Allow(ctx, clientKey)
}

// applyCORS sets the allow-origin header for cross-origin requests.
func (p *Policy) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	allowed := p.allowOrigin(origin)
	if allowed == "" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", allowed)
	if allowed != "*" {
		w.Header().Add("Vary", "Origin")
	}
}

// allowOrigin resolves the allow-origin header value for the given origin.
// An unconfigured policy allows any origin.
func (p *Policy) allowOrigin(origin string) string {
	if p == nil || len(p.cors.AllowOrigins) == 0 {
		return "*"
	}
	for _, o := range p.cors.AllowOrigins {
		if o == "*" {
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return ""
}

// preflight answers an OPTIONS request per the CORS config.
func (p *Policy) preflight(w http.ResponseWriter, r *http.Request) {
	p.applyCORS(w, r)

	methods := "POST, OPTIONS"
	if p != nil && len(p.cors.AllowMethods) > 0 {
		methods = strings.Join(p.cors.AllowMethods, ", ")
	}
	headers := "Content-Type, Authorization, X-API-Key"
	if p != nil && len(p.cors.AllowHeaders) > 0 {
		headers = strings.Join(p.cors.AllowHeaders, ", ")
	}

	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", headers)
	w.WriteHeader(http.StatusNoContent)
}
