package server

// AuthConfig controls transport-level authentication for a server instance.
// When RequireAuth is set, the HTTP transport validates the bearer token or
// API key header against Validate when present, otherwise against APIKeys.
type AuthConfig struct {
	RequireAuth bool
	APIKeys     []string
	Validate    func(credential string) bool
}

// Allows reports whether the credential is accepted by this config.
func (c AuthConfig) Allows(credential string) bool {
	if credential == "" {
		return false
	}
	if c.Validate != nil {
		return c.Validate(credential)
	}
	for _, key := range c.APIKeys {
		if key == credential {
			return true
		}
	}
	return false
}

// RateLimitConfig controls transport-level rate limiting: a sliding window
// of MaxRequests per WindowSeconds, keyed by client identity. A zero config
// disables limiting.
type RateLimitConfig struct {
	MaxRequests   int
	WindowSeconds int
}

// Enabled reports whether rate limiting is configured.
func (c RateLimitConfig) Enabled() bool {
	return c.MaxRequests > 0 && c.WindowSeconds > 0
}

// CORSConfig controls the CORS response headers served by the HTTP
// transport. An empty AllowOrigins list allows any origin.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}

// Server is a single MCP server instance: identity, the three capability
// registries, and transport policy config. Registries may be mutated at any
// time, including while concurrent requests are being served.
type Server struct {
	name        string
	description string
	version     string

	tools     *ToolRegistry
	resources *ResourceRegistry
	prompts   *PromptRegistry

	auth      AuthConfig
	rateLimit RateLimitConfig
	cors      CORSConfig
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithDescription sets the server description.
func WithDescription(desc string) Option {
	return func(s *Server) { s.description = desc }
}

// WithVersion sets the server version reported by initialize.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithAuth sets the transport authentication config.
func WithAuth(cfg AuthConfig) Option {
	return func(s *Server) { s.auth = cfg }
}

// WithAPIKeys requires authentication against the given static keys.
func WithAPIKeys(keys ...string) Option {
	return func(s *Server) {
		s.auth = AuthConfig{RequireAuth: true, APIKeys: keys}
	}
}

// WithRateLimit sets a sliding window of maxRequests per windowSeconds,
// applied per client by the HTTP transport.
func WithRateLimit(maxRequests, windowSeconds int) Option {
	return func(s *Server) {
		s.rateLimit = RateLimitConfig{MaxRequests: maxRequests, WindowSeconds: windowSeconds}
	}
}

// WithCORS sets the CORS config used by the HTTP transport.
func WithCORS(cfg CORSConfig) Option {
	return func(s *Server) { s.cors = cfg }
}

// New creates a server instance with the given name.
func New(name string, opts ...Option) *Server {
	s := &Server{
		name:      name,
		version:   "0.0.0",
		tools:     NewToolRegistry(),
		resources: NewResourceRegistry(),
		prompts:   NewPromptRegistry(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the instance name, its unique key in the instance registry.
func (s *Server) Name() string { return s.name }

// Description returns the server description.
func (s *Server) Description() string { return s.description }

// Version returns the server version.
func (s *Server) Version() string { return s.version }

// Tools returns the tool registry.
func (s *Server) Tools() *ToolRegistry { return s.tools }

// Resources returns the resource registry.
func (s *Server) Resources() *ResourceRegistry { return s.resources }

// Prompts returns the prompt registry.
func (s *Server) Prompts() *PromptRegistry { return s.prompts }

// Auth returns the authentication config.
func (s *Server) Auth() AuthConfig { return s.auth }

// RateLimit returns the rate limit config.
func (s *Server) RateLimit() RateLimitConfig { return s.rateLimit }

// CORS returns the CORS config.
func (s *Server) CORS() CORSConfig { return s.cors }
