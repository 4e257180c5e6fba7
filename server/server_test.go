package server

import "testing"

func TestNew(t *testing.T) {
	t.Run("applies options", func(t *testing.T) {
		srv := New("assistant",
			WithDescription("An assistant server"),
			WithVersion("2.1.0"),
			WithAPIKeys("secret-1", "secret-2"),
			WithRateLimit(100, 60),
			WithCORS(CORSConfig{
				AllowOrigins: []string{"https://app.example.com"},
				AllowMethods: []string{"POST", "OPTIONS"},
				AllowHeaders: []string{"Content-Type", "Authorization"},
			}),
		)

		if srv.Name() != "assistant" {
			t.Errorf("Name = %q", srv.Name())
		}
		if srv.Description() != "An assistant server" {
			t.Errorf("Description = %q", srv.Description())
		}
		if srv.Version() != "2.1.0" {
			t.Errorf("Version = %q", srv.Version())
		}
		if !srv.Auth().RequireAuth {
			t.Error("expected RequireAuth to be set")
		}
		if !srv.RateLimit().Enabled() {
			t.Error("expected rate limit to be enabled")
		}
		if len(srv.CORS().AllowOrigins) != 1 {
			t.Errorf("AllowOrigins = %v", srv.CORS().AllowOrigins)
		}
	})

	t.Run("registries start empty", func(t *testing.T) {
		srv := New("empty")

		if srv.Tools().Count() != 0 || srv.Resources().Count() != 0 || srv.Prompts().Count() != 0 {
			t.Error("expected empty registries")
		}
	})
}

func TestAuthConfig_Allows(t *testing.T) {
	t.Run("static key list", func(t *testing.T) {
		cfg := AuthConfig{RequireAuth: true, APIKeys: []string{"k1", "k2"}}

		if !cfg.Allows("k1") {
			t.Error("expected k1 to be allowed")
		}
		if cfg.Allows("k3") {
			t.Error("expected k3 to be rejected")
		}
		if cfg.Allows("") {
			t.Error("expected empty credential to be rejected")
		}
	})

	t.Run("validator takes precedence over key list", func(t *testing.T) {
		cfg := AuthConfig{
			RequireAuth: true,
			APIKeys:     []string{"k1"},
			Validate:    func(cred string) bool { return cred == "token" },
		}

		if !cfg.Allows("token") {
			t.Error("expected validator to accept token")
		}
		if cfg.Allows("k1") {
			t.Error("expected validator to override key list")
		}
	})
}

func TestRateLimitConfig_Enabled(t *testing.T) {
	if (RateLimitConfig{}).Enabled() {
		t.Error("zero config should be disabled")
	}
	if !(RateLimitConfig{MaxRequests: 10, WindowSeconds: 1}).Enabled() {
		t.Error("configured limit should be enabled")
	}
}
