package protocol

import (
	"errors"
	"testing"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code int
	}{
		{"parse error", NewParseError("bad"), CodeParseError},
		{"invalid request", NewInvalidRequest("bad"), CodeInvalidRequest},
		{"method not found", NewMethodNotFound("bad"), CodeMethodNotFound},
		{"invalid params", NewInvalidParams("bad"), CodeInvalidParams},
		{"internal error", NewInternalError("bad"), CodeInternalError},
		{"unauthorized", NewUnauthorized("bad"), CodeUnauthorized},
		{"rate limited", NewRateLimited("bad"), CodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.code)
			}
			if tt.err.Message != "bad" {
				t.Errorf("Message = %q, want %q", tt.err.Message, "bad")
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	t.Run("matches by code", func(t *testing.T) {
		err := NewInvalidParams("missing uri")
		if !errors.Is(err, &Error{Code: CodeInvalidParams}) {
			t.Error("expected errors.Is to match by code")
		}
	})

	t.Run("does not match different code", func(t *testing.T) {
		err := NewInvalidParams("missing uri")
		if errors.Is(err, &Error{Code: CodeInternalError}) {
			t.Error("expected errors.Is not to match")
		}
	})

	t.Run("does not match non-protocol error", func(t *testing.T) {
		err := NewInternalError("boom")
		if errors.Is(err, errors.New("boom")) {
			t.Error("expected errors.Is not to match plain error")
		}
	})
}

func TestError_WithData(t *testing.T) {
	base := NewInvalidParams("missing field")
	withData := base.WithData(map[string]string{"field": "uri"})

	if withData.Code != base.Code || withData.Message != base.Message {
		t.Error("WithData changed code or message")
	}
	if withData.Data == nil {
		t.Error("WithData did not attach data")
	}
	if base.Data != nil {
		t.Error("WithData mutated the original error")
	}
}
