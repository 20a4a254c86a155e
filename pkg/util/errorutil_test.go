package util

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("load reports: %w", &RequestError{Method: "GET", Path: "issues/user/", Status: 401})

	assert.Equal(t, KindRequest, KindOf(wrapped))
	assert.Equal(t, KindAuth, KindOf(NewAuthError("nope")))
	assert.Equal(t, KindValidation, KindOf(NewValidationError("title", "required")))
	assert.Equal(t, KindNetwork, KindOf(&NetworkError{Err: errors.New("dial")}))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestNetworkErrorUnwraps(t *testing.T) {
	t.Parallel()

	opErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	err := &NetworkError{Method: "GET", Path: "issues/user/", Err: opErr}

	var target *net.OpError
	require.True(t, errors.As(err, &target))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBodyMessage(t *testing.T) {
	t.Parallel()

	t.Run("error field wins", func(t *testing.T) {
		assert.Equal(t, "Invalid credentials", BodyMessage(map[string]any{"error": "Invalid credentials", "message": "x"}))
	})

	t.Run("falls back to message then detail", func(t *testing.T) {
		assert.Equal(t, "Logged out", BodyMessage(map[string]any{"message": "Logged out"}))
		assert.Equal(t, "Given token not valid", BodyMessage(map[string]any{"detail": "Given token not valid"}))
	})

	t.Run("nested error object", func(t *testing.T) {
		body := map[string]any{"error": map[string]any{"code": "UNAUTHORIZED", "message": "invalid token"}}
		assert.Equal(t, "invalid token", BodyMessage(body))
	})

	t.Run("raw text body", func(t *testing.T) {
		assert.Equal(t, "Bad Gateway", BodyMessage(" Bad Gateway\n"))
	})

	t.Run("nothing usable", func(t *testing.T) {
		assert.Empty(t, BodyMessage(nil))
		assert.Empty(t, BodyMessage(map[string]any{"issues": []any{}}))
	})
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "auth", err: &AuthError{Status: 401, Message: "Invalid credentials"}, want: "Invalid credentials"},
		{name: "validation", err: NewValidationError("title", "Please fill all required fields."), want: "Please fill all required fields."},
		{name: "request with server text", err: &RequestError{Status: 400, Body: map[string]any{"error": "Email already exists"}}, want: "Email already exists"},
		{name: "request without server text", err: &RequestError{Status: 502, Body: ""}, want: "Request failed (502)."},
		{name: "network", err: &NetworkError{Err: errors.New("dial tcp")}, want: "Unable to reach the CityCare server."},
		{name: "cancelled", err: fmt.Errorf("load: %w", context.Canceled), want: "Request cancelled."},
		{name: "plain", err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
