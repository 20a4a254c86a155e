package util

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind tags the variants of ClientError.
type Kind string

const (
	KindAuth       Kind = "AUTH"
	KindRequest    Kind = "REQUEST"
	KindNetwork    Kind = "NETWORK"
	KindValidation Kind = "VALIDATION"
)

// ClientError is the closed set of errors produced at the gateway and
// validation boundaries. Only the types in this file implement it.
type ClientError interface {
	error
	Kind() Kind
	clientError()
}

// AuthError reports rejected credentials or a missing session.
type AuthError struct {
	Status  int
	Message string
	Body    any
}

func (e *AuthError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("auth: %s (%d)", e.Message, e.Status)
	}
	return "auth: " + e.Message
}

func (e *AuthError) Kind() Kind   { return KindAuth }
func (e *AuthError) clientError() {}

// RequestError reports a non-2xx response. Body holds the decoded JSON
// payload, or the raw text when the payload was not JSON.
type RequestError struct {
	Method string
	Path   string
	Status int
	Body   any
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s failed (%d)", e.Method, e.Path, e.Status)
}

func (e *RequestError) Kind() Kind   { return KindRequest }
func (e *RequestError) clientError() {}

// ServerMessage returns the error text carried in the response body, if any.
func (e *RequestError) ServerMessage() string {
	return BodyMessage(e.Body)
}

// NetworkError reports a transport failure before any response arrived.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
func (e *NetworkError) Kind() Kind    { return KindNetwork }
func (e *NetworkError) clientError()  {}

// ValidationError reports a client-side check that failed before any
// request was issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Kind() Kind   { return KindValidation }
func (e *ValidationError) clientError() {}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewAuthError builds an AuthError without an HTTP status.
func NewAuthError(message string) error {
	return &AuthError{Message: message}
}

// KindOf returns the tag of err, or "" when err is not a ClientError.
func KindOf(err error) Kind {
	var ce ClientError
	if errors.As(err, &ce) {
		return ce.Kind()
	}
	return ""
}

// BodyMessage extracts "error", "message" or "detail" from a decoded
// response body.
func BodyMessage(body any) string {
	switch v := body.(type) {
	case map[string]any:
		for _, key := range []string{"error", "message", "detail"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
			if nested, ok := v[key].(map[string]any); ok {
				if msg := BodyMessage(nested); msg != "" {
					return msg
				}
			}
		}
	case string:
		return strings.TrimSpace(v)
	}
	return ""
}

// UserMessage renders err as the text shown in a blocking alert.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The server took too long to respond."
	}

	var authErr *AuthError
	var reqErr *RequestError
	var netErr *NetworkError
	var valErr *ValidationError
	switch {
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &reqErr):
		if msg := reqErr.ServerMessage(); msg != "" && len(msg) <= 200 {
			return msg
		}
		return fmt.Sprintf("Request failed (%d).", reqErr.Status)
	case errors.As(err, &netErr):
		return "Unable to reach the CityCare server."
	}
	return err.Error()
}
