package domain

import (
	"strings"

	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// Tokens is the pair issued at login.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Credentials are what the login form collects.
type Credentials struct {
	Email    string
	Password string
}

// Validate requires both fields.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return apperrors.NewValidationError("", "Please enter both email and password.")
	}
	return nil
}
