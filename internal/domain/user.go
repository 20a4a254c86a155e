package domain

import (
	"strings"

	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// User is the profile returned by the server at login.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Registration is the sign-up form.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the sign-up form before it is sent.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" || r.ConfirmPassword == "" {
		return apperrors.NewValidationError("", "Please fill all fields.")
	}
	if r.Password != r.ConfirmPassword {
		return apperrors.NewValidationError("confirm_password", "Passwords do not match.")
	}
	return nil
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name  string
	Email string
}

// Validate requires both fields to be non-empty.
func (p ProfileUpdate) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" {
		return apperrors.NewValidationError("", "Name and Email cannot be empty")
	}
	return nil
}
