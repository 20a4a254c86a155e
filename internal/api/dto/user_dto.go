package dto

// LoginRequest payload for auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest payload for auth/register/.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EditProfileRequest payload for auth/edit-profile/.
type EditProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ForgotPasswordRequest payload for auth/forgot-password/.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// LogoutRequest payload for auth/logout/.
type LogoutRequest struct {
	Refresh string `json:"refresh,omitempty"`
}

// TokenPair as issued by the server.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserRecord is the server's user summary.
type UserRecord struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Message string      `json:"message,omitempty"`
	User    *UserRecord `json:"user"`
	Tokens  TokenPair   `json:"tokens"`
}

// ProfileResponse is returned by edit-profile.
type ProfileResponse struct {
	Message string      `json:"message,omitempty"`
	User    *UserRecord `json:"user"`
}

// MessageResponse is the generic {"message": ...} body.
type MessageResponse struct {
	Message string `json:"message"`
}
